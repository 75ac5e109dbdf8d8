// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var mergedAt = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

func testRecord(title string, shas ...string) Record {
	record := Record{
		MergedAt: mergedAt,
		Title:    title,
		URL:      "https://github.com/o/r/pull/1",
	}
	for _, sha := range shas {
		record.Commits = append(record.Commits, CommitRecord{
			SHA:     sha,
			Message: "message " + sha,
			URL:     CommitURL("https://github.com", "o", "r", sha),
		})
	}
	return record
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	if writer == nil {
		t.Fatal("NewWriter returned nil")
	}
	if writer.output != &buf {
		t.Error("Writer output doesn't match provided buffer")
	}
	if writer.count != 0 {
		t.Errorf("Initial count should be 0, got %d", writer.count)
	}
}

func TestWriter_Write(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    []string
	}{
		{
			name:    "single record",
			records: []Record{testRecord("Fix <parser>", "c5", "c4")},
			want: []string{
				`{"merged_at":"2025-04-02T09:30:00Z","title":"Fix <parser>","url":"https://github.com/o/r/pull/1","commits":[` +
					`{"sha":"c5","message":"message c5","url":"https://github.com/o/r/commit/c5"},` +
					`{"sha":"c4","message":"message c4","url":"https://github.com/o/r/commit/c4"}]}`,
			},
		},
		{
			name:    "record without commits",
			records: []Record{testRecord("Empty")},
			want: []string{
				`{"merged_at":"2025-04-02T09:30:00Z","title":"Empty","url":"https://github.com/o/r/pull/1","commits":[]}`,
			},
		},
		{
			name:    "order preserved",
			records: []Record{testRecord("first", "a"), testRecord("second", "b"), testRecord("third", "c")},
		},
		{
			name:    "empty records",
			records: []Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writer := NewWriter(&buf)

			for _, record := range tt.records {
				if err := writer.Write(record); err != nil {
					t.Fatalf("Write failed: %v", err)
				}
			}

			if writer.Count() != len(tt.records) {
				t.Errorf("Count mismatch: got %d, want %d", writer.Count(), len(tt.records))
			}

			output := strings.TrimSuffix(buf.String(), "\n")
			if output == "" {
				if len(tt.records) != 0 {
					t.Fatal("expected output")
				}
				return
			}

			lines := strings.Split(output, "\n")
			if len(lines) != len(tt.records) {
				t.Fatalf("Line count mismatch: got %d, want %d", len(lines), len(tt.records))
			}

			for i, line := range lines {
				if tt.want != nil && line != tt.want[i] {
					t.Errorf("Line %d mismatch:\ngot:  %s\nwant: %s", i, line, tt.want[i])
				}
				var decoded Record
				if err := json.Unmarshal([]byte(line), &decoded); err != nil {
					t.Fatalf("Invalid JSON at line %d: %v", i, err)
				}
				if decoded.Title != tt.records[i].Title {
					t.Errorf("Line %d title = %q, want %q", i, decoded.Title, tt.records[i].Title)
				}
			}
		})
	}
}

func TestWriter_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	numGoroutines := 10
	recordsPerGoroutine := 100
	totalRecords := numGoroutines * recordsPerGoroutine

	errCh := make(chan error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < recordsPerGoroutine; j++ {
				if err := writer.Write(testRecord("Concurrent Test", "sha")); err != nil {
					errCh <- err
					return
				}
			}
			errCh <- nil
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		if err := <-errCh; err != nil {
			t.Fatalf("Concurrent write failed: %v", err)
		}
	}

	if writer.Count() != totalRecords {
		t.Errorf("Count mismatch: got %d, want %d", writer.Count(), totalRecords)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != totalRecords {
		t.Errorf("Line count mismatch: got %d, want %d", len(lines), totalRecords)
	}
}

func TestNewFileWriter(t *testing.T) {
	filename := FileName(filepath.Join(t.TempDir(), "nested", "output"), "lsb")
	if filepath.Base(filename) != "lsb_prs.ndjson" {
		t.Fatalf("unexpected file name %s", filename)
	}

	writer, err := NewFileWriter(filename)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer writer.Close()

	for _, record := range []Record{testRecord("one", "a"), testRecord("two", "b")} {
		if err := writer.Write(record); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Closing twice is harmless
	if err := writer.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if got := strings.Count(string(content), "\n"); got != 2 {
		t.Errorf("expected 2 lines, got %d", got)
	}
}

func TestNewFileWriter_Truncates(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.ndjson")
	if err := os.WriteFile(filename, []byte("stale\nstale\nstale\n"), 0644); err != nil {
		t.Fatal(err)
	}

	writer, err := NewFileWriter(filename)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	if err := writer.Write(testRecord("fresh")); err != nil {
		t.Fatal(err)
	}
	writer.Close()

	content, _ := os.ReadFile(filename)
	if strings.Contains(string(content), "stale") {
		t.Errorf("previous content survived: %s", content)
	}
}

func TestNewFileWriter_Error(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	// A regular file cannot act as a directory
	_, err := NewFileWriter(filepath.Join(blocker, "test.ndjson"))
	if err == nil {
		t.Error("Expected error when parent is a file, got nil")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriter_WriteError(t *testing.T) {
	writer := NewWriter(failingWriter{})

	if err := writer.Write(testRecord("x")); err == nil {
		t.Error("Expected error when the destination fails")
	}
	if writer.Count() != 0 {
		t.Errorf("failed writes must not be counted, got %d", writer.Count())
	}
}

func TestCommitURL(t *testing.T) {
	got := CommitURL("https://github.com/", "LandSandBoat", "server", "abc123")
	want := "https://github.com/LandSandBoat/server/commit/abc123"
	if got != want {
		t.Errorf("CommitURL() = %q, want %q", got, want)
	}
}
