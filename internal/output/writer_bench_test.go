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
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"
)

// sampleRecord builds a record shaped like a real merged pull request.
func sampleRecord(num, commits int) Record {
	record := Record{
		MergedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Duration(num) * time.Hour),
		Title:    "Fix <mob> pathing & aggro checks in Dynamis zones",
		URL:      fmt.Sprintf("https://github.com/LandSandBoat/server/pull/%d", num),
		Commits:  make([]CommitRecord, 0, commits),
	}
	for i := 0; i < commits; i++ {
		sha := fmt.Sprintf("%040x", num*1000+i)
		record.Commits = append(record.Commits, CommitRecord{
			SHA:     sha,
			Message: "Adjust aggro radius\n\nCo-authored with the zone team",
			URL:     CommitURL("https://github.com", "LandSandBoat", "server", sha),
		})
	}
	return record
}

// BenchmarkWriter_CommitsPerRecord measures encoding cost as commit lists grow.
func BenchmarkWriter_CommitsPerRecord(b *testing.B) {
	for _, commits := range []int{0, 1, 10, 100} {
		b.Run(fmt.Sprintf("%dCommits", commits), func(b *testing.B) {
			w := NewWriter(io.Discard)
			record := sampleRecord(1, commits)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := w.Write(record); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkWriter_Concurrent measures lock contention on a shared writer.
func BenchmarkWriter_Concurrent(b *testing.B) {
	w := NewWriter(io.Discard)
	record := sampleRecord(1, 5)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := w.Write(record); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkFileWriter_Run writes a run's worth of records to disk.
func BenchmarkFileWriter_Run(b *testing.B) {
	records := make([]Record, 1000)
	for i := range records {
		records[i] = sampleRecord(i, 3)
	}
	dir := b.TempDir()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w, err := NewFileWriter(filepath.Join(dir, "bench_prs.ndjson"))
		if err != nil {
			b.Fatal(err)
		}
		for _, record := range records {
			if err := w.Write(record); err != nil {
				b.Fatal(err)
			}
		}
		if err := w.Close(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkReader_ReadAll decodes a run's output for export.
func BenchmarkReader_ReadAll(b *testing.B) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for i := 0; i < 1000; i++ {
		if err := w.Write(sampleRecord(i, 3)); err != nil {
			b.Fatal(err)
		}
	}
	data := buf.Bytes()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadAll(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}
