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

package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirseerhq/sirseer-harvest/internal/output"
)

// AssertNDJSONOutput validates that a file contains valid NDJSON records
// with the expected count and returns them in file order.
func AssertNDJSONOutput(t *testing.T, filePath string, expectedCount int) []output.Record {
	t.Helper()

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatalf("Failed to open output file: %v", err)
	}
	defer file.Close()

	records, err := output.ReadAll(file)
	if err != nil {
		t.Fatalf("Invalid NDJSON output: %v", err)
	}

	for i, record := range records {
		if record.URL == "" {
			t.Errorf("Record %d: missing url", i+1)
		}
		if record.MergedAt.IsZero() {
			t.Errorf("Record %d: missing merged_at", i+1)
		}
		if record.Commits == nil {
			t.Errorf("Record %d: commits must be an array", i+1)
		}
	}

	if len(records) != expectedCount {
		t.Errorf("Expected %d records, got %d", expectedCount, len(records))
	}
	return records
}

// AssertCheckpoint checks the checkpoint stored for repository. An empty
// want asserts that no checkpoint exists.
func AssertCheckpoint(t *testing.T, path, repository, want string) {
	t.Helper()

	entries := map[string]string{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		t.Fatalf("Failed to read checkpoint file: %v", err)
	default:
		if err := json.Unmarshal(data, &entries); err != nil {
			t.Fatalf("Invalid checkpoint JSON: %v", err)
		}
	}

	got, ok := entries[repository]
	if want == "" {
		if ok {
			t.Errorf("Expected no checkpoint for %s, got %q", repository, got)
		}
		return
	}
	if got != want {
		t.Errorf("Checkpoint for %s = %q, want %q", repository, got, want)
	}
}

// AssertMetadataFile validates the newest metadata file written for
// selector and returns its decoded content.
func AssertMetadataFile(t *testing.T, dir, selector string) map[string]interface{} {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, "fetch-metadata-"+selector+"-*.json"))
	if err != nil {
		t.Fatalf("Failed to glob metadata files: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("No metadata file found")
	}

	data, err := os.ReadFile(matches[len(matches)-1])
	if err != nil {
		t.Fatalf("Failed to read metadata file: %v", err)
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(data, &metadata); err != nil {
		t.Fatalf("Invalid metadata JSON: %v", err)
	}

	requiredFields := []string{"harvest_version", "run_id", "selector", "parameters", "results"}
	for _, field := range requiredFields {
		if _, ok := metadata[field]; !ok {
			t.Errorf("Missing required metadata field: %s", field)
		}
	}
	return metadata
}

// AssertErrorContains checks if an error contains expected text
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), expected) {
		t.Errorf("Expected error to contain %q, got: %v", expected, err)
	}
}
