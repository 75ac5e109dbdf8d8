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
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Selector and repository written by NewWorkspace.
const (
	TestSelector = "test"
	TestOwner    = "test"
	TestName     = "repo"
)

// Workspace lays out the files a fetch run touches under one directory.
type Workspace struct {
	Dir            string
	ConfigFile     string
	OutputDir      string
	CheckpointFile string
	MetadataDir    string
	MetricsFile    string
}

// OutputFile is the NDJSON file of the test selector.
func (w Workspace) OutputFile() string {
	return filepath.Join(w.OutputDir, TestSelector+"_prs.ndjson")
}

// NewWorkspace writes a config file pointing the test selector at apiURL.
// Backoffs and padding are shortened so retries finish instantly, and
// extra YAML is appended verbatim, so it may only add top-level sections
// not written here.
func NewWorkspace(t *testing.T, apiURL, extra string) Workspace {
	t.Helper()

	dir := t.TempDir()
	w := Workspace{
		Dir:            dir,
		ConfigFile:     filepath.Join(dir, "harvest.yaml"),
		OutputDir:      filepath.Join(dir, "output"),
		CheckpointFile: filepath.Join(dir, "last_state.json"),
		MetadataDir:    filepath.Join(dir, "metadata"),
		MetricsFile:    filepath.Join(dir, "metrics", "harvest.prom"),
	}

	content := fmt.Sprintf(`github:
  api_endpoint: %s
  token: test-token
defaults:
  output_dir: %s
  checkpoint_file: %s
  metadata_dir: %s
repositories:
  %s:
    owner: %s
    name: %s
retry:
  transient_backoff: 1ms
  rate_limit_backoff: 1ms
rate_limit:
  reset_padding: 1ms
  show_progress: false
metrics:
  textfile: %s
%s`, apiURL, w.OutputDir, w.CheckpointFile, w.MetadataDir,
		TestSelector, TestOwner, TestName, w.MetricsFile, extra)

	if err := os.WriteFile(w.ConfigFile, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return w
}

// AssertFileExists checks that a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks that a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected file to not exist: %s", path)
	}
}
