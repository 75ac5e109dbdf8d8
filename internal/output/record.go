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
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Record is one merged pull request and its commits, serialized as a
// single NDJSON line.
type Record struct {
	MergedAt time.Time      `json:"merged_at"`
	Title    string         `json:"title"`
	URL      string         `json:"url"`
	Commits  []CommitRecord `json:"commits"`
}

// CommitRecord is one commit of a Record, in upstream delivery order.
type CommitRecord struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// CommitURL builds the web URL of a commit, e.g.
// https://github.com/owner/name/commit/sha.
func CommitURL(webURL, owner, name, sha string) string {
	return fmt.Sprintf("%s/%s/%s/commit/%s", strings.TrimRight(webURL, "/"), owner, name, sha)
}

// FileName returns the NDJSON output path for a repository selector.
func FileName(dir, selector string) string {
	return filepath.Join(dir, selector+"_prs.ndjson")
}
