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

package harvest

import "github.com/sirseerhq/sirseer-harvest/internal/github"

// Boundary detects the pull request that the previous run already
// harvested. The zero value has no checkpoint and is never reached.
type Boundary struct {
	sha string
}

// NewBoundary returns a boundary for the stored checkpoint SHA.
func NewBoundary(sha string) Boundary {
	return Boundary{sha: sha}
}

// Set reports whether a checkpoint exists.
func (b Boundary) Set() bool {
	return b.sha != ""
}

// Reached reports whether the checkpoint appears anywhere in commits.
func (b Boundary) Reached(commits []github.Commit) bool {
	if !b.Set() {
		return false
	}
	for _, c := range commits {
		if c.SHA == b.sha {
			return true
		}
	}
	return false
}
