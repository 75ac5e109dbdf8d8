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

import (
	"testing"

	"github.com/sirseerhq/sirseer-harvest/internal/github"
)

func commits(shas ...string) []github.Commit {
	out := make([]github.Commit, 0, len(shas))
	for _, sha := range shas {
		out = append(out, github.Commit{SHA: sha, Message: "message " + sha})
	}
	return out
}

func TestBoundary_Reached(t *testing.T) {
	tests := []struct {
		name       string
		checkpoint string
		commits    []github.Commit
		want       bool
	}{
		{"no checkpoint", "", commits("c3", "c2"), false},
		{"first commit", "c3", commits("c3", "c2", "c1"), true},
		{"middle commit", "c2", commits("c3", "c2", "c1"), true},
		{"last commit", "c1", commits("c3", "c2", "c1"), true},
		{"absent", "c9", commits("c3", "c2", "c1"), false},
		{"empty list", "c1", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoundary(tt.checkpoint)
			if got := b.Reached(tt.commits); got != tt.want {
				t.Errorf("Reached() = %v, want %v", got, tt.want)
			}
			if b.Set() != (tt.checkpoint != "") {
				t.Errorf("Set() = %v for checkpoint %q", b.Set(), tt.checkpoint)
			}
		})
	}
}

func TestBoundary_ZeroValue(t *testing.T) {
	var b Boundary
	if b.Reached(commits("")) {
		t.Error("zero boundary must never be reached")
	}
}
