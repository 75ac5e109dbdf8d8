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
	"net/http"
	"strings"
	"testing"
	"time"
)

func getJSON(t *testing.T, url string, v interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Failed to access mock server: %v", err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp
}

func TestGitHubServer_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		pulls     int
		page      string
		wantCount int
		wantNext  bool
		wantFirst float64
	}{
		{name: "first page", pulls: 5, page: "1", wantCount: 2, wantNext: true, wantFirst: 5},
		{name: "middle page", pulls: 5, page: "2", wantCount: 2, wantNext: true, wantFirst: 3},
		{name: "last page", pulls: 5, page: "3", wantCount: 1, wantNext: false, wantFirst: 1},
		{name: "past the end", pulls: 5, page: "9", wantCount: 0, wantNext: false},
		{name: "empty repository", pulls: 0, page: "1", wantCount: 0, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewGitHubServer(t, "o", "r", MergedPulls(tt.pulls)...)

			var body []map[string]interface{}
			resp := getJSON(t, server.URL+server.PullsPath()+"?state=closed&per_page=2&page="+tt.page, &body)

			if len(body) != tt.wantCount {
				t.Fatalf("Expected %d PRs, got %d", tt.wantCount, len(body))
			}
			if tt.wantCount > 0 && body[0]["number"].(float64) != tt.wantFirst {
				t.Errorf("First PR = %v, want %v", body[0]["number"], tt.wantFirst)
			}

			link := resp.Header.Get("Link")
			if got := strings.Contains(link, `rel="next"`); got != tt.wantNext {
				t.Errorf("Link %q: next present = %v, want %v", link, got, tt.wantNext)
			}
			if tt.wantNext && !strings.Contains(link, "state=closed") {
				t.Errorf("Link %q should keep the original query", link)
			}
		})
	}
}

func TestGitHubServer_PullFields(t *testing.T) {
	server := NewGitHubServer(t, "o", "r",
		NewPullRequestBuilder(2).WithTitle("Merged").Build(),
		NewPullRequestBuilder(1).Unmerged().Build(),
	)

	var body []map[string]interface{}
	getJSON(t, server.URL+server.PullsPath(), &body)

	if len(body) != 2 {
		t.Fatalf("Expected 2 PRs, got %d", len(body))
	}
	if body[0]["title"] != "Merged" || body[0]["merged_at"] == nil {
		t.Errorf("Unexpected merged PR: %v", body[0])
	}
	if body[1]["merged_at"] != nil {
		t.Errorf("Unmerged PR should have null merged_at, got %v", body[1]["merged_at"])
	}
	if want := server.URL + server.CommitsPath(2); body[0]["commits_url"] != want {
		t.Errorf("commits_url = %v, want %s", body[0]["commits_url"], want)
	}
}

func TestGitHubServer_Commits(t *testing.T) {
	server := NewGitHubServer(t, "o", "r", NewPullRequestBuilder(7).WithCommits("c2", "c1").Build())

	var commits []map[string]interface{}
	getJSON(t, server.URL+server.CommitsPath(7), &commits)

	if len(commits) != 2 || commits[0]["sha"] != "c2" {
		t.Fatalf("Unexpected commits: %v", commits)
	}
	message := commits[0]["commit"].(map[string]interface{})["message"]
	if message != "Commit c2" {
		t.Errorf("Message = %v, want Commit c2", message)
	}

	if resp := getJSON(t, server.URL+server.CommitsPath(8), nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Unknown PR: status %d, want 404", resp.StatusCode)
	}
}

func TestGitHubServer_FailNext(t *testing.T) {
	server := NewGitHubServer(t, "o", "r", MergedPulls(1)...)
	server.FailNext(server.PullsPath(), http.StatusBadGateway, http.StatusUnauthorized)

	for _, want := range []int{http.StatusBadGateway, http.StatusUnauthorized, http.StatusOK} {
		if resp := getJSON(t, server.URL+server.PullsPath(), nil); resp.StatusCode != want {
			t.Errorf("Status = %d, want %d", resp.StatusCode, want)
		}
	}
	if server.RequestCount() != 3 {
		t.Errorf("RequestCount = %d, want 3", server.RequestCount())
	}
	if len(server.Requests()) != 3 {
		t.Errorf("Requests = %v, want 3 entries", server.Requests())
	}
}

func TestGitHubServer_RateHeaders(t *testing.T) {
	server := NewGitHubServer(t, "o", "r")
	reset := time.Now().Add(time.Minute).Truncate(time.Second)
	server.SetRateLimit(2, reset)

	for _, want := range []string{"2", "1", "1"} {
		resp := getJSON(t, server.URL+server.PullsPath(), nil)
		if got := resp.Header.Get("X-RateLimit-Remaining"); got != want {
			t.Errorf("Remaining = %s, want %s", got, want)
		}
	}

	resp := getJSON(t, server.URL+"/unknown", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Unknown path: status %d, want 404", resp.StatusCode)
	}
}

func TestNewErrorServer(t *testing.T) {
	server := NewErrorServer(t, http.StatusForbidden)
	if resp := getJSON(t, server.URL, nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", resp.StatusCode)
	}
}
