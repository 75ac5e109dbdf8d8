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

// Package testutil provides common test helpers for sirseer-harvest
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// defaultPerPage mirrors the page size GitHub uses without per_page.
const defaultPerPage = 30

// GitHubServer is an httptest server speaking the subset of the GitHub
// REST API the harvester uses: the closed pull request listing with Link
// pagination and the per pull request commit listing. Every response
// carries rate limit headers.
type GitHubServer struct {
	*httptest.Server

	owner string
	name  string

	mu        sync.Mutex
	pulls     []PullRequestFixture
	failures  map[string][]int
	remaining int
	reset     time.Time
	requests  []string

	requestCount atomic.Int32
}

// NewGitHubServer serves pulls, newest first, for owner/name. The server
// is closed when the test ends.
func NewGitHubServer(t *testing.T, owner, name string, pulls ...PullRequestFixture) *GitHubServer {
	t.Helper()
	s := &GitHubServer{
		owner:     owner,
		name:      name,
		pulls:     pulls,
		failures:  make(map[string][]int),
		remaining: 5000,
		reset:     time.Now().Add(time.Hour),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// PullsPath is the listing path of the served repository.
func (s *GitHubServer) PullsPath() string {
	return fmt.Sprintf("/repos/%s/%s/pulls", s.owner, s.name)
}

// CommitsPath is the commit listing path of pull request number.
func (s *GitHubServer) CommitsPath(number int) string {
	return fmt.Sprintf("%s/%d/commits", s.PullsPath(), number)
}

// SetPulls replaces the served pull requests, e.g. to simulate new merges
// between two runs.
func (s *GitHubServer) SetPulls(pulls ...PullRequestFixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulls = pulls
}

// FailNext makes the next requests to path answer with statuses, in order.
func (s *GitHubServer) FailNext(path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], statuses...)
}

// SetRateLimit sets the quota reported by the next responses. Remaining
// never drops below one because go-github refuses to send requests while
// it believes the quota is exhausted.
func (s *GitHubServer) SetRateLimit(remaining int, reset time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.reset = reset
}

// Requests returns every request path with its query, in arrival order.
func (s *GitHubServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// RequestCount returns the number of requests served, failures included.
func (s *GitHubServer) RequestCount() int {
	return int(s.requestCount.Load())
}

func (s *GitHubServer) handle(w http.ResponseWriter, r *http.Request) {
	s.requestCount.Add(1)

	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	status := 0
	if queue := s.failures[r.URL.Path]; len(queue) > 0 {
		status = queue[0]
		s.failures[r.URL.Path] = queue[1:]
	}
	pulls := s.pulls
	s.writeRateHeaders(w)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		writeError(w, status)
		return
	}

	switch {
	case r.URL.Path == s.PullsPath():
		s.servePulls(w, r, pulls)
	case strings.HasPrefix(r.URL.Path, s.PullsPath()+"/") && strings.HasSuffix(r.URL.Path, "/commits"):
		s.serveCommits(w, r, pulls)
	default:
		writeError(w, http.StatusNotFound)
	}
}

func (s *GitHubServer) writeRateHeaders(w http.ResponseWriter) {
	remaining := s.remaining
	if remaining < 1 {
		remaining = 1
	}
	if s.remaining > 1 {
		s.remaining--
	}
	w.Header().Set("X-RateLimit-Limit", "5000")
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(s.reset.Unix(), 10))
}

func (s *GitHubServer) servePulls(w http.ResponseWriter, r *http.Request, pulls []PullRequestFixture) {
	query := r.URL.Query()
	perPage := queryInt(query.Get("per_page"), defaultPerPage)
	page := queryInt(query.Get("page"), 1)

	lastPage := (len(pulls) + perPage - 1) / perPage
	if lastPage == 0 {
		lastPage = 1
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(pulls) {
		start = len(pulls)
	}
	if end > len(pulls) {
		end = len(pulls)
	}

	var links []string
	if page < lastPage {
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, s.pageURL(r, page+1)))
		links = append(links, fmt.Sprintf(`<%s>; rel="last"`, s.pageURL(r, lastPage)))
	}
	if len(links) > 0 {
		w.Header().Set("Link", strings.Join(links, ", "))
	}

	body := make([]map[string]interface{}, 0, end-start)
	for _, pr := range pulls[start:end] {
		body = append(body, pr.restJSON(s.URL, s.owner, s.name))
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (s *GitHubServer) serveCommits(w http.ResponseWriter, r *http.Request, pulls []PullRequestFixture) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, s.PullsPath()+"/"), "/commits")
	number, err := strconv.Atoi(trimmed)
	if err != nil {
		writeError(w, http.StatusNotFound)
		return
	}

	for _, pr := range pulls {
		if pr.Number != number {
			continue
		}
		body := make([]map[string]interface{}, 0, len(pr.Commits))
		for _, c := range pr.Commits {
			body = append(body, map[string]interface{}{
				"sha":    c.SHA,
				"commit": map[string]interface{}{"message": c.Message},
			})
		}
		_ = json.NewEncoder(w).Encode(body)
		return
	}
	writeError(w, http.StatusNotFound)
}

func (s *GitHubServer) pageURL(r *http.Request, page int) string {
	query := r.URL.Query()
	query.Set("page", strconv.Itoa(page))
	return s.URL + r.URL.Path + "?" + query.Encode()
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, statusCode)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeError(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": http.StatusText(status)})
}

func queryInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
