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

package github

import (
	"context"
	"fmt"
	"sync"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
)

// MockClient is a scripted implementation of the Client interface for
// testing. Responses are keyed by the exact URL requested.
type MockClient struct {
	// Pages maps a listing URL to the page served for it
	Pages map[string]*PullRequestPage

	// Commits maps a commits URL to the list served for it
	Commits map[string]*CommitList

	// Errors holds per-URL failures consumed in order before data is served
	Errors map[string][]error

	// Behavior flags
	ShouldFailAuth bool

	mu    sync.Mutex
	calls []string
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{
		Pages:   make(map[string]*PullRequestPage),
		Commits: make(map[string]*CommitList),
		Errors:  make(map[string][]error),
	}
}

// ListPullRequests implements the Client interface
func (m *MockClient) ListPullRequests(ctx context.Context, pageURL string) (*PullRequestPage, error) {
	if err := m.enter(ctx, pageURL); err != nil {
		return nil, err
	}
	page, ok := m.Pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("no page scripted for %s: %w", pageURL, harvesterrors.ErrRepoNotFound)
	}
	return page, nil
}

// ListCommits implements the Client interface
func (m *MockClient) ListCommits(ctx context.Context, commitsURL string) (*CommitList, error) {
	if err := m.enter(ctx, commitsURL); err != nil {
		return nil, err
	}
	list, ok := m.Commits[commitsURL]
	if !ok {
		return &CommitList{}, nil
	}
	return list, nil
}

// Calls returns every URL requested so far, in order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns the number of requests made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *MockClient) enter(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, url)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if m.ShouldFailAuth {
		return fmt.Errorf("authentication failed: %w", harvesterrors.ErrInvalidToken)
	}

	if queue := m.Errors[url]; len(queue) > 0 {
		m.Errors[url] = queue[1:]
		return queue[0]
	}
	return nil
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithPage serves page for the listing URL.
func WithPage(pageURL string, page *PullRequestPage) MockClientOption {
	return func(m *MockClient) {
		m.Pages[pageURL] = page
	}
}

// WithCommits serves commits for the commits URL.
func WithCommits(commitsURL string, commits ...Commit) MockClientOption {
	return func(m *MockClient) {
		m.Commits[commitsURL] = &CommitList{Commits: commits}
	}
}

// WithErrors makes the next len(errs) requests for url fail in order.
func WithErrors(url string, errs ...error) MockClientOption {
	return func(m *MockClient) {
		m.Errors[url] = append(m.Errors[url], errs...)
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}
