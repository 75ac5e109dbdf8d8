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
	"net/url"
	"time"
)

// Client defines the interface for the two upstream calls a harvest makes.
// This interface allows for easy mocking in tests.
type Client interface {
	// ListPullRequests fetches the page at pageURL. The first URL comes from
	// PullRequestsURL; later ones from PullRequestPage.NextURL.
	ListPullRequests(ctx context.Context, pageURL string) (*PullRequestPage, error)

	// ListCommits fetches the commit list of one pull request.
	ListCommits(ctx context.Context, commitsURL string) (*CommitList, error)
}

// PullRequestsURL returns the first listing URL for closed pull requests,
// relative to the API base URL.
func PullRequestsURL(owner, repo string, pageSize int) string {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return fmt.Sprintf("repos/%s/%s/pulls?state=closed&per_page=%d",
		url.PathEscape(owner), url.PathEscape(repo), pageSize)
}

// Endpoint names used when reporting calls to an Observer.
const (
	EndpointPulls   = "pulls"
	EndpointCommits = "commits"
)

// Observer receives notifications about outbound calls.
type Observer interface {
	// ObserveCall is invoked after every attempt, successful or not.
	ObserveCall(endpoint string, err error)

	// ObserveRetry is invoked before sleeping ahead of another attempt.
	ObserveRetry(endpoint, reason string, backoff time.Duration)

	// ObserveRateLimitWait is invoked before a proactive quota wait.
	ObserveRateLimitWait(wait time.Duration)
}

// Observers fans notifications out to several observers.
type Observers []Observer

// ObserveCall implements Observer.
func (o Observers) ObserveCall(endpoint string, err error) {
	for _, obs := range o {
		obs.ObserveCall(endpoint, err)
	}
}

// ObserveRetry implements Observer.
func (o Observers) ObserveRetry(endpoint, reason string, backoff time.Duration) {
	for _, obs := range o {
		obs.ObserveRetry(endpoint, reason, backoff)
	}
}

// ObserveRateLimitWait implements Observer.
func (o Observers) ObserveRateLimitWait(wait time.Duration) {
	for _, obs := range o {
		obs.ObserveRateLimitWait(wait)
	}
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
