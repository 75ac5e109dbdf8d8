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

import "time"

// PullRequest is the subset of an upstream pull request needed for harvesting.
// MergedAt is nil for pull requests that were closed without merging.
type PullRequest struct {
	Number     int
	Title      string
	HTMLURL    string
	MergedAt   *time.Time
	CommitsURL string
}

// Merged reports whether the pull request carries a merge timestamp.
func (p PullRequest) Merged() bool {
	return p.MergedAt != nil
}

// Commit is one entry of a pull request's commit list.
type Commit struct {
	SHA     string
	Message string
}

// Rate is the quota state reported alongside a response.
// Known is false when the response carried no rate limit headers.
type Rate struct {
	Limit     int
	Remaining int
	Reset     time.Time
	Known     bool
}

// PullRequestPage is one page of a pull request listing.
type PullRequestPage struct {
	PullRequests []PullRequest

	// NextURL is the rel="next" link of the response, empty on the last page.
	NextURL string

	// LastPage is the page number of the rel="last" link, zero when absent.
	LastPage int

	Rate Rate
}

// HasNextPage reports whether the listing continues.
func (p *PullRequestPage) HasNextPage() bool {
	return p.NextURL != ""
}

// RateStatus returns the quota state reported with the page.
func (p *PullRequestPage) RateStatus() Rate {
	return p.Rate
}

// CommitList is the ordered commit list of a single pull request, in the
// order the API delivered it.
type CommitList struct {
	Commits []Commit
	Rate    Rate
}

// RateStatus returns the quota state reported with the commit list.
func (c *CommitList) RateStatus() Rate {
	return c.Rate
}

// Default values for fetch operations
const (
	// DefaultPageSize is the largest page GitHub serves for pull request listings.
	DefaultPageSize = 100

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
)
