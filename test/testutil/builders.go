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
	"time"
)

// PullRequestFixture is one closed pull request served by GitHubServer.
type PullRequestFixture struct {
	Number   int
	Title    string
	MergedAt *time.Time
	Commits  []CommitFixture
}

// CommitFixture is one commit of a PullRequestFixture.
type CommitFixture struct {
	SHA     string
	Message string
}

// restJSON renders the fixture the way the pulls endpoint does.
func (p PullRequestFixture) restJSON(baseURL, owner, name string) map[string]interface{} {
	pr := map[string]interface{}{
		"number":      p.Number,
		"title":       p.Title,
		"state":       "closed",
		"html_url":    fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, name, p.Number),
		"commits_url": fmt.Sprintf("%s/repos/%s/%s/pulls/%d/commits", baseURL, owner, name, p.Number),
		"merged_at":   nil,
	}
	if p.MergedAt != nil {
		pr["merged_at"] = p.MergedAt.UTC().Format(time.RFC3339)
	}
	return pr
}

// PullRequestBuilder provides a fluent API for creating test PRs
type PullRequestBuilder struct {
	number   int
	title    string
	mergedAt *time.Time
	commits  []CommitFixture
}

// NewPullRequestBuilder creates a merged PR with one commit named after
// its number.
func NewPullRequestBuilder(number int) *PullRequestBuilder {
	mergedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(number) * time.Hour)
	return &PullRequestBuilder{
		number:   number,
		title:    fmt.Sprintf("PR %d", number),
		mergedAt: &mergedAt,
		commits:  []CommitFixture{{SHA: fmt.Sprintf("sha%d", number), Message: fmt.Sprintf("Commit of PR %d", number)}},
	}
}

// WithTitle sets the PR title
func (b *PullRequestBuilder) WithTitle(title string) *PullRequestBuilder {
	b.title = title
	return b
}

// WithMergedAt sets the merge time
func (b *PullRequestBuilder) WithMergedAt(t time.Time) *PullRequestBuilder {
	b.mergedAt = &t
	return b
}

// Unmerged marks the PR as closed without merging
func (b *PullRequestBuilder) Unmerged() *PullRequestBuilder {
	b.mergedAt = nil
	return b
}

// WithCommits replaces the commit list; the first SHA is the newest.
func (b *PullRequestBuilder) WithCommits(shas ...string) *PullRequestBuilder {
	b.commits = make([]CommitFixture, len(shas))
	for i, sha := range shas {
		b.commits[i] = CommitFixture{SHA: sha, Message: "Commit " + sha}
	}
	return b
}

// Build returns the fixture
func (b *PullRequestBuilder) Build() PullRequestFixture {
	return PullRequestFixture{
		Number:   b.number,
		Title:    b.title,
		MergedAt: b.mergedAt,
		Commits:  append([]CommitFixture(nil), b.commits...),
	}
}

// MergedPulls builds merged PRs numbered from down to 1, newest first,
// each with a single commit shaN.
func MergedPulls(from int) []PullRequestFixture {
	pulls := make([]PullRequestFixture, 0, from)
	for n := from; n >= 1; n-- {
		pulls = append(pulls, NewPullRequestBuilder(n).Build())
	}
	return pulls
}
