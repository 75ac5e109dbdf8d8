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
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const headerRateRemaining = "X-RateLimit-Remaining"

// UserAgent is sent with every request.
var UserAgent = "sirseer-harvest"

// RESTOptions configures a RESTClient.
type RESTOptions struct {
	// APIEndpoint is the REST base URL. Defaults to https://api.github.com/.
	APIEndpoint string

	// Token authenticates requests through an oauth2 static token source.
	// Leave empty for anonymous access.
	Token string

	// PageSize is applied to commit list requests that carry no per_page.
	PageSize int

	// HTTPClient replaces the oauth2 client, mainly for tests.
	HTTPClient *http.Client
}

// RESTClient implements Client on top of go-github. It requests the exact
// URLs it is given, so rel="next" links are followed verbatim.
type RESTClient struct {
	gh       *gh.Client
	pageSize int
}

// Ensure RESTClient implements Client
var _ Client = (*RESTClient)(nil)

// NewRESTClient creates a REST client for the configured endpoint.
func NewRESTClient(ctx context.Context, opts RESTOptions) (*RESTClient, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		if opts.Token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
			httpClient = oauth2.NewClient(ctx, ts)
		} else {
			httpClient = &http.Client{}
		}
		httpClient.Timeout = DefaultTimeout
	}

	client := gh.NewClient(httpClient)
	client.UserAgent = UserAgent

	if opts.APIEndpoint != "" {
		endpoint := opts.APIEndpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		base, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid API endpoint %q: %w", opts.APIEndpoint, err)
		}
		client.BaseURL = base
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &RESTClient{gh: client, pageSize: pageSize}, nil
}

// ListPullRequests implements Client.
func (c *RESTClient) ListPullRequests(ctx context.Context, pageURL string) (*PullRequestPage, error) {
	req, err := c.gh.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build pull request listing request: %w", err)
	}

	var prs []*gh.PullRequest
	resp, err := c.gh.Do(ctx, req, &prs)
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}

	links := ParseLinks(resp.Header.Get("Link"))
	page := &PullRequestPage{
		PullRequests: make([]PullRequest, 0, len(prs)),
		NextURL:      links["next"],
		LastPage:     PageNumber(links["last"]),
		Rate:         rateFromResponse(resp),
	}

	for _, pr := range prs {
		item := PullRequest{
			Number:     pr.GetNumber(),
			Title:      pr.GetTitle(),
			HTMLURL:    pr.GetHTMLURL(),
			CommitsURL: pr.GetCommitsURL(),
		}
		if pr.MergedAt != nil {
			t := pr.MergedAt.Time
			item.MergedAt = &t
		}
		page.PullRequests = append(page.PullRequests, item)
	}

	return page, nil
}

// ListCommits implements Client.
func (c *RESTClient) ListCommits(ctx context.Context, commitsURL string) (*CommitList, error) {
	req, err := c.gh.NewRequest(http.MethodGet, withPerPage(commitsURL, c.pageSize), nil)
	if err != nil {
		return nil, fmt.Errorf("build commit listing request: %w", err)
	}

	var commits []*gh.RepositoryCommit
	resp, err := c.gh.Do(ctx, req, &commits)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	list := &CommitList{
		Commits: make([]Commit, 0, len(commits)),
		Rate:    rateFromResponse(resp),
	}
	for _, commit := range commits {
		list.Commits = append(list.Commits, Commit{
			SHA:     commit.GetSHA(),
			Message: commit.GetCommit().GetMessage(),
		})
	}

	return list, nil
}

// rateFromResponse converts go-github's parsed rate headers.
func rateFromResponse(resp *gh.Response) Rate {
	if resp == nil || resp.Response == nil {
		return Rate{}
	}
	return Rate{
		Limit:     resp.Rate.Limit,
		Remaining: resp.Rate.Remaining,
		Reset:     resp.Rate.Reset.Time,
		Known:     resp.Header.Get(headerRateRemaining) != "",
	}
}
