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

// Package github provides a client for the GitHub REST API tailored to
// incremental harvesting of merged pull requests and their commits.
//
// The package includes:
//   - A Client interface for listing pull request pages and commit lists
//   - A REST implementation built on go-github that follows Link headers
//   - RetryClient, a bounded retry policy with category-specific backoff
//   - Governor, which sleeps when the remaining call budget runs low
//   - A scripted mock client for testing
//
// Basic usage:
//
//	rest, err := github.NewRESTClient(ctx, github.RESTOptions{Token: token, PageSize: 100})
//	if err != nil {
//	    // Handle error
//	}
//	client := github.NewRetryClient(rest, github.DefaultRetryConfig(),
//	    github.WithGovernor(github.NewGovernor(github.DefaultGovernorConfig())))
//
//	next := github.PullRequestsURL("golang", "go", 100)
//	for next != "" {
//	    page, err := client.ListPullRequests(ctx, next)
//	    if err != nil {
//	        // Handle error
//	    }
//	    // Process page.PullRequests
//	    next = page.NextURL
//	}
package github
