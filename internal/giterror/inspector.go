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

package giterror

import (
	"errors"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v80/github"
)

// Inspector provides methods to inspect and categorize errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the requested resource does not exist.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents an exhausted quota.
	IsRateLimitError(err error) bool

	// IsNetworkError returns true if the request never produced a response.
	IsNetworkError(err error) bool
}

// GitHubErrorInspector implements the Inspector interface for GitHub API errors.
type GitHubErrorInspector struct{}

// NewInspector creates a new GitHubErrorInspector.
func NewInspector() Inspector {
	return &GitHubErrorInspector{}
}

// StatusCode extracts the HTTP status carried by a go-github error.
func StatusCode(err error) (int, bool) {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode, true
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response.StatusCode, true
	}
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode, true
	}
	return 0, false
}

// IsAuthError checks if the error is an authentication error.
func (i *GitHubErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := StatusCode(err); ok {
		return code == http.StatusUnauthorized
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "bad credentials")
}

// IsNotFoundError checks if the error is a not found error.
func (i *GitHubErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := StatusCode(err); ok {
		return code == http.StatusNotFound
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "not found")
}

// IsRateLimitError checks if the error is a rate limit error.
// GitHub answers an exhausted quota with 403 or 429, so both count.
func (i *GitHubErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	if code, ok := StatusCode(err); ok {
		return code == http.StatusForbidden || code == http.StatusTooManyRequests
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429")
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *GitHubErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := StatusCode(err); ok {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}
