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
	"fmt"
	"net/http"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v80/github"
)

func ghResponse(status int) *http.Response {
	u, _ := url.Parse("https://api.github.com/repos/org/repo/pulls")
	return &http.Response{
		StatusCode: status,
		Request:    &http.Request{Method: http.MethodGet, URL: u},
	}
}

func TestGitHubErrorInspector_IsAuthError(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "typed 401",
			err:  &gh.ErrorResponse{Response: ghResponse(401), Message: "Bad credentials"},
			want: true,
		},
		{
			name: "typed 502 mentioning credentials is not auth",
			err:  &gh.ErrorResponse{Response: ghResponse(502), Message: "bad credentials proxy"},
			want: false,
		},
		{
			name: "plain bad credentials",
			err:  errors.New("Bad credentials"),
			want: true,
		},
		{
			name: "wrapped 401",
			err:  fmt.Errorf("failed to query: %w", errors.New("401 Unauthorized")),
			want: true,
		},
		{
			name: "not an auth error",
			err:  errors.New("something went wrong"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGitHubErrorInspector_IsNotFoundError(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "typed 404",
			err:  &gh.ErrorResponse{Response: ghResponse(404), Message: "Not Found"},
			want: true,
		},
		{
			name: "plain not found",
			err:  errors.New("Resource not found"),
			want: true,
		},
		{
			name: "server error",
			err:  &gh.ErrorResponse{Response: ghResponse(500), Message: "boom"},
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsNotFoundError(tt.err); got != tt.want {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGitHubErrorInspector_IsRateLimitError(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "primary rate limit",
			err:  &gh.RateLimitError{Response: ghResponse(403), Message: "API rate limit exceeded"},
			want: true,
		},
		{
			name: "secondary rate limit",
			err:  &gh.AbuseRateLimitError{Response: ghResponse(403), Message: "secondary rate limit"},
			want: true,
		},
		{
			name: "plain 403 response",
			err:  &gh.ErrorResponse{Response: ghResponse(403), Message: "Forbidden"},
			want: true,
		},
		{
			name: "429 response",
			err:  &gh.ErrorResponse{Response: ghResponse(429), Message: "Too Many Requests"},
			want: true,
		},
		{
			name: "wrapped primary rate limit",
			err:  fmt.Errorf("list pulls: %w", &gh.RateLimitError{Response: ghResponse(403)}),
			want: true,
		},
		{
			name: "plain message",
			err:  errors.New("API rate limit exceeded for user"),
			want: true,
		},
		{
			name: "server error",
			err:  &gh.ErrorResponse{Response: ghResponse(502), Message: "Bad Gateway"},
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGitHubErrorInspector_IsNetworkError(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "connection refused",
			err:  errors.New("dial tcp 127.0.0.1:443: connect: connection refused"),
			want: true,
		},
		{
			name: "url error timeout",
			err:  &url.Error{Op: "Get", URL: "https://api.github.com", Err: errors.New("i/o timeout")},
			want: true,
		},
		{
			name: "http response is not a network error",
			err:  &gh.ErrorResponse{Response: ghResponse(504), Message: "gateway timeout"},
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsNetworkError(tt.err); got != tt.want {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	if code, ok := StatusCode(&gh.ErrorResponse{Response: ghResponse(502)}); !ok || code != 502 {
		t.Errorf("StatusCode = (%d, %v), want (502, true)", code, ok)
	}
	if _, ok := StatusCode(errors.New("plain")); ok {
		t.Error("StatusCode should not find a status in a plain error")
	}
}
