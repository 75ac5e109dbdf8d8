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
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// linkRegex matches Link header entries: <url>; rel="type".
var linkRegex = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// ParseLinks extracts all URLs from a Link header keyed by relation type.
func ParseLinks(linkHeader string) map[string]string {
	links := make(map[string]string)
	if linkHeader == "" {
		return links
	}

	for _, part := range strings.Split(linkHeader, ",") {
		matches := linkRegex.FindStringSubmatch(strings.TrimSpace(part))
		if len(matches) == 3 {
			links[matches[2]] = matches[1]
		}
	}
	return links
}

// PageNumber returns the page query parameter of a listing URL,
// or zero when it is missing or malformed.
func PageNumber(rawURL string) int {
	if rawURL == "" {
		return 0
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	page, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

// EstimateTotal converts a last-page hint into an approximate item count.
// The estimate is only used for progress reporting.
func EstimateTotal(lastPage, pageSize int) int {
	if lastPage <= 0 || pageSize <= 0 {
		return 0
	}
	return lastPage * pageSize
}

// withPerPage sets per_page on rawURL unless it is already present.
func withPerPage(rawURL string, pageSize int) string {
	if pageSize <= 0 {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Get("per_page") != "" {
		return rawURL
	}
	q.Set("per_page", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	return u.String()
}
