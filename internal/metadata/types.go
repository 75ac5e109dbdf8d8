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

// Package metadata types define the structures used for tracking and
// persisting information about fetch runs. These types capture run
// statistics and an audit trail linking each run to its predecessor.
package metadata

import (
	"time"
)

// FetchMetadata represents the complete metadata record for a single fetch
// run. It captures what was fetched, how it was fetched, and why the run
// stopped.
type FetchMetadata struct {
	HarvestVersion string       `json:"harvest_version"`
	RunID          string       `json:"run_id"`
	Selector       string       `json:"selector"`
	Parameters     FetchParams  `json:"parameters"`
	Results        FetchResults `json:"results"`
	Incremental    bool         `json:"incremental"`
	PreviousFetch  *FetchRef    `json:"previous_fetch,omitempty"`
}

// FetchParams captures the input parameters used for a fetch run.
type FetchParams struct {
	Owner      string `json:"owner"`
	Repository string `json:"repository"`
	PageSize   int    `json:"page_size"`
	MaxRetries int    `json:"max_retries"`
	OutputFile string `json:"output_file"`
}

// FetchResults contains statistics about a completed fetch run, covering
// both counts and the merge date range of the emitted pull requests.
type FetchResults struct {
	StopReason         string    `json:"stop_reason"`
	PullRequests       int       `json:"pull_requests"`
	Commits            int       `json:"commits"`
	SkippedUnmerged    int       `json:"skipped_unmerged"`
	Pages              int       `json:"pages"`
	EstimatedTotal     int       `json:"estimated_total,omitempty"`
	OldestMerged       time.Time `json:"oldest_merged_at"`
	NewestMerged       time.Time `json:"newest_merged_at"`
	PreviousCheckpoint string    `json:"previous_checkpoint,omitempty"`
	Checkpoint         string    `json:"checkpoint,omitempty"`
	Duration           string    `json:"fetch_duration"`
	APICallCount       int       `json:"api_calls_made"`
	FailedCalls        int       `json:"failed_calls"`
	Retries            int       `json:"retries"`
	RateLimitWait      string    `json:"rate_limit_wait"`
	StartedAt          time.Time `json:"started_at"`
	CompletedAt        time.Time `json:"completed_at"`
}

// FetchRef provides a lightweight reference to a previous fetch run,
// used to link incremental runs to their predecessors.
type FetchRef struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`
}
