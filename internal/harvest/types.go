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

package harvest

import (
	"github.com/sirseerhq/sirseer-harvest/internal/output"
)

// Repository identifies the upstream repository of a run.
type Repository struct {
	Owner string
	Name  string
}

// String returns "owner/name", which also keys the checkpoint file.
// Name alone is the key used by files from older tooling.
func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// Options describes a single fetch run.
type Options struct {
	Repository Repository

	// PageSize is sent as per_page and used for the total estimate.
	PageSize int

	// WebURL is the base for commit URLs in emitted records.
	WebURL string
}

// StopReason tells why a run ended.
type StopReason string

const (
	// StopDone means the listing had no further pages.
	StopDone StopReason = "done"

	// StopCheckpoint means a commit list contained the stored checkpoint.
	StopCheckpoint StopReason = "checkpoint"

	// StopRetriesExhausted means a call failed on every attempt. Records
	// emitted before the failure are kept.
	StopRetriesExhausted StopReason = "retries_exhausted"

	// StopError means the run was interrupted by any other error.
	StopError StopReason = "error"
)

// Result summarizes a run.
type Result struct {
	Stop StopReason

	// Pages is the number of listing pages fetched.
	Pages int

	// PullRequests and Commits count what was emitted.
	PullRequests int
	Commits      int

	// Skipped counts closed pull requests that were never merged.
	Skipped int

	// PreviousCheckpoint is the checkpoint loaded at the start of the run.
	PreviousCheckpoint string

	// Checkpoint is the checkpoint stored when the run ended.
	Checkpoint string

	// EstimatedTotal is derived from the first page's last-page hint, zero
	// when the hint was absent.
	EstimatedTotal int
}

// Checkpoints loads and stores the last harvested commit per repository.
// state.Store implements it.
type Checkpoints interface {
	Load(repository string) (string, bool, error)
	Save(repository, sha string) error
	Rename(from, to string) (bool, error)
}

// Progress receives run events for display and bookkeeping.
type Progress interface {
	// SetTotal is called once with the estimated number of pull requests.
	SetTotal(total int)

	// RecordEmitted is called after each record is written.
	RecordEmitted(record output.Record)
}

// MultiProgress fans events out to several Progress implementations.
type MultiProgress []Progress

// SetTotal implements Progress.
func (m MultiProgress) SetTotal(total int) {
	for _, p := range m {
		p.SetTotal(total)
	}
}

// RecordEmitted implements Progress.
func (m MultiProgress) RecordEmitted(record output.Record) {
	for _, p := range m {
		p.RecordEmitted(record)
	}
}
