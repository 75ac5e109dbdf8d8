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

// Package metadata provides functionality for tracking and persisting metadata
// about fetch runs. It records statistics about each run including the number
// of pull requests and commits emitted, API calls made, the merge date range
// covered, and a link to the previous run of the same selector.
//
// The metadata system serves several purposes:
//   - Provides an audit trail of every run
//   - Enables troubleshooting by recording fetch parameters and stop reasons
//   - Supports incremental fetch tracking with links to previous runs
//
// Metadata is saved as JSON files in the metadata directory, allowing
// external tools to analyze fetch history.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sirseerhq/sirseer-harvest/internal/github"
	"github.com/sirseerhq/sirseer-harvest/internal/harvest"
	"github.com/sirseerhq/sirseer-harvest/internal/output"
)

// Tracker collects statistics during a fetch run and generates metadata.
// It observes API calls through github.Observer and emitted records
// through harvest.Progress. Create a new tracker at the start of each run.
type Tracker struct {
	mu            sync.Mutex
	runID         string
	startTime     time.Time
	now           func() time.Time
	apiCallCount  int
	failedCalls   int
	retries       int
	rateLimitWait time.Duration
	prStats       PRStats
}

// Ensure Tracker implements the observer interfaces
var (
	_ github.Observer  = (*Tracker)(nil)
	_ harvest.Progress = (*Tracker)(nil)
)

// PRStats holds statistical information about pull requests emitted during
// a fetch run.
type PRStats struct {
	TotalPRs     int       // Total number of records emitted
	TotalCommits int       // Commits across those records
	OldestMerged time.Time // Earliest merge time seen
	NewestMerged time.Time // Latest merge time seen
}

// New creates a new metadata tracker with a fresh run ID and the current
// time as its start.
func New() *Tracker {
	return &Tracker{
		runID:     uuid.NewString(),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// RunID returns the identifier of the tracked run.
func (t *Tracker) RunID() string {
	return t.runID
}

// ObserveCall implements github.Observer.
func (t *Tracker) ObserveCall(_ string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apiCallCount++
	if err != nil {
		t.failedCalls++
	}
}

// ObserveRetry implements github.Observer.
func (t *Tracker) ObserveRetry(_, _ string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.retries++
}

// ObserveRateLimitWait implements github.Observer.
func (t *Tracker) ObserveRateLimitWait(wait time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rateLimitWait += wait
}

// SetTotal implements harvest.Progress. The estimate is taken from the
// final harvest.Result instead.
func (t *Tracker) SetTotal(int) {}

// RecordEmitted implements harvest.Progress.
func (t *Tracker) RecordEmitted(record output.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prStats.TotalPRs++
	t.prStats.TotalCommits += len(record.Commits)

	if t.prStats.OldestMerged.IsZero() || record.MergedAt.Before(t.prStats.OldestMerged) {
		t.prStats.OldestMerged = record.MergedAt
	}
	if record.MergedAt.After(t.prStats.NewestMerged) {
		t.prStats.NewestMerged = record.MergedAt
	}
}

// Stats returns a snapshot of the pull request statistics.
func (t *Tracker) Stats() PRStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prStats
}

// GenerateMetadata creates a FetchMetadata instance capturing the complete
// run. result may be nil when the run failed before fetching.
//
// Parameters:
//   - version: The version of sirseer-harvest
//   - selector: The repository selector the run was started with
//   - params: The fetch parameters used for this run
//   - result: The engine's result
//   - previousFetch: Reference to the previous run of the same selector
func (t *Tracker) GenerateMetadata(version, selector string, params FetchParams, result *harvest.Result, previousFetch *FetchRef) *FetchMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := t.now()
	results := FetchResults{
		PullRequests:  t.prStats.TotalPRs,
		Commits:       t.prStats.TotalCommits,
		OldestMerged:  t.prStats.OldestMerged,
		NewestMerged:  t.prStats.NewestMerged,
		Duration:      completedAt.Sub(t.startTime).String(),
		APICallCount:  t.apiCallCount,
		FailedCalls:   t.failedCalls,
		Retries:       t.retries,
		RateLimitWait: t.rateLimitWait.String(),
		StartedAt:     t.startTime,
		CompletedAt:   completedAt,
	}

	incremental := false
	if result != nil {
		results.StopReason = string(result.Stop)
		results.SkippedUnmerged = result.Skipped
		results.Pages = result.Pages
		results.EstimatedTotal = result.EstimatedTotal
		results.PreviousCheckpoint = result.PreviousCheckpoint
		results.Checkpoint = result.Checkpoint
		incremental = result.PreviousCheckpoint != ""
	}

	return &FetchMetadata{
		HarvestVersion: version,
		RunID:          t.runID,
		Selector:       selector,
		Parameters:     params,
		Results:        results,
		Incremental:    incremental,
		PreviousFetch:  previousFetch,
	}
}

// SaveMetadata persists a FetchMetadata record to a JSON file in the specified
// directory. The file is written atomically using a temporary file and rename
// to prevent corruption.
//
// The metadata file will be named: fetch-metadata-{selector}-{timestamp}-{run}.json
// where run is the first block of the run ID, so runs started within the
// same second keep separate files.
//
// Returns the path of the written file.
func SaveMetadata(metadata *FetchMetadata, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create metadata directory: %w", err)
	}

	filename := fmt.Sprintf("fetch-metadata-%s-%d-%s.json",
		metadata.Selector, metadata.Results.StartedAt.Unix(), runSuffix(metadata.RunID))
	target := filepath.Join(dir, filename)

	file, err := os.CreateTemp(dir, filename+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create metadata file: %w", err)
	}
	tmpFile := file.Name()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(metadata); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, target); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to save metadata file: %w", err)
	}

	return target, nil
}

func runSuffix(runID string) string {
	if i := strings.IndexByte(runID, '-'); i > 0 {
		return runID[:i]
	}
	return runID
}

// LoadLatestMetadata finds and loads the most recent metadata file for the
// selector from dir, ordered by start time.
//
// Returns nil if no metadata exists for the selector, or an error if
// loading fails.
func LoadLatestMetadata(dir, selector string) (*FetchMetadata, error) {
	pattern := filepath.Join(dir, fmt.Sprintf("fetch-metadata-%s-*.json", selector))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata files: %w", err)
	}

	var latest *FetchMetadata
	for _, file := range files {
		metadata, err := readMetadata(file)
		if err != nil {
			return nil, err
		}
		// The glob also matches selectors sharing this one as a prefix.
		if metadata == nil || metadata.Selector != selector {
			continue
		}
		if latest == nil || metadata.Results.StartedAt.After(latest.Results.StartedAt) {
			latest = metadata
		}
	}

	return latest, nil
}

// Ref returns a reference to this run for the next run's metadata.
func (m *FetchMetadata) Ref() *FetchRef {
	if m == nil {
		return nil
	}
	return &FetchRef{RunID: m.RunID, CompletedAt: m.Results.CompletedAt}
}

func readMetadata(path string) (*FetchMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}

	var metadata FetchMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata %s: %w", path, err)
	}
	return &metadata, nil
}
