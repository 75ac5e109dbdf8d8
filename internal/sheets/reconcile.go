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

package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/logging"
)

const checked = "TRUE"

// Options selects the sheets and cells to reconcile.
type Options struct {
	SourceSpreadsheetID string
	TargetSpreadsheetID string

	// SourceRange holds the checkbox in column A and the key in column D.
	SourceRange string

	// TargetRange holds one URL per row.
	TargetRange string

	// UpdateSheet and UpdateColumn locate the status cell of a target row.
	UpdateSheet  string
	UpdateColumn string

	// ResumeFile stores the next target row to inspect.
	ResumeFile string
}

// Report summarizes a reconciliation.
type Report struct {
	SourceKeys int
	TargetRows int
	StartRow   int
	Updated    int
	ResumeRow  int
}

// Reconciler runs reconciliations against a Values backend.
type Reconciler struct {
	values Values
	opts   Options
	logger logrus.FieldLogger
}

// NewReconciler creates a reconciler. A nil logger discards output.
func NewReconciler(values Values, opts Options, logger logrus.FieldLogger) *Reconciler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Reconciler{values: values, opts: opts, logger: logger}
}

// Run reads both sheets, marks every matching target row and advances the
// resume row. When the batch update hits the quota, the resume row is left
// where this run started and the error wraps errors.ErrRateLimit.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	startRow, err := LoadResumeRow(r.opts.ResumeFile)
	if err != nil {
		return nil, err
	}
	report := &Report{StartRow: startRow, ResumeRow: startRow}

	r.logger.Info("Reading data from the source sheet")
	sourceRows, err := r.values.Get(ctx, r.opts.SourceSpreadsheetID, r.opts.SourceRange)
	if err != nil {
		return report, err
	}
	keys := checkedKeys(sourceRows)
	report.SourceKeys = len(keys)

	r.logger.Info("Reading data from the target sheet")
	targetRows, err := r.values.Get(ctx, r.opts.TargetSpreadsheetID, r.opts.TargetRange)
	if err != nil {
		return report, err
	}
	report.TargetRows = len(targetRows)

	var updates []Update
	for i := startRow - 1; i < len(targetRows); i++ {
		row := targetRows[i]
		if len(row) == 0 {
			continue
		}
		if _, ok := keys[lastSegment(row[0])]; ok {
			updates = append(updates, Update{
				Range: fmt.Sprintf("%s!%s%d", r.opts.UpdateSheet, r.opts.UpdateColumn, i+1),
				Value: checked,
			})
		}
	}

	if len(updates) == 0 {
		r.logger.Info("No updates required")
	} else {
		if err := r.values.BatchUpdate(ctx, r.opts.TargetSpreadsheetID, updates); err != nil {
			if isQuotaError(err) {
				// Nothing from this batch was written, so the next run rescans
				// from the row this one started at rather than from a row
				// inside the batch.
				if saveErr := SaveResumeRow(r.opts.ResumeFile, startRow); saveErr != nil {
					return report, saveErr
				}
				r.logger.WithField("resume_row", startRow).Warn("Quota limit reached, saved resume row")
				return report, fmt.Errorf("%w: %w", harvesterrors.ErrRateLimit, err)
			}
			return report, err
		}
		report.Updated = len(updates)
		r.logger.WithField("updated", len(updates)).Info("Batch update completed")
	}

	// Success also records the resume row, so a rerun skips the rows
	// already reconciled instead of starting over at row 1.
	report.ResumeRow = len(targetRows) + 1
	if report.ResumeRow < startRow {
		report.ResumeRow = startRow
	}
	if err := SaveResumeRow(r.opts.ResumeFile, report.ResumeRow); err != nil {
		return report, err
	}
	return report, nil
}

// checkedKeys collects column D of rows whose column A is checked.
func checkedKeys(rows [][]string) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, row := range rows {
		if len(row) > 3 && row[0] == checked {
			keys[strings.TrimSpace(row[3])] = struct{}{}
		}
	}
	return keys
}

func lastSegment(url string) string {
	url = strings.TrimSpace(url)
	if i := strings.LastIndex(url, "/"); i >= 0 {
		url = url[i+1:]
	}
	return strings.TrimSpace(url)
}

func isQuotaError(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// LoadResumeRow reads the 1-based row to start from. A missing or empty
// file means row 1.
func LoadResumeRow(path string) (int, error) {
	if path == "" {
		return 1, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read resume file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 1, nil
	}
	row, err := strconv.Atoi(text)
	if err != nil || row < 1 {
		return 0, fmt.Errorf("%w: resume file %s holds %q", harvesterrors.ErrInvalidConfig, path, text)
	}
	return row, nil
}

// SaveResumeRow writes row to path. An empty path disables resumption.
func SaveResumeRow(path string, row int) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(row)), 0o644); err != nil {
		return fmt.Errorf("failed to save resume file: %w", err)
	}
	return nil
}
