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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/sirseerhq/sirseer-harvest/internal/config"
	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/sheets"
	"github.com/sirseerhq/sirseer-harvest/test/testutil"
)

type stubValues struct {
	rows      map[string][][]string
	updates   []sheets.Update
	updateErr error
}

func (s *stubValues) Get(_ context.Context, spreadsheetID, rng string) ([][]string, error) {
	rows, ok := s.rows[spreadsheetID+"/"+rng]
	if !ok {
		return nil, fmt.Errorf("unexpected range %s/%s", spreadsheetID, rng)
	}
	return rows, nil
}

func (s *stubValues) BatchUpdate(_ context.Context, _ string, updates []sheets.Update) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, updates...)
	return nil
}

// useValues routes the reconcile command to values for the test.
func useValues(t *testing.T, values sheets.Values) *string {
	t.Helper()
	var credentials string
	original := newSheetsValues
	newSheetsValues = func(_ context.Context, credentialsFile string) (sheets.Values, error) {
		credentials = credentialsFile
		return values, nil
	}
	t.Cleanup(func() { newSheetsValues = original })
	return &credentials
}

func sheetsWorkspace(t *testing.T) (testutil.Workspace, string) {
	t.Helper()
	resume := filepath.Join(t.TempDir(), "last_processed_row.txt")
	ws := testutil.NewWorkspace(t, "http://127.0.0.1:1", fmt.Sprintf(`sheets:
  credentials_file: /secrets/service-account.json
  source_spreadsheet_id: old
  target_spreadsheet_id: new
  resume_file: %s
`, resume))
	return ws, resume
}

func TestReconcile(t *testing.T) {
	values := &stubValues{rows: map[string][][]string{
		"old/Sheet1!A:D": {
			{"TRUE", "t", "u", "c1"},
			{"FALSE", "t", "u", "c2"},
		},
		"new/Sheet1!E:E": {
			{"https://github.com/test/repo/commit/c2"},
			{"https://github.com/test/repo/commit/c1"},
		},
	}}
	credentials := useValues(t, values)
	ws, resume := sheetsWorkspace(t)

	_, stderr, err := execute(t, "", "--config", ws.ConfigFile, "reconcile")
	require.NoError(t, err, stderr)

	assert.Equal(t, "/secrets/service-account.json", *credentials)
	assert.Equal(t, []sheets.Update{{Range: "Sheet1!B2", Value: "TRUE"}}, values.updates)
	assert.Contains(t, stderr, "Reconciliation complete")

	row, err := sheets.LoadResumeRow(resume)
	require.NoError(t, err)
	assert.Equal(t, 3, row)
}

func TestReconcile_QuotaKeepsResumeRow(t *testing.T) {
	values := &stubValues{
		rows: map[string][][]string{
			"old/Sheet1!A:D": {{"TRUE", "t", "u", "c1"}},
			"new/Sheet1!E:E": {{"https://github.com/test/repo/commit/c1"}},
		},
		updateErr: &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"},
	}
	useValues(t, values)
	ws, resume := sheetsWorkspace(t)

	_, _, err := execute(t, "", "--config", ws.ConfigFile, "reconcile")
	require.Error(t, err)
	assert.True(t, errors.Is(err, harvesterrors.ErrRateLimit), "got %v", err)

	row, err := sheets.LoadResumeRow(resume)
	require.NoError(t, err)
	assert.Equal(t, 1, row)
}

func TestReconcile_RequiresSheetsConfig(t *testing.T) {
	useValues(t, &stubValues{})
	ws := testutil.NewWorkspace(t, "http://127.0.0.1:1", "")

	_, _, err := execute(t, "", "--config", ws.ConfigFile, "reconcile")
	require.Error(t, err)
	assert.ErrorIs(t, err, harvesterrors.ErrInvalidConfig)
	assert.Equal(t, 2, mapErrorToExitCode(err))
}

func TestValidateSheets(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.SheetsConfig)
		valid  bool
	}{
		{name: "complete", modify: func(*config.SheetsConfig) {}, valid: true},
		{name: "no credentials", modify: func(c *config.SheetsConfig) { c.CredentialsFile = "" }},
		{name: "no source", modify: func(c *config.SheetsConfig) { c.SourceSpreadsheetID = "" }},
		{name: "no target", modify: func(c *config.SheetsConfig) { c.TargetSpreadsheetID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.SheetsConfig{
				CredentialsFile:     "sa.json",
				SourceSpreadsheetID: "old",
				TargetSpreadsheetID: "new",
			}
			tt.modify(&cfg)

			err := validateSheets(cfg)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, harvesterrors.ErrInvalidConfig)
			}
		})
	}
}
