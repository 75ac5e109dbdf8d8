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
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const valueInputOption = "USER_ENTERED"

// Update sets a single cell.
type Update struct {
	Range string
	Value string
}

// Values is the subset of the Sheets values API used by Reconcile.
type Values interface {
	// Get returns the cells of rng as strings, row by row.
	Get(ctx context.Context, spreadsheetID, rng string) ([][]string, error)

	// BatchUpdate writes all updates in one request.
	BatchUpdate(ctx context.Context, spreadsheetID string, updates []Update) error
}

// SheetsValues implements Values with the Sheets v4 API.
type SheetsValues struct {
	values *sheetsapi.SpreadsheetsValuesService
}

// Ensure SheetsValues implements Values
var _ Values = (*SheetsValues)(nil)

// NewSheetsValues creates a Sheets client. Pass option.WithCredentialsFile
// with a service account key for normal use.
func NewSheetsValues(ctx context.Context, opts ...option.ClientOption) (*SheetsValues, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}, opts...)
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsValues{values: svc.Spreadsheets.Values}, nil
}

// Get implements Values.
func (s *SheetsValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	resp, err := s.values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// BatchUpdate implements Values.
func (s *SheetsValues) BatchUpdate(ctx context.Context, spreadsheetID string, updates []Update) error {
	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             make([]*sheetsapi.ValueRange, 0, len(updates)),
	}
	for _, u := range updates {
		req.Data = append(req.Data, &sheetsapi.ValueRange{
			Range:  u.Range,
			Values: [][]interface{}{{u.Value}},
		})
	}

	if _, err := s.values.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("batch update: %w", err)
	}
	return nil
}
