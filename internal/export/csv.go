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

// Package export flattens an NDJSON record stream into a CSV table with one
// row per pull request and commit pair.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirseerhq/sirseer-harvest/internal/output"
)

// Header is the first CSV row.
var Header = []string{"Merged At", "Title", "PR URL", "Commit SHA", "Commit Message", "Commit URL"}

// ToCSV reads records from r and writes the CSV table to w. Pull requests
// without commits contribute no rows. It returns the number of data rows.
func ToCSV(r io.Reader, w io.Writer) (int, error) {
	reader := output.NewReader(r)
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	rows := 0
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}

		mergedAt := record.MergedAt.UTC().Format(time.RFC3339)
		for _, c := range record.Commits {
			row := []string{mergedAt, record.Title, record.URL, c.SHA, c.Message, c.URL}
			if err := writer.Write(row); err != nil {
				return rows, fmt.Errorf("failed to write row: %w", err)
			}
			rows++
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return rows, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return rows, nil
}

// File converts the NDJSON file at inPath into a CSV file at outPath.
func File(inPath, outPath string) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output: %w", err)
	}

	rows, err := ToCSV(in, out)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close output: %w", closeErr)
	}
	return rows, err
}
