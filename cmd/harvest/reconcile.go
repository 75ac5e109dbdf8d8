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
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/sirseerhq/sirseer-harvest/internal/config"
	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/sheets"
)

// newSheetsValues opens the Sheets API with service-account credentials.
var newSheetsValues = func(ctx context.Context, credentialsFile string) (sheets.Values, error) {
	return sheets.NewSheetsValues(ctx, option.WithCredentialsFile(credentialsFile))
}

func newReconcileCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Mark harvested pull requests in the target spreadsheet",
		Long: `Read the keys checked in the source spreadsheet and set the status cell of
every target row whose URL ends in one of them. Progress is kept in the
resume file so a run interrupted by the Sheets quota continues where it
started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global, nil)
			if err != nil {
				return err
			}
			if err := validateSheets(cfg.Sheets); err != nil {
				return err
			}

			logger, closeLog, err := newLogger(cmd, global, cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			values, err := newSheetsValues(cmd.Context(), cfg.Sheets.CredentialsFile)
			if err != nil {
				return err
			}

			report, err := sheets.NewReconciler(values, sheets.Options{
				SourceSpreadsheetID: cfg.Sheets.SourceSpreadsheetID,
				TargetSpreadsheetID: cfg.Sheets.TargetSpreadsheetID,
				SourceRange:         cfg.Sheets.SourceRange,
				TargetRange:         cfg.Sheets.TargetRange,
				UpdateSheet:         cfg.Sheets.UpdateSheet,
				UpdateColumn:        cfg.Sheets.UpdateColumn,
				ResumeFile:          cfg.Sheets.ResumeFile,
			}, logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"source_keys": report.SourceKeys,
				"target_rows": report.TargetRows,
				"start_row":   report.StartRow,
				"updated":     report.Updated,
				"resume_row":  report.ResumeRow,
			}).Info("Reconciliation complete")
			return nil
		},
	}
}

func validateSheets(cfg config.SheetsConfig) error {
	switch {
	case cfg.CredentialsFile == "":
		return fmt.Errorf("%w: sheets.credentials_file is required", harvesterrors.ErrInvalidConfig)
	case cfg.SourceSpreadsheetID == "":
		return fmt.Errorf("%w: sheets.source_spreadsheet_id is required", harvesterrors.ErrInvalidConfig)
	case cfg.TargetSpreadsheetID == "":
		return fmt.Errorf("%w: sheets.target_spreadsheet_id is required", harvesterrors.ErrInvalidConfig)
	}
	return nil
}
