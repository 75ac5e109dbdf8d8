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
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-harvest/internal/export"
)

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <input.ndjson> <output.csv>",
		Short: "Convert harvested NDJSON into CSV",
		Long: `Convert a harvested NDJSON file into CSV with one row per commit:
Merged At, Title, PR URL, Commit SHA, Commit Message, Commit URL.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := export.File(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s rows to %s\n", humanize.Comma(int64(rows)), args[1])
			return nil
		},
	}
}
