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
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-harvest/internal/harvest"
	"github.com/sirseerhq/sirseer-harvest/internal/state"
)

func newCheckpointCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect or delete fetch checkpoints",
	}
	cmd.AddCommand(newCheckpointShowCommand(global), newCheckpointDeleteCommand(global))
	return cmd
}

func newCheckpointShowCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the last harvested commit of every repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global, nil)
			if err != nil {
				return err
			}

			store := state.NewStore(cfg.Defaults.CheckpointFile)
			entries, err := store.Entries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No checkpoints in %s\n", store.Path())
				return nil
			}

			repos := make([]string, 0, len(entries))
			for repo := range entries {
				repos = append(repos, repo)
			}
			sort.Strings(repos)

			tbl := table.NewWriter()
			tbl.SetOutputMirror(cmd.OutOrStdout())
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"Repository", "Last commit"})
			for _, repo := range repos {
				tbl.AppendRow(table.Row{repo, entries[repo]})
			}
			tbl.Render()
			return nil
		},
	}
}

func newCheckpointDeleteCommand(global *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <selector>",
		Short: "Delete the checkpoint of a configured repository",
		Long: `Delete the checkpoint of a configured repository so the next fetch
starts from the newest pull request and walks the full history again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global, nil)
			if err != nil {
				return err
			}
			repoCfg, err := cfg.Repository(args[0])
			if err != nil {
				return err
			}
			repo := harvest.Repository{Owner: repoCfg.Owner, Name: repoCfg.Name}

			asked := false
			confirm := func(key string) bool {
				asked = true
				if yes {
					return true
				}
				return promptConfirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
					fmt.Sprintf("Delete the checkpoint for %s?", key))
			}

			store := state.NewStore(cfg.Defaults.CheckpointFile)
			deleted, err := store.Delete(repo.String(), confirm)
			if err != nil {
				return err
			}

			switch {
			case deleted:
				fmt.Fprintf(cmd.OutOrStdout(), "Checkpoint for %s deleted\n", repo)
			case asked:
				fmt.Fprintf(cmd.OutOrStdout(), "Checkpoint for %s kept\n", repo)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "No checkpoint for %s\n", repo)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}
