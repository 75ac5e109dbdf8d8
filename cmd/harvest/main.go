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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/giterror"
)

var version = "dev"

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	global := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest merged pull requests and their commits from GitHub",
		Long: `SirSeer Harvest collects merged pull requests and their commits from a
configured GitHub repository and writes them to an NDJSON file, newest first.
Each run resumes from a per-repository checkpoint and stops as soon as it
reaches data it has already harvested.`,
		Version:       version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.PersistentFlags().StringVar(&global.configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newFetchCommand(global),
		newCheckpointCommand(global),
		newExportCommand(),
		newReconcileCommand(global),
	)

	return rootCmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes.
// Authentication and lookup failures win over retry exhaustion because
// retrying cannot fix them.
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, harvesterrors.ErrInvalidToken) ||
		errors.Is(err, harvesterrors.ErrRepoNotFound) ||
		errors.Is(err, harvesterrors.ErrUnknownRepository) ||
		errors.Is(err, harvesterrors.ErrInvalidConfig) {
		return 2
	}

	// Network failures carry no status, so the inspector's message matching
	// would only see URLs and host names.
	if !errors.Is(err, harvesterrors.ErrNetworkFailure) {
		inspector := giterror.NewInspector()
		if inspector.IsAuthError(err) || inspector.IsNotFoundError(err) {
			return 2
		}
	}

	if errors.Is(err, harvesterrors.ErrRetriesExhausted) {
		return 3 // Partial output was kept
	}

	return 1
}
