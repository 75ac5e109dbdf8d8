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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sirseerhq/sirseer-harvest/internal/config"
	"github.com/sirseerhq/sirseer-harvest/internal/logging"
)

// loadConfig loads and validates the configuration. override runs between
// loading and validation so flag values are validated like file values.
func loadConfig(global *globalOptions, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.LoadConfig(global.configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command logger writing to the command's stderr
// and the configured log file.
func newLogger(cmd *cobra.Command, global *globalOptions, cfg *config.Config) (*logrus.Logger, func() error, error) {
	return logging.New(logging.Options{
		Verbose: global.verbose,
		File:    cfg.Defaults.LogFile,
		Output:  cmd.ErrOrStderr(),
	})
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// promptConfirm asks a yes/no question; anything but y or yes is a no.
func promptConfirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
