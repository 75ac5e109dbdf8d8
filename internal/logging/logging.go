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

// Package logging configures the logrus logger shared by all commands.
//
// Log lines go to stderr and, when a log file is configured, to that file
// as well, so unattended runs keep a history next to their output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	// Verbose enables debug level.
	Verbose bool

	// File is appended to in addition to Output when set.
	File string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a logger configured by opts and a function that releases
// the log file, if any.
func New(opts Options) (*logrus.Logger, func() error, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	closer := func() error { return nil }
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
		closer = f.Close
	}
	logger.SetOutput(out)

	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
