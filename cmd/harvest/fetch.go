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
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-harvest/internal/config"
	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/github"
	"github.com/sirseerhq/sirseer-harvest/internal/harvest"
	"github.com/sirseerhq/sirseer-harvest/internal/metadata"
	"github.com/sirseerhq/sirseer-harvest/internal/metrics"
	"github.com/sirseerhq/sirseer-harvest/internal/output"
	"github.com/sirseerhq/sirseer-harvest/internal/state"
)

// fetchOptions carries the fetch flags. Zero values defer to the config.
type fetchOptions struct {
	selector   string
	token      string
	outputDir  string
	pageSize   int
	noProgress bool
}

func newFetchCommand(global *globalOptions) *cobra.Command {
	opts := fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch <selector>",
		Short: "Fetch merged pull requests of a configured repository",
		Long: `Fetch merged pull requests and their commits, newest first, and write
them to <output_dir>/<selector>_prs.ndjson, replacing the previous run's file.

The selector names a repository in the configuration; lsb and asb are
built in. The run stops when it reaches the commit recorded by the previous
run, so only new pull requests are written.

When stdin is a terminal and a checkpoint exists, you are offered to delete
it and fetch the full history instead.

Authentication is required via GitHub token:
  - Use --token flag to provide token directly
  - Or set GITHUB_TOKEN (or the configured token_env) environment variable`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.selector = args[0]
			return runFetch(cmd.Context(), cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub personal access token (overrides the token environment variable)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for the NDJSON output (overrides config)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Pull requests per page, 1-100 (overrides config)")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")

	return cmd
}

// runFetch executes the fetch command.
func runFetch(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts fetchOptions) error {
	if cmd.Flags().Changed("page-size") && (opts.pageSize < 1 || opts.pageSize > 100) {
		return fmt.Errorf("%w: --page-size must be between 1 and 100, got: %d",
			harvesterrors.ErrInvalidConfig, opts.pageSize)
	}

	cfg, err := loadConfig(global, func(cfg *config.Config) {
		if opts.outputDir != "" {
			cfg.Defaults.OutputDir = opts.outputDir
		}
		if repo, ok := cfg.Repositories[opts.selector]; ok && opts.pageSize > 0 {
			repo.PageSize = opts.pageSize
			cfg.Repositories[opts.selector] = repo
		}
	})
	if err != nil {
		return err
	}

	repoCfg, err := cfg.Repository(opts.selector)
	if err != nil {
		return err
	}
	repo := harvest.Repository{Owner: repoCfg.Owner, Name: repoCfg.Name}
	pageSize := cfg.GetPageSize(opts.selector)

	token := opts.token
	if token == "" {
		token = cfg.GetToken()
	}
	if token == "" {
		return fmt.Errorf("%w: GitHub token not found. Set %s or use --token flag",
			harvesterrors.ErrInvalidToken, cfg.GitHub.TokenEnv)
	}

	logger, closeLog, err := newLogger(cmd, global, cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logger.WithFields(logrus.Fields{"selector": opts.selector, "repository": repo.String()})

	store := state.NewStore(cfg.Defaults.CheckpointFile)
	if isTerminal(cmd.InOrStdin()) {
		if err := offerCheckpointReset(cmd, store, repo); err != nil {
			return err
		}
	}

	rest, err := github.NewRESTClient(ctx, github.RESTOptions{
		APIEndpoint: cfg.GitHub.APIEndpoint,
		Token:       token,
		PageSize:    pageSize,
	})
	if err != nil {
		return err
	}

	tracker := metadata.New()
	recorder := metrics.New(repo.String())
	observers := github.Observers{tracker, recorder}

	governor := github.NewGovernor(github.GovernorConfig{
		SafetyMargin:      cfg.RateLimit.SafetyMargin,
		ResetPadding:      cfg.RateLimit.ResetPadding,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
	}, github.WithLogger(logger), github.WithObserver(observers))

	client := github.NewRetryClient(rest, github.RetryConfig{
		MaxRetries:       cfg.Retry.MaxRetries,
		TransientBackoff: cfg.Retry.TransientBackoff,
		RateLimitBackoff: cfg.Retry.RateLimitBackoff,
	},
		github.WithGovernor(governor),
		github.WithRetryLogger(logger),
		github.WithRetryObserver(observers),
	)

	outputFile := output.FileName(cfg.Defaults.OutputDir, opts.selector)
	writer, err := output.NewFileWriter(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer writer.Close()

	progress := harvest.MultiProgress{tracker, recorder}
	var bar *progressBar
	if cfg.RateLimit.ShowProgress && !opts.noProgress && isTerminal(cmd.ErrOrStderr()) {
		bar = newProgressBar(cmd.ErrOrStderr(), "Fetching "+repo.String())
		progress = append(progress, bar)
	}

	engine := harvest.NewEngine(client, store, writer,
		harvest.WithLogger(logger),
		harvest.WithProgress(progress),
	)

	log.WithField("output", outputFile).Info("Starting fetch")
	result, runErr := engine.Run(ctx, harvest.Options{
		Repository: repo,
		PageSize:   pageSize,
		WebURL:     cfg.GitHub.WebURL,
	})
	if bar != nil {
		bar.Stop()
	}
	if closeErr := writer.Close(); closeErr != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close output file: %w", closeErr)
	}
	if result == nil {
		return runErr
	}

	logSummary(log, result, tracker, outputFile)

	params := metadata.FetchParams{
		Owner:      repo.Owner,
		Repository: repo.Name,
		PageSize:   pageSize,
		MaxRetries: cfg.Retry.MaxRetries,
		OutputFile: outputFile,
	}
	if cfg.Defaults.MetadataDir != "" {
		writeMetadata(log, cfg.Defaults.MetadataDir, opts.selector, params, tracker, result)
	}
	if cfg.Metrics.Textfile != "" {
		recorder.Finish(result.Stop, time.Now())
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.WithError(err).Warn("Failed to write metrics textfile")
		}
	}

	return runErr
}

// offerCheckpointReset asks whether an existing checkpoint should be
// dropped so the run starts from the newest pull request again.
func offerCheckpointReset(cmd *cobra.Command, store *state.Store, repo harvest.Repository) error {
	confirm := func(key string) bool {
		return promptConfirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
			fmt.Sprintf("A checkpoint exists for %s. Delete it and fetch the full history?", key))
	}
	if _, err := store.Rename(repo.Name, repo.String()); err != nil {
		return err
	}
	deleted, err := store.Delete(repo.String(), confirm)
	if err != nil {
		return err
	}
	if deleted {
		fmt.Fprintf(cmd.ErrOrStderr(), "Checkpoint for %s deleted\n", repo)
	}
	return nil
}

func logSummary(log logrus.FieldLogger, result *harvest.Result, tracker *metadata.Tracker, outputFile string) {
	fields := logrus.Fields{
		"stop":          result.Stop,
		"pull_requests": humanize.Comma(int64(result.PullRequests)),
		"commits":       humanize.Comma(int64(result.Commits)),
		"skipped":       humanize.Comma(int64(result.Skipped)),
		"pages":         result.Pages,
		"checkpoint":    result.Checkpoint,
	}
	if info, err := os.Stat(outputFile); err == nil {
		fields["size"] = humanize.Bytes(uint64(info.Size()))
	}
	if stats := tracker.Stats(); stats.TotalPRs > 0 {
		fields["newest_merged"] = humanize.Time(stats.NewestMerged)
	}

	if result.PullRequests == 0 {
		log.WithFields(fields).Info("No new merged pull requests")
		return
	}
	log.WithFields(fields).Infof("Fetched %s merged pull requests", humanize.Comma(int64(result.PullRequests)))
}

// writeMetadata saves the run's audit record, linking it to the previous
// run of the same selector. Failures are logged and do not fail the fetch.
func writeMetadata(log logrus.FieldLogger, dir, selector string, params metadata.FetchParams, tracker *metadata.Tracker, result *harvest.Result) {
	previous, err := metadata.LoadLatestMetadata(dir, selector)
	if err != nil {
		log.WithError(err).Warn("Failed to read previous fetch metadata")
	}

	meta := tracker.GenerateMetadata(version, selector, params, result, previous.Ref())
	path, err := metadata.SaveMetadata(meta, dir)
	if err != nil {
		log.WithError(err).Warn("Failed to save fetch metadata")
		return
	}
	log.WithField("path", path).Debug("Saved fetch metadata")
}
