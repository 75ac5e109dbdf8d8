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

package harvest

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/github"
	"github.com/sirseerhq/sirseer-harvest/internal/logging"
	"github.com/sirseerhq/sirseer-harvest/internal/output"
)

// Engine runs incremental fetches. It is not safe for concurrent runs
// against the same checkpoint store.
type Engine struct {
	client   github.Client
	store    Checkpoints
	writer   output.RecordWriter
	logger   logrus.FieldLogger
	progress Progress
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithProgress registers a progress receiver.
func WithProgress(progress Progress) Option {
	return func(e *Engine) { e.progress = progress }
}

// NewEngine creates an engine. The client is expected to carry its own
// retry policy; see github.RetryClient.
func NewEngine(client github.Client, store Checkpoints, writer output.RecordWriter, opts ...Option) *Engine {
	e := &Engine{
		client:   client,
		store:    store,
		writer:   writer,
		logger:   logging.Discard(),
		progress: MultiProgress(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run fetches merged pull requests newest first until the listing is
// exhausted or the stored checkpoint is reached. Each record is written
// before the checkpoint advances past it.
//
// When a call exhausts its retries, Run returns the partial result together
// with an error wrapping errors.ErrRetriesExhausted. A corrupt checkpoint
// file fails the run before any request is made.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	repo := opts.Repository.String()
	log := e.logger.WithField("repository", repo)

	previous, found, err := e.loadCheckpoint(log, opts.Repository)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	boundary := NewBoundary(previous)
	if found {
		log.WithField("checkpoint", previous).Info("Resuming from checkpoint")
	} else {
		log.Info("No checkpoint found, fetching full history")
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = github.DefaultPageSize
	}

	result := &Result{PreviousCheckpoint: previous, Checkpoint: previous}
	next := github.PullRequestsURL(opts.Repository.Owner, opts.Repository.Name, pageSize)

	for {
		page, err := e.client.ListPullRequests(ctx, next)
		if err != nil {
			return e.abort(log, result, fmt.Errorf("failed to list pull requests: %w", err))
		}
		result.Pages++

		if result.Pages == 1 {
			result.EstimatedTotal = github.EstimateTotal(page.LastPage, pageSize)
			e.progress.SetTotal(result.EstimatedTotal)
		}
		log.WithFields(logrus.Fields{
			"page":          result.Pages,
			"pull_requests": len(page.PullRequests),
		}).Debug("Fetched pull request page")

		for _, pr := range page.PullRequests {
			if !pr.Merged() {
				result.Skipped++
				continue
			}

			list, err := e.client.ListCommits(ctx, pr.CommitsURL)
			if err != nil {
				return e.abort(log, result, fmt.Errorf("failed to list commits of pull request #%d: %w", pr.Number, err))
			}

			if boundary.Reached(list.Commits) {
				result.Stop = StopCheckpoint
				log.WithFields(logrus.Fields{
					"checkpoint":   previous,
					"pull_request": pr.Number,
				}).Info("Checkpoint reached, stopping")
				return result, nil
			}

			record := buildRecord(opts, pr, list.Commits)
			if err := e.writer.Write(record); err != nil {
				return e.abort(log, result, err)
			}
			result.PullRequests++
			result.Commits += len(record.Commits)
			e.progress.RecordEmitted(record)

			if len(list.Commits) == 0 {
				log.WithField("pull_request", pr.Number).Warn("Pull request has no commits, checkpoint not advanced")
				continue
			}
			sha := list.Commits[0].SHA
			if err := e.store.Save(repo, sha); err != nil {
				return e.abort(log, result, fmt.Errorf("failed to save checkpoint: %w", err))
			}
			result.Checkpoint = sha
		}

		if !page.HasNextPage() {
			break
		}
		next = page.NextURL
	}

	result.Stop = StopDone
	return result, nil
}

// loadCheckpoint reads the repository's checkpoint, first moving an entry
// stored under the bare repository name to the "owner/name" key.
func (e *Engine) loadCheckpoint(log logrus.FieldLogger, repo Repository) (string, bool, error) {
	renamed, err := e.store.Rename(repo.Name, repo.String())
	if err != nil {
		return "", false, err
	}
	if renamed {
		log.WithField("legacy_key", repo.Name).Info("Moved checkpoint to repository key")
	}
	return e.store.Load(repo.String())
}

func (e *Engine) abort(log logrus.FieldLogger, result *Result, err error) (*Result, error) {
	if errors.Is(err, harvesterrors.ErrRetriesExhausted) {
		result.Stop = StopRetriesExhausted
		log.WithError(err).WithField("emitted", result.PullRequests).
			Error("Retries exhausted, keeping partial results")
		return result, err
	}
	result.Stop = StopError
	return result, err
}

func buildRecord(opts Options, pr github.PullRequest, commits []github.Commit) output.Record {
	record := output.Record{
		MergedAt: pr.MergedAt.UTC(),
		Title:    pr.Title,
		URL:      pr.HTMLURL,
		Commits:  make([]output.CommitRecord, 0, len(commits)),
	}
	for _, c := range commits {
		record.Commits = append(record.Commits, output.CommitRecord{
			SHA:     c.SHA,
			Message: c.Message,
			URL:     output.CommitURL(opts.WebURL, opts.Repository.Owner, opts.Repository.Name, c.SHA),
		})
	}
	return record
}
