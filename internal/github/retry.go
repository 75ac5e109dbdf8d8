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

package github

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/giterror"
	"github.com/sirseerhq/sirseer-harvest/internal/logging"
)

const (
	reasonRateLimit = "rate_limit"
	reasonTransient = "transient"
)

// RetryConfig configures the retry behavior for API calls
type RetryConfig struct {
	// MaxRetries is the total number of attempts per call, the first included
	MaxRetries int
	// TransientBackoff is the fixed delay after network and server errors
	TransientBackoff time.Duration
	// RateLimitBackoff is the fixed delay after a rate limit response
	RateLimitBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:       3,
		TransientBackoff: 5 * time.Second,
		RateLimitBackoff: 60 * time.Second,
	}
}

// RetryClient wraps a GitHub client with a bounded retry policy and the
// rate limit governor. Every failure counts against the same per-call
// budget; rate limit failures wait longer than the rest. When the budget
// is spent the returned error wraps errors.ErrRetriesExhausted, and also
// errors.ErrNetworkFailure when the last attempt never got a response.
type RetryClient struct {
	client    Client
	config    RetryConfig
	governor  *Governor
	inspector giterror.Inspector
	sleep     SleepFunc
	logger    logrus.FieldLogger
	observer  Observer
}

// Ensure RetryClient implements Client
var _ Client = (*RetryClient)(nil)

// RetryOption customizes a RetryClient.
type RetryOption func(*RetryClient)

// WithGovernor consults the governor before and after each successful call.
func WithGovernor(g *Governor) RetryOption {
	return func(r *RetryClient) { r.governor = g }
}

// WithRetrySleep overrides how backoff delays are slept.
func WithRetrySleep(sleep SleepFunc) RetryOption {
	return func(r *RetryClient) { r.sleep = sleep }
}

// WithRetryLogger sets the logger for retry warnings.
func WithRetryLogger(logger logrus.FieldLogger) RetryOption {
	return func(r *RetryClient) { r.logger = logger }
}

// WithRetryObserver registers an observer for attempts and retries.
func WithRetryObserver(observer Observer) RetryOption {
	return func(r *RetryClient) { r.observer = observer }
}

// NewRetryClient creates a new RetryClient with the given configuration
func NewRetryClient(client Client, config RetryConfig, opts ...RetryOption) *RetryClient {
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultRetryConfig().MaxRetries
	}
	r := &RetryClient{
		client:    client,
		config:    config,
		inspector: giterror.NewInspector(),
		sleep:     Sleep,
		logger:    logging.Discard(),
		observer:  Observers(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListPullRequests implements the Client interface with retry logic
func (r *RetryClient) ListPullRequests(ctx context.Context, pageURL string) (*PullRequestPage, error) {
	return withRetry(ctx, r, EndpointPulls, func(ctx context.Context) (*PullRequestPage, error) {
		return r.client.ListPullRequests(ctx, pageURL)
	})
}

// ListCommits implements the Client interface with retry logic
func (r *RetryClient) ListCommits(ctx context.Context, commitsURL string) (*CommitList, error) {
	return withRetry(ctx, r, EndpointCommits, func(ctx context.Context) (*CommitList, error) {
		return r.client.ListCommits(ctx, commitsURL)
	})
}

type rateReporter interface {
	RateStatus() Rate
}

func withRetry[T rateReporter](ctx context.Context, r *RetryClient, endpoint string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxRetries; attempt++ {
		if r.governor != nil {
			if err := r.governor.Wait(ctx); err != nil {
				return zero, err
			}
		}

		result, err := call(ctx)
		r.observer.ObserveCall(endpoint, err)
		if err == nil {
			if r.governor != nil {
				if err := r.governor.Observe(ctx, result.RateStatus()); err != nil {
					return zero, err
				}
			}
			return result, nil
		}

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		lastErr = err
		if attempt == r.config.MaxRetries {
			break
		}

		reason, backoff := r.classify(err)
		r.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt,
			"max":      r.config.MaxRetries,
			"reason":   reason,
			"backoff":  backoff.String(),
		}).WithError(err).Warn("GitHub request failed, retrying")
		r.observer.ObserveRetry(endpoint, reason, backoff)

		if err := r.sleep(ctx, backoff); err != nil {
			return zero, err
		}
	}

	if r.inspector.IsNetworkError(lastErr) {
		return zero, fmt.Errorf("%s failed after %d attempts: %w: %w: %w",
			endpoint, r.config.MaxRetries, harvesterrors.ErrRetriesExhausted, harvesterrors.ErrNetworkFailure, lastErr)
	}
	return zero, fmt.Errorf("%s failed after %d attempts: %w: %w",
		endpoint, r.config.MaxRetries, harvesterrors.ErrRetriesExhausted, lastErr)
}

func (r *RetryClient) classify(err error) (string, time.Duration) {
	if r.inspector.IsRateLimitError(err) {
		return reasonRateLimit, r.config.RateLimitBackoff
	}
	return reasonTransient, r.config.TransientBackoff
}
