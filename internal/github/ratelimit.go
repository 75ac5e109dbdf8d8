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
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/sirseerhq/sirseer-harvest/internal/logging"
)

// GovernorConfig controls proactive quota handling.
type GovernorConfig struct {
	// SafetyMargin is the remaining-quota threshold below which the
	// governor sleeps until the quota resets.
	SafetyMargin int

	// ResetPadding is added to the time until reset.
	ResetPadding time.Duration

	// RequestsPerSecond paces calls client-side. Zero disables pacing.
	RequestsPerSecond float64
}

// DefaultGovernorConfig returns the default governor configuration
func DefaultGovernorConfig() GovernorConfig {
	return GovernorConfig{
		SafetyMargin: 5,
		ResetPadding: 10 * time.Second,
	}
}

// Governor inspects the quota reported with each successful response and
// sleeps through the reset window once the remaining quota runs low.
type Governor struct {
	config   GovernorConfig
	limiter  *rate.Limiter
	now      func() time.Time
	sleep    SleepFunc
	logger   logrus.FieldLogger
	observer Observer
}

// GovernorOption customizes a Governor.
type GovernorOption func(*Governor)

// WithClock overrides the time source.
func WithClock(now func() time.Time) GovernorOption {
	return func(g *Governor) { g.now = now }
}

// WithSleep overrides how the governor sleeps.
func WithSleep(sleep SleepFunc) GovernorOption {
	return func(g *Governor) { g.sleep = sleep }
}

// WithLogger sets the governor's logger.
func WithLogger(logger logrus.FieldLogger) GovernorOption {
	return func(g *Governor) { g.logger = logger }
}

// WithObserver registers an observer for quota waits.
func WithObserver(observer Observer) GovernorOption {
	return func(g *Governor) { g.observer = observer }
}

// NewGovernor creates a governor.
func NewGovernor(config GovernorConfig, opts ...GovernorOption) *Governor {
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	g := &Governor{
		config:   config,
		limiter:  rate.NewLimiter(limit, 1),
		now:      time.Now,
		sleep:    Sleep,
		logger:   logging.Discard(),
		observer: Observers(nil),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Wait blocks until the client-side pacer admits another request.
func (g *Governor) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// WaitDuration reports how long Observe would sleep for the given quota.
// It is zero when the quota is unknown or at or above the safety margin.
func (g *Governor) WaitDuration(r Rate) time.Duration {
	if !r.Known || r.Remaining >= g.config.SafetyMargin {
		return 0
	}
	untilReset := r.Reset.Sub(g.now())
	if untilReset < 0 {
		untilReset = 0
	}
	return untilReset + g.config.ResetPadding
}

// Observe sleeps through the reset window when the quota is low.
func (g *Governor) Observe(ctx context.Context, r Rate) error {
	wait := g.WaitDuration(r)
	if wait == 0 {
		return nil
	}

	g.logger.WithFields(logrus.Fields{
		"remaining": r.Remaining,
		"reset":     r.Reset.Format(time.RFC3339),
		"wait":      wait.String(),
	}).Warn("Rate limit nearly exhausted, waiting for reset")
	g.observer.ObserveRateLimitWait(wait)

	return g.sleep(ctx, wait)
}
