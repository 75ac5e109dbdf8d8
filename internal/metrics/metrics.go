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

// Package metrics exposes Prometheus counters for a fetch run.
//
// Harvest runs are short-lived batch jobs, so instead of serving a scrape
// endpoint the recorder writes its registry to a node-exporter textfile
// when the run ends.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sirseerhq/sirseer-harvest/internal/github"
	"github.com/sirseerhq/sirseer-harvest/internal/harvest"
	"github.com/sirseerhq/sirseer-harvest/internal/output"
)

const namespace = "harvest"

// Recorder collects run metrics in its own registry. Each call to New
// creates an independent registry so repeated runs never collide.
type Recorder struct {
	registry *prometheus.Registry

	apiCalls      *prometheus.CounterVec
	apiErrors     *prometheus.CounterVec
	retries       *prometheus.CounterVec
	rateLimitWait prometheus.Counter
	pullRequests  prometheus.Counter
	commits       prometheus.Counter
	estimated     prometheus.Gauge
	lastRun       *prometheus.GaugeVec
}

// Ensure Recorder implements the observer interfaces
var (
	_ github.Observer  = (*Recorder)(nil)
	_ harvest.Progress = (*Recorder)(nil)
)

// New creates a recorder whose series carry the repository label.
func New(repository string) *Recorder {
	labels := prometheus.Labels{"repository": repository}
	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help, ConstLabels: labels}
	}

	r := &Recorder{
		registry:      prometheus.NewRegistry(),
		apiCalls:      prometheus.NewCounterVec(factory("api_calls_total", "GitHub API calls by endpoint."), []string{"endpoint"}),
		apiErrors:     prometheus.NewCounterVec(factory("api_errors_total", "Failed GitHub API calls by endpoint."), []string{"endpoint"}),
		retries:       prometheus.NewCounterVec(factory("retries_total", "Retried GitHub API calls by reason."), []string{"reason"}),
		rateLimitWait: prometheus.NewCounter(factory("rate_limit_wait_seconds_total", "Seconds spent waiting for the rate limit to reset.")),
		pullRequests:  prometheus.NewCounter(factory("pull_requests_emitted_total", "Merged pull requests written to the output.")),
		commits:       prometheus.NewCounter(factory("commits_emitted_total", "Commits written to the output.")),
		estimated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "estimated_pull_requests", ConstLabels: labels,
			Help: "Pull request estimate derived from the first listing page.",
		}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_run_timestamp_seconds", ConstLabels: labels,
			Help: "Unix time the last run finished, by stop reason.",
		}, []string{"stop"}),
	}

	r.registry.MustRegister(
		r.apiCalls, r.apiErrors, r.retries, r.rateLimitWait,
		r.pullRequests, r.commits, r.estimated, r.lastRun,
	)
	return r
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveCall implements github.Observer.
func (r *Recorder) ObserveCall(endpoint string, err error) {
	r.apiCalls.WithLabelValues(endpoint).Inc()
	if err != nil {
		r.apiErrors.WithLabelValues(endpoint).Inc()
	}
}

// ObserveRetry implements github.Observer.
func (r *Recorder) ObserveRetry(_, reason string, _ time.Duration) {
	r.retries.WithLabelValues(reason).Inc()
}

// ObserveRateLimitWait implements github.Observer.
func (r *Recorder) ObserveRateLimitWait(wait time.Duration) {
	r.rateLimitWait.Add(wait.Seconds())
}

// SetTotal implements harvest.Progress.
func (r *Recorder) SetTotal(total int) {
	r.estimated.Set(float64(total))
}

// RecordEmitted implements harvest.Progress.
func (r *Recorder) RecordEmitted(record output.Record) {
	r.pullRequests.Inc()
	r.commits.Add(float64(len(record.Commits)))
}

// Finish records the end of a run.
func (r *Recorder) Finish(stop harvest.StopReason, at time.Time) {
	r.lastRun.WithLabelValues(string(stop)).Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
