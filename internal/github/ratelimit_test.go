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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovernor_WaitDuration(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	g := NewGovernor(DefaultGovernorConfig(), WithClock(func() time.Time { return now }))

	tests := []struct {
		name string
		rate Rate
		want time.Duration
	}{
		{
			name: "unknown quota never waits",
			rate: Rate{Remaining: 0, Reset: now.Add(time.Hour)},
			want: 0,
		},
		{
			name: "at safety margin",
			rate: Rate{Remaining: 5, Reset: now.Add(time.Hour), Known: true},
			want: 0,
		},
		{
			name: "below safety margin",
			rate: Rate{Remaining: 4, Reset: now.Add(90 * time.Second), Known: true},
			want: 100 * time.Second,
		},
		{
			name: "reset already passed",
			rate: Rate{Remaining: 0, Reset: now.Add(-time.Minute), Known: true},
			want: 10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.WaitDuration(tt.rate))
		})
	}
}

func TestGovernor_Observe(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	sleeper := &recordingSleep{}
	obs := &countingObserver{}
	g := NewGovernor(DefaultGovernorConfig(),
		WithClock(func() time.Time { return now }),
		WithSleep(sleeper.Sleep),
		WithObserver(obs),
	)

	require.NoError(t, g.Observe(context.Background(), Rate{Remaining: 100, Known: true}))
	assert.Empty(t, sleeper.delays)

	require.NoError(t, g.Observe(context.Background(), Rate{Remaining: 1, Reset: now.Add(time.Minute), Known: true}))
	assert.Equal(t, []time.Duration{70 * time.Second}, sleeper.delays)
	assert.Equal(t, []time.Duration{70 * time.Second}, obs.waits)
}

func TestGovernor_ObserveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGovernor(DefaultGovernorConfig())
	err := g.Observe(ctx, Rate{Remaining: 0, Reset: time.Now().Add(time.Hour), Known: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGovernor_WaitPacing(t *testing.T) {
	cfg := DefaultGovernorConfig()
	cfg.RequestsPerSecond = 1000
	g := NewGovernor(cfg)

	for i := 0; i < 3; i++ {
		require.NoError(t, g.Wait(context.Background()))
	}
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
