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
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/sirseerhq/sirseer-harvest/internal/harvest"
	"github.com/sirseerhq/sirseer-harvest/internal/output"
)

// progressBar renders fetch progress on a terminal. The total is the
// listing estimate, so the bar may finish early when the run stops at a
// checkpoint or skips unmerged pull requests.
type progressBar struct {
	writer  progress.Writer
	tracker *progress.Tracker
}

var _ harvest.Progress = (*progressBar)(nil)

func newProgressBar(out io.Writer, message string) *progressBar {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(true)
	pw.SetNumTrackersExpected(1)
	pw.SetTrackerLength(30)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true

	tracker := &progress.Tracker{Message: message, Units: progress.UnitsDefault}
	pw.AppendTracker(tracker)
	go pw.Render()

	return &progressBar{writer: pw, tracker: tracker}
}

// SetTotal implements harvest.Progress.
func (p *progressBar) SetTotal(total int) {
	p.tracker.UpdateTotal(int64(total))
}

// RecordEmitted implements harvest.Progress.
func (p *progressBar) RecordEmitted(output.Record) {
	p.tracker.Increment(1)
}

// Stop marks the tracker done and waits for the final frame.
func (p *progressBar) Stop() {
	p.tracker.MarkAsDone()
	p.writer.Stop()
	for p.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
