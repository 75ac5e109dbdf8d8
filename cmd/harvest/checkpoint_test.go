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
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/test/testutil"
)

func writeCheckpoints(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestCheckpointShow(t *testing.T) {
	ws := testutil.NewWorkspace(t, "http://127.0.0.1:1", "")

	stdout, _, err := execute(t, "", "--config", ws.ConfigFile, "checkpoint", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No checkpoints in "+ws.CheckpointFile)

	writeCheckpoints(t, ws.CheckpointFile, map[string]string{
		testRepository:        "abc123",
		"LandSandBoat/server": "def456",
	})
	stdout, _, err = execute(t, "", "--config", ws.ConfigFile, "checkpoint", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "LandSandBoat/server")
	assert.Contains(t, stdout, "def456")
	assert.Contains(t, stdout, testRepository)
	assert.Contains(t, stdout, "abc123")
}

func TestCheckpointShow_Corrupt(t *testing.T) {
	ws := testutil.NewWorkspace(t, "http://127.0.0.1:1", "")
	require.NoError(t, os.WriteFile(ws.CheckpointFile, []byte("[]"), 0o600))

	_, _, err := execute(t, "", "--config", ws.ConfigFile, "checkpoint", "show")
	assert.ErrorIs(t, err, harvesterrors.ErrCorruptCheckpoint)
}

func TestCheckpointDelete(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		stdin      string
		entries    map[string]string
		wantOutput string
		wantKept   bool
	}{
		{
			name:       "confirmed by flag",
			args:       []string{"--yes"},
			entries:    map[string]string{testRepository: "abc"},
			wantOutput: "Checkpoint for test/repo deleted",
		},
		{
			name:       "confirmed at prompt",
			stdin:      "y\n",
			entries:    map[string]string{testRepository: "abc"},
			wantOutput: "Checkpoint for test/repo deleted",
		},
		{
			name:       "declined at prompt",
			stdin:      "n\n",
			entries:    map[string]string{testRepository: "abc"},
			wantOutput: "Checkpoint for test/repo kept",
			wantKept:   true,
		},
		{
			name:       "nothing to delete",
			entries:    map[string]string{},
			wantOutput: "No checkpoint for test/repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := testutil.NewWorkspace(t, "http://127.0.0.1:1", "")
			tt.entries["other/repo"] = "keep"
			writeCheckpoints(t, ws.CheckpointFile, tt.entries)

			args := append([]string{"--config", ws.ConfigFile, "checkpoint", "delete", testutil.TestSelector}, tt.args...)
			stdout, _, err := execute(t, tt.stdin, args...)
			require.NoError(t, err)
			assert.Contains(t, stdout, tt.wantOutput)

			if tt.wantKept {
				testutil.AssertCheckpoint(t, ws.CheckpointFile, testRepository, "abc")
			} else {
				testutil.AssertCheckpoint(t, ws.CheckpointFile, testRepository, "")
			}
			testutil.AssertCheckpoint(t, ws.CheckpointFile, "other/repo", "keep")
		})
	}
}

func TestCheckpointDelete_UnknownSelector(t *testing.T) {
	ws := testutil.NewWorkspace(t, "http://127.0.0.1:1", "")

	_, _, err := execute(t, "", "--config", ws.ConfigFile, "checkpoint", "delete", "nope", "--yes")
	require.Error(t, err)
	assert.Equal(t, 2, mapErrorToExitCode(err))
}
