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

// Package state provides durable checkpoint persistence for incremental fetches.
//
// A checkpoint file holds one entry per repository ever fetched, mapping the
// repository key ("owner/name") to the SHA of the newest commit that a previous
// run fully processed. A run only reads and writes its own key; every other
// entry is carried over untouched. Files written by older tooling keyed
// entries by the bare repository name; Rename moves such an entry to its
// "owner/name" key.
//
// Writes are atomic: the merged mapping is written to a temporary file in the
// same directory, synced, and renamed over the original. A missing file is a
// valid first-run state. A file that exists but cannot be decoded is reported
// as errors.ErrCorruptCheckpoint and is never overwritten.
//
// Example usage:
//
//	store := state.NewStore("last_state.json")
//	sha, ok, err := store.Load("LandSandBoat/server")
//	if err != nil {
//	    return err
//	}
//	if ok {
//	    fmt.Println("resuming after", sha)
//	}
//	err = store.Save("LandSandBoat/server", newest)
package state
