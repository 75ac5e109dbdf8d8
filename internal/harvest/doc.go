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

// Package harvest implements the incremental fetch engine.
//
// The engine walks the closed pull request listing of one repository page
// by page, keeps only merged pull requests, fetches each one's commit list
// and emits a record per pull request. The commit SHA stored by the
// previous run marks the boundary: as soon as a commit list contains it,
// the run stops, because everything older was harvested before. After each
// emitted record the checkpoint advances to that pull request's first
// commit, so an interrupted run resumes where it left off.
//
// Basic usage:
//
//	engine := harvest.NewEngine(client, state.NewStore("last_state.json"), writer,
//	    harvest.WithLogger(logger))
//	result, err := engine.Run(ctx, harvest.Options{
//	    Repository: harvest.Repository{Owner: "LandSandBoat", Name: "server"},
//	    PageSize:   100,
//	    WebURL:     "https://github.com",
//	})
//	if errors.Is(err, errors.ErrRetriesExhausted) {
//	    // result still describes the records already written
//	}
package harvest
