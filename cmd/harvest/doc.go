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

// Package main implements the harvest command-line interface.
// It fetches merged pull requests and their commits from GitHub
// repositories and writes them to an NDJSON file, resuming from a
// per-repository checkpoint on every run.
//
// The CLI supports:
//   - Incremental fetching of a configured repository selector
//   - Inspecting and deleting checkpoints
//   - Converting harvested NDJSON to CSV
//   - Marking harvested pull requests in a Google spreadsheet
//
// Usage:
//
//	harvest fetch <selector> [flags]
//	harvest checkpoint show
//	harvest checkpoint delete <selector> [--yes]
//	harvest export <input.ndjson> <output.csv>
//	harvest reconcile
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	harvest fetch lsb
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication, configuration or unknown repository error
//   - 3: Retries exhausted; records written before the failure are kept
package main
