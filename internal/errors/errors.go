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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidToken indicates GitHub authentication failed.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrRepoNotFound indicates the specified repository does not exist or is not accessible.
	// Maps to exit code 2.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrNetworkFailure indicates a network connection problem.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates an upstream API quota has been exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrRetriesExhausted indicates an outbound call failed on every attempt.
	// The fetch stops and keeps what it already wrote. Maps to exit code 3.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrCorruptCheckpoint indicates the checkpoint file exists but cannot be decoded.
	// There is no automatic recovery; the operator must fix or remove the file.
	ErrCorruptCheckpoint = errors.New("checkpoint file is corrupted")

	// ErrUnknownRepository indicates the repository selector is not configured.
	// Maps to exit code 2.
	ErrUnknownRepository = errors.New("unknown repository selector")

	// ErrInvalidConfig indicates the loaded configuration failed validation.
	// Maps to exit code 2.
	ErrInvalidConfig = errors.New("invalid configuration")
)
