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

package output

// RecordWriter receives records as the harvest engine produces them.
// Implementations must persist each record before Write returns, because
// the engine advances the checkpoint right after a successful Write.
type RecordWriter interface {
	Write(record Record) error

	// Close releases the destination. Calling it twice is allowed.
	Close() error
}
