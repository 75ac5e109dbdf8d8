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

// Package output writes and reads pull request records in NDJSON (Newline
// Delimited JSON) format, one self-contained JSON object per line.
//
// Writer streams each record to its destination as soon as it is produced,
// so a run that stops early keeps every record it already emitted. Reader
// decodes such a stream back for downstream conversion.
//
// Example usage:
//
//	w, err := output.NewFileWriter(output.FileName("output", "lsb"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Write(record); err != nil {
//	    log.Printf("Failed to write record: %v", err)
//	}
//
//	fmt.Printf("Wrote %d records\n", w.Count())
package output
