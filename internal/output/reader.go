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

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Reader decodes an NDJSON record stream one record at a time.
type Reader struct {
	decoder *json.Decoder
	line    int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{decoder: json.NewDecoder(r)}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (Record, error) {
	var record Record
	if err := r.decoder.Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("record %d: %w", r.line+1, err)
	}
	r.line++
	return record, nil
}

// ReadAll decodes every record in r.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)
	var records []Record
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}
