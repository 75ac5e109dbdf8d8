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

package state

import (
	"fmt"
	"path/filepath"
	"testing"
)

// BenchmarkSave benchmarks checkpoint writes against files of growing size
func BenchmarkSave(b *testing.B) {
	benchmarks := []struct {
		name  string
		repos int
	}{
		{"Single", 1},
		{"Ten", 10},
		{"Thousand", 1000},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			store := NewStore(filepath.Join(b.TempDir(), "last_state.json"))
			for i := 0; i < bm.repos; i++ {
				if err := store.Save(fmt.Sprintf("org/repo-%d", i), "0123456789abcdef0123456789abcdef01234567"); err != nil {
					b.Fatal(err)
				}
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if err := store.Save("org/repo-0", fmt.Sprintf("%040d", i)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkLoad benchmarks checkpoint reads
func BenchmarkLoad(b *testing.B) {
	store := NewStore(filepath.Join(b.TempDir(), "last_state.json"))
	if err := store.Save("org/repo", "0123456789abcdef0123456789abcdef01234567"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, _, err := store.Load("org/repo"); err != nil {
			b.Fatal(err)
		}
	}
}
