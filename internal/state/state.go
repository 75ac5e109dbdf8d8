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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
)

// ConfirmFunc is asked before a checkpoint entry is removed.
// Returning false leaves the entry in place.
type ConfirmFunc func(repository string) bool

// Store persists the repository → last commit SHA mapping in a single JSON file.
// It is not safe for use by concurrent processes.
type Store struct {
	path string
}

// NewStore returns a Store backed by the file at path. The file is not
// touched until the first Load or Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the checkpoint file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored commit SHA for repository. ok is false when the file
// does not exist or holds no entry for repository.
func (s *Store) Load(repository string) (sha string, ok bool, err error) {
	entries, err := s.read()
	if err != nil {
		return "", false, err
	}
	sha, ok = entries[repository]
	return sha, ok, nil
}

// Save records sha as the checkpoint for repository, preserving all other entries.
func (s *Store) Save(repository, sha string) error {
	entries, err := s.read()
	if err != nil {
		return err
	}
	entries[repository] = sha
	return s.write(entries)
}

// Delete removes the entry for repository once confirm approves it.
// confirm is not called when there is nothing to delete. A nil confirm
// deletes without asking.
func (s *Store) Delete(repository string, confirm ConfirmFunc) (bool, error) {
	entries, err := s.read()
	if err != nil {
		return false, err
	}
	if _, ok := entries[repository]; !ok {
		return false, nil
	}
	if confirm != nil && !confirm(repository) {
		return false, nil
	}

	delete(entries, repository)
	if err := s.write(entries); err != nil {
		return false, err
	}
	return true, nil
}

// Rename moves the entry stored under from to the key to in a single write.
// Nothing changes when from is absent or to already holds an entry.
func (s *Store) Rename(from, to string) (bool, error) {
	entries, err := s.read()
	if err != nil {
		return false, err
	}
	sha, ok := entries[from]
	if !ok {
		return false, nil
	}
	if _, exists := entries[to]; exists {
		return false, nil
	}

	entries[to] = sha
	delete(entries, from)
	if err := s.write(entries); err != nil {
		return false, err
	}
	return true, nil
}

// Entries returns a copy of every stored checkpoint.
func (s *Store) Entries() (map[string]string, error) {
	return s.read()
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read checkpoint file %s: %w", s.path, err)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", s.path, harvesterrors.ErrCorruptCheckpoint, err)
	}
	if entries == nil {
		// A literal null decodes to a nil map.
		entries = make(map[string]string)
	}
	return entries, nil
}

// write replaces the checkpoint file using a write-to-temp-and-rename pattern.
func (s *Store) write(entries map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temporary checkpoint file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to sync temporary checkpoint file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary checkpoint file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}
	return nil
}
