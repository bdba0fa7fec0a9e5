// Copyright 2025 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package spill manages the on-disk temporary storage used by the sorter.
//
// A [Store] is a process-private directory of run files, each holding a
// sorted sequence of records as text lines. Run files are addressed by a
// (stage, index) pair: stage 0 holds the output of the split phase, and each
// later stage holds the output of merging the one before it. The whole
// directory is removed when the store is closed, regardless of its contents.
package spill

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/creachadair/atomicfile"
)

// A Store is a temporary directory holding run files. A zero Store is not
// ready for use; call [NewStore].
type Store struct {
	dir  string
	once sync.Once
	err  error
}

// NewStore creates a fresh, exclusively-owned spill directory under the
// platform temporary directory. The caller must call [Store.Close] to
// release it.
func NewStore() (*Store, error) {
	dir, err := os.MkdirTemp("", "extsort")
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir reports the path of the spill directory.
func (s *Store) Dir() string { return s.dir }

// Path reports the path of the run file for the given stage and index.
func (s *Store) Path(stage, index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("f%d-%d.txt", stage, index))
}

// Create opens a writer for a new run file at the given stage and index.
// The file becomes visible under its run name only when the writer is
// closed; cancelling the writer discards it.
func (s *Store) Create(stage, index int) (*atomicfile.File, error) {
	return atomicfile.New(s.Path(stage, index), 0600)
}

// Open opens the run file at the given stage and index for reading.
func (s *Store) Open(stage, index int) (*os.File, error) {
	return os.Open(s.Path(stage, index))
}

// Remove deletes the run file at the given stage and index.
func (s *Store) Remove(stage, index int) error {
	return os.Remove(s.Path(stage, index))
}

// Close removes the spill directory and everything in it. It is safe to
// call Close multiple times; calls after the first report the same result.
func (s *Store) Close() error {
	s.once.Do(func() { s.err = os.RemoveAll(s.dir) })
	return s.err
}
