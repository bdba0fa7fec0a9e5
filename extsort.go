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

// Package extsort sorts sequences of records too large to fit in memory.
//
// A [Sorter] consumes a finite input sequence and produces the same records
// in non-decreasing order. Internally it partitions the input into chunks
// bounded by an estimated serialized size, sorts each chunk in memory on a
// worker pool, spills the sorted chunks to run files in a temporary
// directory, and then repeatedly merges groups of runs k at a time until a
// single run remains. The result is a lazy sequence read back from that
// final run.
//
// Records are stored on disk as text lines; the record type must therefore
// provide a [line.Codec]. The sort is not stable: records that compare equal
// may appear in any order relative to one another.
//
// A typical use:
//
//	s, err := extsort.New(line.Strings{}, strings.Compare, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//	sorted, err := s.Sort(input)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for rec, err := range sorted {
//		// ...
//	}
package extsort

import (
	"iter"
	"runtime"

	"github.com/creachadair/extsort/line"
	"github.com/creachadair/extsort/spill"
)

// These values are the defaults used if none are specified in the config.
var (
	// DefaultNumMerge is the default fan-in of each merge job.
	DefaultNumMerge = 16

	// DefaultSplitBudget is the default total estimated size, in bytes, of
	// all chunks held in memory at once during the split phase. The default
	// chunk cap is this value divided by the number of workers.
	DefaultSplitBudget = 10_000_000
)

// A Config contains the settings for a [Sorter]. A nil *Config is ready for
// use and provides default values.
type Config struct {
	// Number of run files merged by one merge job. If ≤ 1, use
	// DefaultNumMerge.
	NumMerge int

	// Number of workers sorting and merging in parallel. If ≤ 0, use the
	// number of available CPUs.
	NumThreads int

	// Cap on the summed estimated line length of a chunk, in bytes. The cap
	// is soft: a single record whose estimate exceeds it still forms a
	// chunk by itself. If ≤ 0, use DefaultSplitBudget / NumThreads.
	MaxSplitSize int
}

func (c *Config) numMerge() int {
	if c == nil || c.NumMerge <= 1 {
		return DefaultNumMerge
	}
	return c.NumMerge
}

func (c *Config) numThreads() int {
	if c == nil || c.NumThreads <= 0 {
		return runtime.NumCPU()
	}
	return c.NumThreads
}

func (c *Config) maxSplitSize() int {
	if c == nil || c.MaxSplitSize <= 0 {
		return DefaultSplitBudget / c.numThreads()
	}
	return c.MaxSplitSize
}

// A Sorter sorts sequences of records of type T using bounded memory,
// spilling intermediate results to a private temporary directory.
//
// A Sorter is single-use: after [Sorter.Sort] returns, its spill files
// belong to the result sequence, and the sorter must not be reused.
type Sorter[T any] struct {
	codec   line.Codec[T]
	compare func(a, b T) int
	config  *Config

	store *spill.Store
	stage int // current stage number
	files int // number of files written so far in the current stage
}

// New constructs a [Sorter] for records of type T, encoded by codec and
// ordered by compare. New will panic if codec or compare is nil. A nil
// config uses default settings.
//
// The caller should ensure [Sorter.Close] is called when the sorter is no
// longer needed, to release its temporary storage. Close is safe to call
// even after the result sequence has already released it.
func New[T any](codec line.Codec[T], compare func(a, b T) int, config *Config) (*Sorter[T], error) {
	if codec == nil {
		panic("codec is nil")
	} else if compare == nil {
		panic("compare is nil")
	}
	store, err := spill.NewStore()
	if err != nil {
		return nil, err
	}
	return &Sorter[T]{codec: codec, compare: compare, config: config, store: store}, nil
}

// Close releases the sorter's temporary storage. It is safe to call Close
// multiple times; calls after the first report the same result.
func (s *Sorter[T]) Close() error { return s.store.Close() }

// Sort consumes input and returns a lazy sequence of the same records in
// non-decreasing order. Records that compare equal may appear in any order
// relative to one another.
//
// The returned sequence yields each record together with a nil error, or a
// zero record together with a read or decode error for that position. The
// sequence is single-use, and it owns the sorter's temporary storage: the
// storage is released when the consumer's loop exits, whether or not it ran
// to completion. A caller that abandons the sequence without ranging over
// it must call [Sorter.Close].
//
// If Sort reports an error, the input may have been partially consumed, and
// the temporary storage has been released.
func (s *Sorter[T]) Sort(input iter.Seq[T]) (iter.Seq2[T, error], error) {
	if err := s.split(input); err != nil {
		s.store.Close()
		return nil, err
	}
	for s.files > 1 {
		if err := s.mergeStage(); err != nil {
			s.store.Close()
			return nil, err
		}
	}
	return s.stream(), nil
}
