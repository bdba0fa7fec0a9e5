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

// Package group partitions an ordered sequence of records into runs of
// equal elements.
//
// The input must already have its equal elements adjacent, as a sorted
// sequence does. Each run is spilled to a private buffer — in memory for
// small runs, a temporary file for large ones — before it is handed to the
// caller, so a run of any size is held with bounded memory and the caller
// may collect several runs before reading any of them.
package group

import (
	"errors"
	"io"
	"iter"

	"github.com/creachadair/extsort/line"
	"github.com/creachadair/extsort/spill"
)

// spoolThreshold is the run size in bytes beyond which a run is spilled
// from memory to a temporary file.
const spoolThreshold = 1 << 13

// Split partitions input into runs of equal records, as determined by eq,
// and returns a lazy sequence of the runs in input order. The input must
// have equal records adjacent; eq is only ever applied to neighbors.
//
// Each step yields a sub-sequence holding one run, or a nil sub-sequence
// with the error that interrupted the split. A sub-sequence is single-use
// and independent of the outer sequence: its run is fully buffered before
// it is yielded, so the caller need not exhaust it before taking the next
// run. Concatenating all the runs reproduces the input.
func Split[T any](input iter.Seq[T], codec line.Codec[T], eq func(a, b T) bool) iter.Seq2[iter.Seq2[T, error], error] {
	return func(yield func(iter.Seq2[T, error], error) bool) {
		next, stop := iter.Pull(input)
		defer stop()

		last, ok := next()
		for ok {
			sp := spill.NewSpooled(spoolThreshold)
			w := line.NewWriter(sp, codec)

			var werr error
			for {
				cur := last
				if err := w.Write(cur); err != nil {
					werr = err
					break
				}
				last, ok = next()
				if !ok || !eq(last, cur) {
					break
				}
			}
			if werr == nil {
				werr = w.Flush()
			}
			if werr == nil {
				werr = sp.Rewind()
			}
			if werr != nil {
				sp.Close()
				yield(nil, werr)
				return
			}
			if !yield(run(sp, codec), nil) {
				return
			}
		}
	}
}

// run returns the sub-sequence reading one buffered run back from sp. The
// buffer is released when the consumer's loop exits.
func run[T any](sp *spill.Spooled, codec line.Codec[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer sp.Close()
		r := line.NewReader(sp, codec)
		for {
			rec, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) {
				return
			}
			if err != nil && !errors.Is(err, line.ErrInvalid) {
				return // read errors are sticky; decode errors are per-line
			}
		}
	}
}
