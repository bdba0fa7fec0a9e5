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

package extsort

import (
	"iter"
	"slices"

	"github.com/creachadair/extsort/line"
	"github.com/creachadair/taskgroup"
)

// split consumes the input sequence and partitions it into chunks whose
// summed estimated line length does not exceed the configured cap. Each
// full chunk is handed to the worker pool to be sorted in memory and
// written out as a stage-0 run file. split blocks until all workers have
// finished, and reports the first error any of them observed.
func (s *Sorter[T]) split(input iter.Seq[T]) error {
	g, run := taskgroup.New(nil).Limit(s.config.numThreads())
	submit := func(task taskgroup.Task) { run(task) }

	limit := s.config.maxSplitSize()
	var chunk []T
	var size int

	var serr error
	for r := range input {
		n := s.codec.LineLen(r)
		if size+n > limit && len(chunk) > 0 {
			if err := s.flush(submit, chunk); err != nil {
				serr = err
				break
			}
			chunk = []T{r} // the old chunk now belongs to a worker
			size = n
			continue
		}
		chunk = append(chunk, r)
		size += n
	}
	if serr == nil && len(chunk) > 0 {
		serr = s.flush(submit, chunk)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return serr
}

// flush reserves the next file index of the current stage, creates its
// writer, and submits a task that sorts chunk and writes it out. Creating
// the file in the caller means creation errors surface synchronously and
// the index is taken before the next flush.
func (s *Sorter[T]) flush(submit func(taskgroup.Task), chunk []T) error {
	f, err := s.store.Create(s.stage, s.files)
	if err != nil {
		return err
	}
	s.files++

	submit(func() error {
		defer f.Cancel()
		slices.SortFunc(chunk, s.compare)
		w := line.NewWriter(f, s.codec)
		for _, r := range chunk {
			if err := w.Write(r); err != nil {
				return err
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
		return f.Close()
	})
	return nil
}
