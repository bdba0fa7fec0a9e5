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
	"cmp"
	"io"
	"os"

	"github.com/creachadair/extsort/line"
	"github.com/creachadair/mds/heapq"
	"github.com/creachadair/taskgroup"
)

// mergeStage advances the sorter by one stage: it partitions the run files
// of the current stage into contiguous groups of at most numMerge files and
// submits one merge job per group. Each job writes one run file of the next
// stage and deletes the runs it consumed. mergeStage blocks until all jobs
// have finished, and reports the first error any of them observed.
//
// Each stage reduces the file count from N to ⌈N/numMerge⌉, so repeated
// stages reach a single run.
func (s *Sorter[T]) mergeStage() error {
	count, src := s.files, s.stage
	s.stage++
	s.files = 0

	g, run := taskgroup.New(nil).Limit(s.config.numThreads())
	submit := func(task taskgroup.Task) { run(task) }

	k := s.config.numMerge()
	var serr error
	for first := 0; first < count; first += k {
		if err := s.merge(submit, src, first, min(first+k, count)); err != nil {
			serr = err
			break
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return serr
}

// A mergeEntry pairs a record with the index of the source run it was read
// from. Entries are ordered by record, with ties broken by source index so
// that heap order is deterministic.
type mergeEntry[T any] struct {
	rec T
	src int
}

// merge reserves the next file index of the current stage and submits a
// task that k-way merges the source runs [first, last) of stage src into
// it. The sources are deleted only after the output is fully written.
func (s *Sorter[T]) merge(submit func(taskgroup.Task), src, first, last int) error {
	if first >= last {
		return nil
	}
	f, err := s.store.Create(s.stage, s.files)
	if err != nil {
		return err
	}
	s.files++

	submit(func() error {
		defer f.Cancel()

		files := make([]*os.File, 0, last-first)
		defer func() {
			for _, rf := range files {
				rf.Close()
			}
		}()
		var readers []*line.Reader[T]
		for i := first; i < last; i++ {
			rf, err := s.store.Open(src, i)
			if err != nil {
				return err
			}
			files = append(files, rf)
			readers = append(readers, line.NewReader(rf, s.codec))
		}

		q := heapq.New(func(a, b mergeEntry[T]) int {
			if c := s.compare(a.rec, b.rec); c != 0 {
				return c
			}
			return cmp.Compare(a.src, b.src)
		})
		for i, r := range readers {
			rec, err := r.Next()
			if err == io.EOF {
				continue // an empty source contributes nothing
			} else if err != nil {
				return err
			}
			q.Add(mergeEntry[T]{rec: rec, src: i})
		}

		w := line.NewWriter(f, s.codec)
		for q.Len() > 0 {
			e, _ := q.Pop()
			if err := w.Write(e.rec); err != nil {
				return err
			}
			rec, err := readers[e.src].Next()
			if err == io.EOF {
				continue
			} else if err != nil {
				return err
			}
			q.Add(mergeEntry[T]{rec: rec, src: e.src})
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		// The output is committed; the sources are no longer needed.
		for _, rf := range files {
			rf.Close()
		}
		files = nil
		for i := first; i < last; i++ {
			if err := s.store.Remove(src, i); err != nil {
				return err
			}
		}
		return nil
	})
	return nil
}
