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
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/creachadair/extsort/line"
)

// stream returns the sorter's result sequence, reading back the single run
// of the terminal stage. The sequence holds the sorter's spill storage
// alive while it is being consumed, and releases it when the consumer's
// loop exits by any path.
//
// After the merge loop the terminal stage holds zero files (empty input) or
// one; any other count means the stage accounting is broken.
func (s *Sorter[T]) stream() iter.Seq2[T, error] {
	if s.files > 1 {
		panic(fmt.Sprintf("terminal stage %d has %d files", s.stage, s.files))
	}
	stage, files := s.stage, s.files
	return func(yield func(T, error) bool) {
		defer s.store.Close()
		if files == 0 {
			return
		}
		f, err := s.store.Open(stage, 0)
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		defer f.Close()

		r := line.NewReader(f, s.codec)
		for {
			rec, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) {
				return
			}
			// A decode failure is scoped to its line and the next line may
			// be fine, but a read failure is sticky in the reader: there
			// are no further positions to report.
			if err != nil && !errors.Is(err, line.ErrInvalid) {
				return
			}
		}
	}
}
