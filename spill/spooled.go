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

package spill

import (
	"bytes"
	"io"
	"os"
)

// A Spooled is a write-then-read buffer that lives in memory until its size
// exceeds a threshold, after which its contents overflow to a private
// temporary file. Write all the data first, then call [Spooled.Rewind] to
// read it back from the beginning.
type Spooled struct {
	threshold int
	mem       bytes.Buffer
	file      *os.File
	unlinked  bool // the backing file no longer has a name
}

// NewSpooled constructs an empty spooled buffer that overflows to disk once
// more than threshold bytes have been written.
func NewSpooled(threshold int) *Spooled {
	return &Spooled{threshold: threshold}
}

// Write implements [io.Writer].
func (s *Spooled) Write(p []byte) (int, error) {
	if s.file == nil && s.mem.Len()+len(p) <= s.threshold {
		return s.mem.Write(p)
	}
	if s.file == nil {
		if err := s.overflow(); err != nil {
			return 0, err
		}
	}
	return s.file.Write(p)
}

// overflow moves the in-memory contents to a fresh temporary file. The file
// is unlinked immediately where the platform permits it, so that an
// abandoned buffer cannot leave a stray file behind; otherwise it is
// removed by Close.
func (s *Spooled) overflow() error {
	f, err := os.CreateTemp("", "extsort-spool")
	if err != nil {
		return err
	}
	if _, err := s.mem.WriteTo(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if os.Remove(f.Name()) == nil {
		s.unlinked = true
	}
	s.file = f
	return nil
}

// Rewind prepares the buffer to be read back from the beginning. It must be
// called after the last write and before the first read.
func (s *Spooled) Rewind() error {
	if s.file == nil {
		return nil // the memory buffer reads from the front already
	}
	_, err := s.file.Seek(0, io.SeekStart)
	return err
}

// Read implements [io.Reader]. For a buffer that overflowed to disk, reads
// must be preceded by a call to [Spooled.Rewind].
func (s *Spooled) Read(p []byte) (int, error) {
	if s.file != nil {
		return s.file.Read(p)
	}
	return s.mem.Read(p)
}

// Close releases the buffer and its backing file, if any.
func (s *Spooled) Close() error {
	if s.file == nil {
		return nil
	}
	name := s.file.Name()
	err := s.file.Close()
	if !s.unlinked {
		if rerr := os.Remove(name); err == nil {
			err = rerr
		}
	}
	s.file = nil
	return err
}
