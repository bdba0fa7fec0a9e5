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

package spill_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/creachadair/extsort/spill"
)

func TestStore(t *testing.T) {
	s, err := spill.NewStore()
	if err != nil {
		t.Fatalf("NewStore: unexpected error: %v", err)
	}
	defer s.Close()

	if got, want := s.Path(3, 14), filepath.Join(s.Dir(), "f3-14.txt"); got != want {
		t.Errorf("Path(3, 14): got %q, want %q", got, want)
	}

	f, err := s.Create(0, 0)
	if err != nil {
		t.Fatalf("Create(0, 0): unexpected error: %v", err)
	}
	if _, err := io.WriteString(f, "hello\n"); err != nil {
		t.Fatalf("Write: unexpected error: %v", err)
	}

	// Until the writer is closed, the run must not be visible under its name.
	if _, err := s.Open(0, 0); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open before close: got %v, want %v", err, os.ErrNotExist)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close writer: unexpected error: %v", err)
	}

	r, err := s.Open(0, 0)
	if err != nil {
		t.Fatalf("Open(0, 0): unexpected error: %v", err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		t.Fatalf("Read run: unexpected error: %v", err)
	} else if got := string(data); got != "hello\n" {
		t.Errorf("Run contents: got %q, want %q", got, "hello\n")
	}

	if err := s.Remove(0, 0); err != nil {
		t.Errorf("Remove(0, 0): unexpected error: %v", err)
	}
	if _, err := s.Open(0, 0); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open after remove: got %v, want %v", err, os.ErrNotExist)
	}
}

func TestStoreClose(t *testing.T) {
	s, err := spill.NewStore()
	if err != nil {
		t.Fatalf("NewStore: unexpected error: %v", err)
	}
	f, err := s.Create(1, 0)
	if err != nil {
		t.Fatalf("Create(1, 0): unexpected error: %v", err)
	}
	io.WriteString(f, "leftover\n")
	f.Close()

	// Close must take the directory and its contents with it, and further
	// closes must be harmless.
	if err := s.Close(); err != nil {
		t.Errorf("Close: unexpected error: %v", err)
	}
	if _, err := os.Stat(s.Dir()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("After close, stat %q: got %v, want %v", s.Dir(), err, os.ErrNotExist)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Second close: unexpected error: %v", err)
	}
}

func TestSpooled(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		sp := spill.NewSpooled(64)
		defer sp.Close()
		testRoundTrip(t, sp, strings.Repeat("m", 48))
	})
	t.Run("Overflow", func(t *testing.T) {
		sp := spill.NewSpooled(64)
		defer sp.Close()
		testRoundTrip(t, sp, strings.Repeat("spilled to disk\n", 1000))
	})
	t.Run("Boundary", func(t *testing.T) {
		sp := spill.NewSpooled(8)
		defer sp.Close()
		testRoundTrip(t, sp, "12345678") // exactly at the threshold
	})
}

func testRoundTrip(t *testing.T, sp *spill.Spooled, text string) {
	t.Helper()
	if _, err := io.WriteString(sp, text); err != nil {
		t.Fatalf("Write: unexpected error: %v", err)
	}
	if err := sp.Rewind(); err != nil {
		t.Fatalf("Rewind: unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, sp); err != nil {
		t.Fatalf("Read: unexpected error: %v", err)
	}
	if buf.String() != text {
		t.Errorf("Read back %d bytes, want %d", buf.Len(), len(text))
	}
	if err := sp.Close(); err != nil {
		t.Errorf("Close: unexpected error: %v", err)
	}
}
