// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Program extsort sorts the lines of standard input and writes them to
// standard output, using temporary files to bound memory use.
package main

import (
	"bufio"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/creachadair/extsort"
	"github.com/creachadair/extsort/line"
)

var (
	numMerge   = flag.Int("merge", 0, "Number of runs merged at a time (0 uses the default)")
	numThreads = flag.Int("threads", 0, "Number of workers (0 uses all CPUs)")
	splitSize  = flag.Int("split-size", 5_000_000, "Estimated chunk size cap in bytes")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("extsort: ")

	s, err := extsort.New(line.Strings{}, strings.Compare, &extsort.Config{
		NumMerge:     *numMerge,
		NumThreads:   *numThreads,
		MaxSplitSize: *splitSize,
	})
	if err != nil {
		log.Fatalf("Creating sorter: %v", err)
	}
	defer s.Close()

	in := bufio.NewReader(os.Stdin)
	var readErr error
	input := func(yield func(string) bool) {
		for {
			ln, err := in.ReadString('\n')
			if err == io.EOF && ln == "" {
				return
			} else if err != nil && err != io.EOF {
				readErr = err
				return
			}
			if !yield(strings.TrimSuffix(ln, "\n")) {
				return
			}
			if err == io.EOF {
				return
			}
		}
	}

	sorted, err := s.Sort(input)
	if err != nil {
		log.Fatalf("Sort: %v", err)
	}
	if readErr != nil {
		log.Fatalf("Reading stdin: %v", readErr)
	}

	out := bufio.NewWriter(os.Stdout)
	for rec, err := range sorted {
		if err != nil {
			log.Fatalf("Reading sorted output: %v", err)
		}
		out.WriteString(rec)
		out.WriteByte('\n')
	}
	if err := out.Flush(); err != nil {
		log.Fatalf("Writing stdout: %v", err)
	}
}
