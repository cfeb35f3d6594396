// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bench compares decode throughput of this repository's bzip2
// Decoder against the standard library's compress/bzip2, over caller
// supplied .bz2 corpus files.
package bench

import (
	"bytes"
	stdbzip2 "compress/bzip2"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"runtime"
	"testing"

	"github.com/dsnet/golib/unitconv"

	"github.com/mxmlnkn/bzip2/bzip2"
)

// Decoder opens r as a decompressing reader. Both registered
// implementations share this shape even though only one of them
// (ours) can also report an error at open time.
type Decoder func(r io.Reader) (io.Reader, error)

// Decoders is the set of registered decoder implementations, keyed by
// a short display name.
var Decoders = map[string]Decoder{
	"bzip2":          decodeOurs,
	"compress/bzip2": decodeStdlib,
}

// Paths is the list of search directories consulted by GetPath for a
// relative corpus file name.
var Paths []string

func decodeOurs(r io.Reader) (io.Reader, error) {
	return bzip2.NewReader(r, nil)
}

func decodeStdlib(r io.Reader) (io.Reader, error) {
	return stdbzip2.NewReader(r), nil
}

// GetPath resolves file against Paths, falling back to file itself
// (which may already be absolute, or relative to the working
// directory) if no search path contains it.
func GetPath(file string) string {
	if path.IsAbs(file) {
		return file
	}
	for _, p := range Paths {
		p = path.Join(p, file)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return file
}

// BenchmarkDecoder benchmarks a single decoder implementation against
// pre-compressed input, reporting throughput over the decoded byte
// count (not the compressed size).
func BenchmarkDecoder(input []byte, dec Decoder) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		if dec == nil {
			b.Fatalf("unexpected error: nil Decoder")
		}
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			rd, err := dec(bytes.NewReader(input))
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			cnt, err := io.Copy(ioutil.Discard, rd)
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(cnt)
		}
	})
}

// Rate reports a benchmark's decode throughput in bytes/sec.
func Rate(result testing.BenchmarkResult) float64 {
	if result.N == 0 {
		return 0
	}
	us := (float64(result.T.Nanoseconds()) / 1e3) / float64(result.N)
	return float64(result.Bytes) / us * 1e6
}

// FormatRate renders a throughput in human-scaled units, e.g. "12.3 MB/s".
func FormatRate(ratePerSec float64) string {
	return unitconv.FormatPrefix(ratePerSec, unitconv.Base1024, 2) + "B/s"
}

// RunSuite benchmarks every name in decs against every .bz2 file in
// files and prints one line per (decoder, file) pair to w.
func RunSuite(w io.Writer, decs, files []string) error {
	for _, f := range files {
		input, err := ioutil.ReadFile(GetPath(f))
		if err != nil {
			return err
		}
		for _, name := range decs {
			dec, ok := Decoders[name]
			if !ok {
				return fmt.Errorf("bench: unregistered decoder %q", name)
			}
			result := BenchmarkDecoder(input, dec)
			fmt.Fprintf(w, "%-20s %-20s %s\n", path.Base(f), name, FormatRate(Rate(result)))
		}
	}
	return nil
}
