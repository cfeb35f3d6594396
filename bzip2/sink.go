// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "io"

// Sink is the destination the Seekable Decoder Facade's DecodeTo writes
// decoded bytes into: any io.Writer (a file-descriptor-like stream)
// satisfies it, matching SPEC_FULL.md §6's "writable byte stream" sink.
// The core never closes a Sink.
type Sink = io.Writer

// MemSink adapts a caller-supplied, capacity-bounded byte buffer to
// Sink, matching §6's "caller-supplied byte buffer with capacity"
// alternative. Writes beyond capacity return io.ErrShortWrite along
// with however many bytes did fit. Decoder.DecodeTo reports such a short
// write as an error, after which the Decoder is poisoned; the package
// does not chain a MemSink with a stream Sink.
type MemSink struct {
	Buf []byte
	N   int
}

func (m *MemSink) Write(p []byte) (int, error) {
	room := len(m.Buf) - m.N
	if room <= 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.ErrShortWrite
	}
	n := len(p)
	if n > room {
		n = room
	}
	copy(m.Buf[m.N:], p[:n])
	m.N += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}
