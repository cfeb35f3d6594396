// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "testing"

// TestParseBlockHeaderEOS exercises the end-of-stream branch: 48-bit EOS
// magic, a 32-bit CRC, then alignment padding to the next byte boundary.
func TestParseBlockHeaderEOS(t *testing.T) {
	src := NewByteSource([]byte{
		0x17, 0x72, 0x45, 0x38, 0x50, 0x90, // endMagic
		0xDE, 0xAD, 0xBE, 0xEF, // crc
	})
	br := NewBitReader(src)

	h, kind, crc, bitOffset := parseBlockHeader(br)
	if h != nil {
		t.Fatalf("parseBlockHeader() header = %v, want nil", h)
	}
	if kind != endOfStreamBlock {
		t.Fatalf("parseBlockHeader() kind = %v, want endOfStreamBlock", kind)
	}
	if crc != 0xDEADBEEF {
		t.Fatalf("parseBlockHeader() crc = %#08x, want 0xDEADBEEF", crc)
	}
	if bitOffset != 0 {
		t.Fatalf("parseBlockHeader() bitOffset = %d, want 0", bitOffset)
	}
	if br.Tell() != 80 {
		t.Fatalf("Tell() after EOS parse = %d, want 80 (already byte-aligned)", br.Tell())
	}
}

// TestParseBlockHeaderInvalidMagic checks that an unrecognized 48-bit
// magic is rejected.
func TestParseBlockHeaderInvalidMagic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("parseBlockHeader did not panic on invalid magic")
		}
	}()
	src := NewByteSource([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	parseBlockHeader(NewBitReader(src))
}

// TestReadDataBlockHeaderRejectsRandomized checks the mandatory rejection
// of the deprecated randomized-block flag.
func TestReadDataBlockHeaderRejectsRandomized(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("readDataBlockHeader did not panic on randomized flag")
		}
	}()
	src := NewByteSource([]byte{
		0x31, 0x41, 0x59, 0x26, 0x53, 0x59, // blkMagic
		0x00, 0x00, 0x00, 0x00, // crc
		0x80, // randomized flag bit set (top bit); rest is irrelevant
	})
	parseBlockHeader(NewBitReader(src))
}
