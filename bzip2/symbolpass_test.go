// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "testing"

// TestDecodeSymbolsRun constructs a single-byte alphabet {'A'} and a
// hand-built Huffman table over {RUNA, RUNB, terminator}. The bit
// sequence RUNA, RUNB, terminator encodes a run of hh = 1*1 + 2*2 = 5
// copies of 'A', exercising the RUNA/RUNB binary-weighted accumulation
// directly.
func TestDecodeSymbolsRun(t *testing.T) {
	// lengths: RUNA=1, RUNB=2, terminator=2 -> codes "0", "10", "11".
	table := buildHuffmanTable([]byte{1, 2, 2})
	h := &blockHeader{
		symbolToByte: []byte{'A'},
		symbolCount:  1,
		selectors:    []uint8{0},
		tables:       []*huffmanTable{table},
	}

	br := bitString("0" + "10" + "11")
	dbuf := make([]uint32, 16)
	n, byteCount := decodeSymbols(br, h, dbuf)

	if n != 5 {
		t.Fatalf("decodeSymbols() n = %d, want 5", n)
	}
	if byteCount['A'] != 5 {
		t.Fatalf("byteCount['A'] = %d, want 5", byteCount['A'])
	}
	for i := 0; i < n; i++ {
		if dbuf[i] != 'A' {
			t.Fatalf("dbuf[%d] = %d, want %d", i, dbuf[i], byte('A'))
		}
	}
}

// TestDecodeSymbolsLiteral exercises the literal-symbol MTF path with a
// two-byte alphabet {'A','B'}. For a two-symbol alphabet, MTF position 0
// is only ever reachable via a run (RUNA/RUNB); the lone literal index
// (sym=2) always targets mtfSymbol[1], which starts out holding 'B'.
// Decoding that literal then the terminator should yield a single 'B'.
func TestDecodeSymbolsLiteral(t *testing.T) {
	// Alphabet: RUNA=0, RUNB=1, lit=2, terminator=3, all length 2 (a
	// complete code: 00, 01, 10, 11 in symbol order).
	lengths := []byte{2, 2, 2, 2}
	table := buildHuffmanTable(lengths)
	h := &blockHeader{
		symbolToByte: []byte{'A', 'B'},
		symbolCount:  2,
		selectors:    []uint8{0},
		tables:       []*huffmanTable{table},
	}

	bits := "10" + "11" // lit(2), terminator(3)
	br := bitString(bits)
	dbuf := make([]uint32, 16)
	n, byteCount := decodeSymbols(br, h, dbuf)

	if n != 1 || dbuf[0] != 'B' {
		t.Fatalf("decodeSymbols() = (%d, dbuf[0]=%d), want (1, %d)", n, dbuf[0], byte('B'))
	}
	if byteCount['B'] != 1 {
		t.Fatalf("byteCount['B'] = %d, want 1", byteCount['B'])
	}
}
