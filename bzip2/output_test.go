// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "testing"

func crcOf(data []byte) uint32 {
	c := initBlockCRC
	for _, b := range data {
		c = c.update(b)
	}
	return c.finish()
}

// TestBlockStateEmitUniform runs the full BWT-inversion + OutputEngine
// pipeline over a degenerate all-identical-byte block and checks the
// emitted bytes, the budget-respecting partial emit, and the CRC check.
// The block holds five 'A' cells: RLE2 emits the first four as literals
// and reads the fifth as a repeat count ('A' == 65), so the block
// decodes to 4+65 = 69 bytes.
func TestBlockStateEmitUniform(t *testing.T) {
	const n = 5
	want := make([]byte, 4+'A')
	for i := range want {
		want[i] = 'A'
	}

	dbuf := make([]uint32, n)
	var byteCount [256]int32
	for i := range dbuf {
		dbuf[i] = 'A'
		byteCount['A']++
	}

	bs, err := newBlockState(dbuf, byteCount, n, 0, crcOf(want))
	if err != nil {
		t.Fatalf("newBlockState() error: %v", err)
	}

	var out growBuffer
	produced, done, _, err := bs.emit(&out, 3)
	if err != nil {
		t.Fatalf("emit() error: %v", err)
	}
	if produced != 3 || done {
		t.Fatalf("emit(budget=3) = (%d, %v), want (3, false)", produced, done)
	}

	produced2, done2, crcVal, err := bs.emit(&out, 0)
	if err != nil {
		t.Fatalf("emit() error: %v", err)
	}
	if produced2 != 1+'A' || !done2 {
		t.Fatalf("emit(budget=0) = (%d, %v), want (66, true)", produced2, done2)
	}
	if crcVal != crcOf(want) {
		t.Fatalf("emit() crcVal = %#08x, want %#08x", crcVal, crcOf(want))
	}

	got := make([]byte, len(want))
	out.take(got)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("output[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestBlockStateEmitCrcMismatch checks that a wrong expected CRC is
// surfaced as an error once the block is fully emitted.
func TestBlockStateEmitCrcMismatch(t *testing.T) {
	dbuf := []uint32{'A'}
	var byteCount [256]int32
	byteCount['A'] = 1

	bs, err := newBlockState(dbuf, byteCount, 1, 0, 0xdeadbeef)
	if err != nil {
		t.Fatalf("newBlockState() error: %v", err)
	}
	var out growBuffer
	_, done, _, err := bs.emit(&out, 0)
	if !done {
		t.Fatalf("emit() done = false, want true")
	}
	if err == nil {
		t.Fatalf("emit() error = nil, want CrcMismatch")
	}
}

// TestNewBlockStateRejectsOrigPtr checks the origPtr >= writeCount guard.
func TestNewBlockStateRejectsOrigPtr(t *testing.T) {
	dbuf := []uint32{'A'}
	var byteCount [256]int32
	byteCount['A'] = 1
	if _, err := newBlockState(dbuf, byteCount, 1, 1, 0); err == nil {
		t.Fatalf("newBlockState() error = nil, want non-nil for origPtr == writeCount")
	}
}

func TestGrowBuffer(t *testing.T) {
	var g growBuffer
	g.append([]byte("hello"))
	if g.unread() != 5 {
		t.Fatalf("unread() = %d, want 5", g.unread())
	}
	buf := make([]byte, 3)
	n := g.take(buf)
	if n != 3 || string(buf) != "hel" {
		t.Fatalf("take() = (%d, %q), want (3, %q)", n, buf, "hel")
	}
	if g.unread() != 2 {
		t.Fatalf("unread() after partial take = %d, want 2", g.unread())
	}
	buf2 := make([]byte, 4)
	n2 := g.take(buf2)
	if n2 != 2 || string(buf2[:2]) != "lo" {
		t.Fatalf("take() = (%d, %q), want (2, %q)", n2, buf2[:2], "lo")
	}
	if g.unread() != 0 {
		t.Fatalf("unread() after full drain = %d, want 0", g.unread())
	}
}
