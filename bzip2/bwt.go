// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// invertBWT turns dbuf[0:writeCount] (byte values in the low 8 bits,
// byteCount holding per-byte occurrence counts for that range) into a
// singly-linked successor chain packed into the same cells, per
// SPEC_FULL.md §4.5: dbuf[i] becomes (nextIndex<<8)|byte.
//
// The shape of this function — byteCount turned into an exclusive
// prefix sum, then a single scatter pass — is the teacher's decodeBWT
// (bzip2/bwt.go) almost verbatim; only the final packing differs, since
// the teacher materializes a *second* buffer in byte order while this
// implementation keeps the single self-referential array SPEC_FULL.md's
// design notes call for.
//
// It returns the initial (pos, current) pair the OutputEngine resumes
// traversal from: current is the byte stored at origPtr, which the
// OutputEngine only uses as the "previous" byte for run detection; the
// first byte written out is the one read from dbuf[pos].
func invertBWT(dbuf []uint32, byteCount *[256]int32, writeCount, origPtr int) (pos int, current int) {
	var sum int32
	for i := range byteCount {
		cnt := byteCount[i]
		byteCount[i] = sum
		sum += cnt
	}

	for i := 0; i < writeCount; i++ {
		b := byte(dbuf[i])
		dbuf[byteCount[b]] |= uint32(i) << 8
		byteCount[b]++
	}

	if writeCount == 0 {
		return 0, 0
	}
	p := dbuf[origPtr]
	current = int(p & 0xFF)
	pos = int(p >> 8)
	return pos, current
}
