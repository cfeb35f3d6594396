// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// decodeSymbols runs the Huffman + MTF + RLE1 symbol pass: it fills
// dbuf[0:n] with the pre-BWT byte stream (one byte per 32-bit cell, low
// 8 bits, per SPEC_FULL.md's dbuf packing convention) and tallies
// byteCount, returning n. dbuf must have capacity for a full block.
//
// The control flow mirrors original_source/bzip2.h's readBlockData
// closely: a single decode loop interleaves RUNA/RUNB run accumulation
// with literal-symbol MTF lookups, selecting a new Huffman table every
// groupSize symbols from the header's selector list.
func decodeSymbols(br *BitReader, h *blockHeader, dbuf []uint32) (int, [256]int32) {
	var byteCount [256]int32
	var mtfSymbol [256]byte
	for i := 0; i < h.symbolCount; i++ {
		mtfSymbol[i] = byte(i)
	}

	dbufCount := 0
	symCount := 0
	selector := 0
	runPos := 0
	hh := 0
	var table *huffmanTable

	for {
		if symCount == 0 {
			if selector >= len(h.selectors) {
				throw(corrupt(br.Tell(), ErrMalformedData))
			}
			table = h.tables[h.selectors[selector]]
			selector++
			symCount = groupSize
		}
		symCount--

		sym := table.decodeSymbol(br)

		// RUNA/RUNB: binary-weighted run-length accumulation, per the
		// "hh += runPos<<sym; runPos <<= 1" rule.
		if sym == runA || sym == runB {
			if runPos == 0 {
				runPos = 1
				hh = 0
			}
			hh += runPos << uint(sym)
			runPos <<= 1
			continue
		}

		// A literal or the terminator ends any pending run: flush hh
		// copies of the byte currently at the front of the MTF table.
		if runPos != 0 {
			runPos = 0
			if dbufCount+hh > len(dbuf) {
				throw(corrupt(br.Tell(), ErrMalformedData))
			}
			uc := h.symbolToByte[mtfSymbol[0]]
			byteCount[uc] += int32(hh)
			for ; hh > 0; hh-- {
				dbuf[dbufCount] = uint32(uc)
				dbufCount++
			}
		}

		// The terminator is the symbol one past the last literal code.
		if sym > h.symbolCount {
			break
		}

		if dbufCount >= len(dbuf) {
			throw(corrupt(br.Tell(), ErrMalformedData))
		}

		ii := sym - 1
		uc := mtfSymbol[ii]
		copy(mtfSymbol[1:ii+1], mtfSymbol[:ii])
		mtfSymbol[0] = uc

		b := h.symbolToByte[uc]
		byteCount[b]++
		dbuf[dbufCount] = uint32(b)
		dbufCount++
	}

	return dbufCount, byteCount
}
