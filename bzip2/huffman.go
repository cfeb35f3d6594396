// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// huffmanTable is a canonical Huffman decode table built from a vector of
// code lengths. It follows the classic bzip2 base/limit/permute shape
// rather than a binary tree: base and limit are indexed by code length
// directly (the "off-by-one" convention SPEC_FULL.md calls out — arrays
// are sized maxCodeLength+2 and indexed by len, not len-1), which makes
// the decode loop a tight length-extension scan instead of a tree walk.
type huffmanTable struct {
	permute  [maxSymbols]uint16
	base     [maxCodeLength + 2]int32
	limit    [maxCodeLength + 2]int32
	minLen   uint
	maxLen   uint
	numSyms  int
}

// maxSymbols bounds symbolCount+2: at most 256 literal bytes plus RUNA,
// RUNB, and the terminator.
const maxSymbols = 258

// buildHuffmanTable constructs base/limit/permute from lengths[0:numSyms].
// Symbols are grouped by ascending length, ties broken by symbol index,
// matching the canonical-Huffman assignment order the wire format
// assumes when it omits the actual codes and transmits only lengths.
func buildHuffmanTable(lengths []byte) *huffmanTable {
	numSyms := len(lengths)
	h := &huffmanTable{numSyms: numSyms}

	h.minLen, h.maxLen = maxCodeLength, minCodeLength
	for _, l := range lengths {
		if uint(l) < h.minLen {
			h.minLen = uint(l)
		}
		if uint(l) > h.maxLen {
			h.maxLen = uint(l)
		}
	}

	// permute: symbols ordered by (length, symbol index).
	pp := 0
	for length := h.minLen; length <= h.maxLen; length++ {
		for sym := 0; sym < numSyms; sym++ {
			if uint(lengths[sym]) == length {
				h.permute[pp] = uint16(sym)
				pp++
			}
		}
	}

	var count [maxCodeLength + 2]int32
	for _, l := range lengths {
		count[int(l)]++
	}

	// base[len] is the code value of the first codeword of length len,
	// minus the index within permute of the first symbol of that
	// length; limit[len] is the code value of the last codeword of
	// length len. Building both while walking lengths in increasing
	// order and doubling the running code at each step is the standard
	// canonical-Huffman construction.
	var code int32
	var idx int32
	for length := h.minLen; length <= h.maxLen; length++ {
		cnt := count[length]
		h.base[length] = code - idx
		idx += cnt
		code += cnt
		h.limit[length] = code - 1
		code <<= 1
	}
	h.limit[h.maxLen+1] = 1<<31 - 1
	return h
}

// decodeSymbol performs the canonical decode loop: widen the code one
// bit at a time until it falls at or below limit[curLen].
func (h *huffmanTable) decodeSymbol(br *BitReader) int {
	curLen := h.minLen
	code := int32(br.Read(curLen))
	for code > h.limit[curLen] {
		curLen++
		if curLen > h.maxLen {
			throw(corrupt(br.Tell(), ErrMalformedData))
		}
		code = (code << 1) | int32(br.Read(1))
	}
	idx := code - h.base[curLen]
	if idx < 0 || int(idx) >= h.numSyms {
		throw(corrupt(br.Tell(), ErrMalformedData))
	}
	return int(h.permute[idx])
}
