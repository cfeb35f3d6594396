// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// TrailingDataPolicy controls how the Decoder treats bytes that follow
// a stream's EOS block, once aligned to a byte boundary. SPEC_FULL.md
// §9 leaves the original source's behavior here as an open question;
// DESIGN.md records the resolution, surfaced here as the default.
type TrailingDataPolicy int

const (
	// TrailingDataReject treats four or more bytes after alignment that
	// do not start a new BZh stream header as InvalidMagic. This is the
	// default. Under either policy, fewer than four trailing bytes end
	// the input cleanly.
	TrailingDataReject TrailingDataPolicy = iota
	// TrailingDataIgnore still reads the four bytes after alignment and
	// decodes a following BZh stream, but treats anything else as the
	// end of input instead of an error.
	TrailingDataIgnore
)

// DefaultMaxBlockSize100k is the wire format's own ceiling: nine
// 100,000-byte units, i.e. a 900,000-byte block.
const DefaultMaxBlockSize100k = maxBlockSize100k

// ReaderConfig holds optional Decoder construction parameters. The zero
// value selects wire-format-driven defaults.
type ReaderConfig struct {
	// MaxBlockSize100k caps the blockSize100k digit this Decoder will
	// accept, bounding the 3.6 MiB dbuf allocation per SPEC_FULL.md's
	// Memory Ceilings. Zero means DefaultMaxBlockSize100k.
	MaxBlockSize100k int

	// TrailingData selects the §9 open-question resolution. Zero value
	// is TrailingDataReject.
	TrailingData TrailingDataPolicy
}

func (c *ReaderConfig) maxBlockSize100k() int {
	if c == nil || c.MaxBlockSize100k == 0 {
		return DefaultMaxBlockSize100k
	}
	return c.MaxBlockSize100k
}

func (c *ReaderConfig) trailingData() TrailingDataPolicy {
	if c == nil {
		return TrailingDataReject
	}
	return c.TrailingData
}
