// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "io"

// BlockOffset is one entry of the exportable block-offset map: the bit
// offset of a block's magic within the compressed stream, paired with
// the cumulative number of decoded bytes produced before that block.
// The final entry always corresponds to a stream's EOS block; its
// DecodedOffset equals the total uncompressed size up to that point.
type BlockOffset struct {
	BitOffset     int64
	DecodedOffset int64
}

// Decoder is the Seekable Decoder Facade: it orchestrates the
// BlockHeaderParser, SymbolPass, BWT Inverter, and OutputEngine across
// successive blocks and concatenated streams, tracking the block-offset
// map as it goes.
//
// A Decoder that has returned an error is poisoned, per SPEC_FULL.md
// §7's propagation policy, and must not be reused.
type Decoder struct {
	conf ReaderConfig
	br   *BitReader

	dbufScratch []uint32

	cur  *blockState
	lookahead growBuffer

	decodedTotal int64 // bytes delivered to the caller so far (Tell())

	needStreamHeader bool
	offsets          []BlockOffset
	offsetsComplete  bool

	streamCRC     uint32
	skipStreamCRC bool

	eof bool
	err error
}

// NewReader constructs a Decoder reading from r. If r also implements
// io.Seeker it is used directly (enabling Seek on the returned Decoder);
// otherwise the stream is treated as forward-only.
func NewReader(r io.Reader, conf *ReaderConfig) (*Decoder, error) {
	var src Source
	if rs, ok := r.(io.ReadSeeker); ok {
		src = NewFileSource(rs)
	} else {
		src = NewStreamSource(r)
	}
	return newDecoder(src, conf)
}

// NewBytesReader constructs a Decoder over an immutable in-memory byte
// span, which always supports Seek.
func NewBytesReader(buf []byte, conf *ReaderConfig) (*Decoder, error) {
	return newDecoder(NewByteSource(buf), conf)
}

func newDecoder(src Source, conf *ReaderConfig) (d *Decoder, err error) {
	defer func() {
		if err != nil {
			d = nil
		}
	}()
	defer errRecover(&err)

	var c ReaderConfig
	if conf != nil {
		c = *conf
	}
	d = &Decoder{
		conf:             c,
		br:               NewBitReader(src),
		needStreamHeader: true,
	}
	d.dbufScratch = make([]uint32, c.maxBlockSize100k()*100000)
	if !d.tryReadStreamHeader() {
		d.eof = true
		d.offsetsComplete = true
	} else {
		d.needStreamHeader = false
	}
	return d, nil
}

// tryReadStreamHeader attempts to consume a "BZh<digit>" stream header
// at the current (byte-aligned) bit position. It returns false if the
// source is cleanly exhausted (no more streams follow); it panics on a
// malformed header, unless TrailingDataIgnore is configured, in which
// case unrecognized trailing bytes are treated the same as a clean end
// — the resolution SPEC_FULL.md §9 and DESIGN.md record for the format's
// documented open question.
func (d *Decoder) tryReadStreamHeader() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if r == error(ErrUnexpectedEOF) {
				ok = false
				return
			}
			panic(r)
		}
	}()

	b0 := d.br.Read(8)
	b1 := d.br.Read(8)
	b2 := d.br.Read(8)
	b3 := d.br.Read(8)
	if b0 != 'B' || b1 != 'Z' || b2 != 'h' || b3 < '1' || b3 > '9' {
		if d.conf.trailingData() == TrailingDataIgnore {
			return false
		}
		throw(corrupt(d.br.Tell(), ErrInvalidMagic))
	}
	blockSize100k := int(b3 - '0')
	if blockSize100k > d.conf.maxBlockSize100k() {
		throw(corrupt(d.br.Tell(), ErrMalformedHeader))
	}
	d.streamCRC = 0
	d.skipStreamCRC = false
	return true
}

// advance makes progress: it either continues emitting from the
// in-flight block, or parses the next block header (possibly crossing
// into a new concatenated stream). It returns false once the compressed
// input is cleanly and completely exhausted.
func (d *Decoder) advance() bool {
	if d.cur != nil && !d.cur.exhausted() {
		return true
	}
	if d.cur != nil {
		d.cur = nil
	}

	if d.needStreamHeader {
		if !d.tryReadStreamHeader() {
			d.eof = true
			d.offsetsComplete = true
			return false
		}
		d.needStreamHeader = false
	}

	h, kind, crc, bitOffset := parseBlockHeader(d.br)
	if !d.offsetsComplete {
		d.offsets = append(d.offsets, BlockOffset{BitOffset: bitOffset, DecodedOffset: d.decodedTotal + int64(d.lookahead.unread())})
	}

	if kind == endOfStreamBlock {
		if !d.skipStreamCRC && crc != d.streamCRC {
			throw(corrupt(bitOffset, ErrCrcMismatch))
		}
		d.needStreamHeader = true
		return d.advance()
	}

	n, byteCount := decodeSymbols(d.br, h, d.dbufScratch)
	bs, err := newBlockState(d.dbufScratch, byteCount, n, h.origPtr, h.expectedCRC)
	if err != nil {
		throw(err)
	}
	d.cur = bs
	return true
}

// fill ensures the lookahead buffer holds at least budget unread bytes,
// or that decoding has reached a clean end. budget <= 0 means decode
// exactly one step's worth of progress (used to drain to exhaustion).
func (d *Decoder) fill(budget int) {
	for budget <= 0 || d.lookahead.unread() < budget {
		if !d.advance() {
			return
		}
		need := 0
		if budget > 0 {
			need = budget - d.lookahead.unread()
		}
		_, done, crcVal, err := d.cur.emit(&d.lookahead, need)
		if err != nil {
			throw(err)
		}
		if done {
			d.streamCRC = foldStreamCRC(d.streamCRC, crcVal)
			d.cur = nil
		}
		if budget <= 0 {
			return
		}
	}
}

// DecodeTo decodes up to nMax bytes, writing them to sink. It returns
// the number of bytes produced; zero means the stream is exhausted, or
// that nMax <= 0.
// This is the literal form of SPEC_FULL.md §4.7's read(sink, nMax).
func (d *Decoder) DecodeTo(sink Sink, nMax int) (n int, err error) {
	if d.err != nil {
		return 0, d.err
	}
	if nMax <= 0 {
		return 0, nil
	}
	defer func() {
		if err != nil {
			d.err = err
		}
	}()
	defer errRecover(&err)

	d.fill(nMax)
	written, werr := d.lookahead.writeTo(sink, nMax)
	d.decodedTotal += int64(written)
	if werr != nil {
		return written, Error("sink write failed: " + werr.Error())
	}
	return written, nil
}

// Read implements io.Reader, returning io.EOF once the stream (and any
// concatenated continuations) is exhausted.
func (d *Decoder) Read(p []byte) (int, error) {
	n, err := d.DecodeTo(&MemSink{Buf: p}, len(p))
	if err == nil && n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, err
}

// Tell returns the cumulative number of bytes produced since the
// stream was opened.
func (d *Decoder) Tell() int64 { return d.decodedTotal }

// EOF reports whether the decoder has reached the end of all
// concatenated streams.
func (d *Decoder) EOF() bool { return d.eof && d.lookahead.unread() == 0 }

// ensureOffsetsComplete runs the decoder to exhaustion, discarding
// output, so that the block-offset map becomes fully known. It is the
// "decode-to-exhaustion internally first (discarding output)" step
// Seek, Size, and BlockOffsets fall back to when the map isn't already
// complete.
func (d *Decoder) ensureOffsetsComplete() (err error) {
	if d.err != nil {
		return d.err
	}
	if d.offsetsComplete {
		return nil
	}
	defer func() {
		if err != nil {
			d.err = err
		}
	}()
	defer errRecover(&err)

	for !d.offsetsComplete {
		d.fill(1 << 16)
		d.decodedTotal += int64(d.lookahead.unread())
		d.lookahead.buf = d.lookahead.buf[:0]
		d.lookahead.pos = 0
	}
	return nil
}

// BlockOffsets returns the block-offset map, forcing a full decode
// (discarding output) first if it isn't already complete.
func (d *Decoder) BlockOffsets() ([]BlockOffset, error) {
	if err := d.ensureOffsetsComplete(); err != nil {
		return append([]BlockOffset(nil), d.offsets...), err
	}
	return append([]BlockOffset(nil), d.offsets...), nil
}

// SetBlockOffsets installs a previously exported block-offset map,
// marking it complete and enabling O(1) random access via Seek without
// an initial full decode. It requires at least one data-block entry
// plus the terminating EOS entry.
func (d *Decoder) SetBlockOffsets(offs []BlockOffset) error {
	if len(offs) < 2 {
		return Error("block offset map must contain at least one data-block entry plus the EOS entry")
	}
	d.offsets = append([]BlockOffset(nil), offs...)
	d.offsetsComplete = true
	return nil
}

// Size returns the total decoded size. It requires the block-offset map
// to be complete, forcing a full decode first if necessary.
func (d *Decoder) Size() (int64, error) {
	if err := d.ensureOffsetsComplete(); err != nil {
		return 0, err
	}
	if len(d.offsets) == 0 {
		return 0, nil
	}
	return d.offsets[len(d.offsets)-1].DecodedOffset, nil
}

// Seek repositions the decoder to an absolute decoded-byte offset,
// computed from whence (io.SeekStart, io.SeekCurrent, io.SeekEnd). It
// requires a seekable Source.
func (d *Decoder) Seek(offset int64, whence int) (abs int64, err error) {
	if err := d.ensureOffsetsComplete(); err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			d.err = err
		}
	}()
	defer errRecover(&err)

	size := int64(0)
	if len(d.offsets) > 0 {
		size = d.offsets[len(d.offsets)-1].DecodedOffset
	}
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = d.decodedTotal + offset
	case io.SeekEnd:
		abs = size + offset
	default:
		return 0, Error("invalid whence")
	}
	if abs < 0 || abs > size {
		return 0, Error("seek target out of range")
	}

	// Reverse lower-bound: the last entry whose DecodedOffset <= abs.
	idx := -1
	for i, e := range d.offsets {
		if e.DecodedOffset <= abs {
			idx = i
		} else {
			break
		}
	}
	if idx < 0 {
		return 0, Error("seek target out of range")
	}
	entry := d.offsets[idx]

	if err := d.br.Seek(entry.BitOffset); err != nil {
		return 0, Error("seek failed: " + err.Error())
	}
	d.cur = nil
	d.lookahead.buf = d.lookahead.buf[:0]
	d.lookahead.pos = 0
	d.skipStreamCRC = true
	d.needStreamHeader = false

	h, kind, _, _ := parseBlockHeader(d.br)
	if kind == endOfStreamBlock {
		// abs must equal entry.DecodedOffset here: there is nothing
		// decodable left at or after this position.
		d.decodedTotal = entry.DecodedOffset
		d.eof = abs >= size
		d.needStreamHeader = true
		return abs, nil
	}

	n, byteCount := decodeSymbols(d.br, h, d.dbufScratch)
	bs, berr := newBlockState(d.dbufScratch, byteCount, n, h.origPtr, h.expectedCRC)
	if berr != nil {
		return 0, berr
	}
	d.cur = bs
	d.decodedTotal = entry.DecodedOffset
	d.eof = false

	discard := abs - entry.DecodedOffset
	if discard > 0 {
		var trash growBuffer
		for int64(trash.unread()) < discard {
			_, done, crcVal, emitErr := d.cur.emit(&trash, int(discard)-trash.unread())
			if emitErr != nil {
				return 0, emitErr
			}
			if done {
				d.streamCRC = foldStreamCRC(d.streamCRC, crcVal)
				d.cur = nil
				break
			}
		}
		leftover := trash.unread() - int(discard)
		if leftover > 0 {
			d.lookahead.append(trash.buf[trash.pos+int(discard):])
		}
		d.decodedTotal = abs
	}
	return abs, nil
}
