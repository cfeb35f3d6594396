// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// blockState is one active block's resumable OutputEngine state. Its
// four fields are exactly the ones SPEC_FULL.md's Design Notes require
// to be carried as explicit state rather than hidden in a coroutine:
// writeCount, writePos, writeCurrent, writeRun.
type blockState struct {
	dbuf []uint32

	writeCount   int
	writePos     int
	writeCurrent int // -1 is a valid sentinel, hence int not byte
	writeRun     int

	crc         blockCRC
	expectedCRC uint32
}

// newBlockState runs the BWT Inverter over a freshly symbol-decoded
// block and returns the OutputEngine state ready to start traversal.
func newBlockState(dbuf []uint32, byteCount [256]int32, writeCount, origPtr int, expectedCRC uint32) (*blockState, error) {
	if writeCount > 0 && origPtr >= writeCount {
		return nil, corrupt(0, ErrMalformedHeader)
	}
	pos, current := invertBWT(dbuf, &byteCount, writeCount, origPtr)
	return &blockState{
		dbuf:         dbuf,
		writeCount:   writeCount,
		writePos:     pos,
		writeCurrent: current,
		writeRun:     -1,
		crc:          initBlockCRC,
		expectedCRC:  expectedCRC,
	}, nil
}

func (s *blockState) exhausted() bool { return s.writeCount == 0 }

// emit runs the BWT-chain traversal and RLE2 expansion, writing decoded
// bytes to sink until either the block is fully consumed or at least
// budget bytes have been produced (budget <= 0 means unbounded). It
// mirrors original_source/bzip2.h's decodeStream inner loop exactly,
// including the quirk that a single repeat run (up to 255 bytes) is
// never split mid-run even if that overshoots budget — the Seekable
// Decoder Facade's own buffering absorbs any such overshoot so that
// callers still observe exact byte-for-byte Read semantics.
//
// Returns the number of bytes produced, whether the block finished, and
// (if it finished) the verified block CRC — or an error if the block's
// CRC didn't match the header's expected value.
func (s *blockState) emit(out *growBuffer, budget int) (produced int, done bool, crcVal uint32, err error) {
	var runBytes [256]byte
	for s.writeCount > 0 {
		if budget > 0 && produced >= budget {
			break
		}
		s.writeCount--

		previous := s.writeCurrent
		p := s.dbuf[s.writePos]
		current := int(p & 0xFF)
		s.writePos = int(p >> 8)

		oldRun := s.writeRun
		s.writeRun++

		var copies int
		var outbyte byte
		if oldRun == 3 {
			copies = current
			outbyte = byte(previous)
			current = -1
		} else {
			copies = 1
			outbyte = byte(current)
		}

		for i := 0; i < copies; i++ {
			runBytes[i] = outbyte
			s.crc = s.crc.update(outbyte)
		}
		if copies > 0 {
			out.append(runBytes[:copies])
			produced += copies
		}

		if current != previous {
			s.writeRun = 0
		}
		s.writeCurrent = current
	}

	if s.writeCount > 0 {
		return produced, false, 0, nil
	}
	crc := s.crc.finish()
	if crc != s.expectedCRC {
		return produced, true, crc, corrupt(0, ErrCrcMismatch)
	}
	return produced, true, crc, nil
}

// growBuffer is a minimal append-only byte buffer with a read cursor,
// used as the Decoder's internal lookahead so that DecodeTo/Read can
// honor an exact byte budget even though blockState.emit may overshoot
// it by up to 255 bytes within a single repeat run.
type growBuffer struct {
	buf []byte
	pos int
}

func (g *growBuffer) append(p []byte) { g.buf = append(g.buf, p...) }

func (g *growBuffer) unread() int { return len(g.buf) - g.pos }

func (g *growBuffer) take(p []byte) int {
	n := copy(p, g.buf[g.pos:])
	g.pos += n
	g.reclaim()
	return n
}

func (g *growBuffer) writeTo(sink Sink, max int) (int, error) {
	n := g.unread()
	if max > 0 && n > max {
		n = max
	}
	if n == 0 {
		return 0, nil
	}
	written, err := sink.Write(g.buf[g.pos : g.pos+n])
	g.pos += written
	g.reclaim()
	return written, err
}

// reclaim compacts the buffer once it has been fully drained, so a
// long-lived Decoder doesn't retain an ever-growing backing array.
func (g *growBuffer) reclaim() {
	if g.pos == len(g.buf) {
		g.buf = g.buf[:0]
		g.pos = 0
	}
}
