// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "testing"

// FuzzReverseBWT checks that invertBWT never indexes out of range and
// always returns a (pos, current) pair usable as OutputEngine's starting
// traversal state, for any byte slice and in-range origPtr.
func FuzzReverseBWT(f *testing.F) {
	f.Add([]byte("AAAAA"), 0)
	f.Add([]byte("AAAAA"), 3)
	f.Add([]byte("banana"), 2)

	f.Fuzz(func(t *testing.T, data []byte, origPtr int) {
		n := len(data)
		if n == 0 || origPtr < 0 || origPtr >= n {
			t.Skip()
		}

		dbuf := make([]uint32, n)
		var byteCount [256]int32
		for i, b := range data {
			dbuf[i] = uint32(b)
			byteCount[b]++
		}

		pos, current := invertBWT(dbuf, &byteCount, n, origPtr)
		if pos < 0 || pos >= n {
			t.Fatalf("invertBWT() pos = %d, want [0, %d)", pos, n)
		}
		if current < 0 || current > 0xFF {
			t.Fatalf("invertBWT() current = %d, want a byte value", current)
		}
	})
}
