// Copyright 2024 The stackvis Authors
// This file is part of the stackvis library.
//
// The stackvis library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The stackvis library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the stackvis library. If not, see <http://www.gnu.org/licenses/>.

package segment

import (
	"errors"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var marsSpace = Space{WordSize: 4, Base: 0x7fffeffc, Limit: 0x7fffe000, LittleEndian: true}

func TestSpaceValidate(t *testing.T) {
	require.NoError(t, marsSpace.Validate())

	for name, s := range map[string]Space{
		"zero word":      {WordSize: 0, Base: 8, Limit: 0},
		"odd word":       {WordSize: 3, Base: 9, Limit: 0},
		"wide word":      {WordSize: 16, Base: 32, Limit: 0},
		"unaligned base": {WordSize: 4, Base: 6, Limit: 0},
		"inverted":       {WordSize: 4, Base: 0, Limit: 8},
	} {
		assert.Error(t, s.Validate(), name)
	}
}

func TestContains(t *testing.T) {
	assert.True(t, marsSpace.Contains(0x7fffe000))
	assert.True(t, marsSpace.Contains(0x7fffefff))
	assert.False(t, marsSpace.Contains(0x7fffdfff))
	assert.False(t, marsSpace.Contains(0x7ffff000))

	err := marsSpace.Check(0x10)
	assert.True(t, errors.Is(err, ErrOutOfSegment))
	assert.NoError(t, marsSpace.Check(0x7fffeffe))
}

func TestAlignDown(t *testing.T) {
	tests := []struct {
		in, out uint64
	}{
		{0x7fffeff8, 0x7fffeff8},
		{0x7fffeff9, 0x7fffeff8},
		{0x7fffeffb, 0x7fffeff8},
		{0x7fffefff, 0x7fffeffc},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, marsSpace.AlignDown(tt.in), "%#x", tt.in)
	}
}

func TestBoundaryWord(t *testing.T) {
	assert.True(t, marsSpace.IsBoundaryWord(0x7fffeffc))
	assert.True(t, marsSpace.IsBoundaryWord(0x7fffefff))
	assert.False(t, marsSpace.IsBoundaryWord(0x7fffeffb))
	assert.Equal(t, uint64(0x400), marsSpace.Words())
}

func TestColumns(t *testing.T) {
	assert.Equal(t, 1, marsSpace.FirstByteColumn())
	assert.Equal(t, 4, marsSpace.LastByteColumn())

	wide := Space{WordSize: 8, Base: 0x1000, Limit: 0}
	assert.Equal(t, 8, wide.LastByteColumn())
}

// A little-endian word written at 0x7fffeff8 shows its bytes right to left
// starting from the least significant one.
func TestByteViewScenario(t *testing.T) {
	v := NewByteView(marsSpace)
	bytes := v.DecodeWord(0x11223344)
	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, bytes)

	// Column order is address+3 .. address+0 from left to right.
	columns := make([]byte, marsSpace.LastByteColumn()+1)
	for i, b := range bytes {
		columns[v.ByteColumnFor(0x7fffeff8, i)] = b
	}
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, columns[1:])
}

func TestByteViewBigEndian(t *testing.T) {
	be := marsSpace
	be.LittleEndian = false
	v := NewByteView(be)

	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, v.DecodeWord(0x11223344))
	assert.Equal(t, []byte{0x12, 0x34}, v.EncodeValue(0x1234, 2))
	assert.Equal(t, 1, v.ByteColumnFor(0x7fffeff8, 0))
	assert.Equal(t, 4, v.ByteColumnFor(0x7fffeff8, 3))
}

func TestEncodePartial(t *testing.T) {
	v := NewByteView(marsSpace)
	assert.Equal(t, []byte{0x34, 0x12}, v.EncodeValue(0xabcd1234, 2))
	assert.Equal(t, []byte{0xef}, v.EncodeValue(0xef, 1))

	// Byte index wraps within the word for a halfword at the odd half.
	assert.Equal(t, 2, v.ByteColumnFor(0x7fffeffa, 0))
	assert.Equal(t, 1, v.ByteColumnFor(0x7fffeffa, 1))
}

func TestEndiannessMirror(t *testing.T) {
	f := fuzz.NewWithSeed(7)
	for _, ws := range []uint64{1, 2, 4, 8} {
		le := Space{WordSize: ws, Base: 0x7fff0000, Limit: 0x7ffe0000, LittleEndian: true}
		be := le
		be.LittleEndian = false
		lv, bv := NewByteView(le), NewByteView(be)

		for i := 0; i < 200; i++ {
			var addr uint64
			f.Fuzz(&addr)
			addr = le.Limit + addr%(le.Base-le.Limit)
			idx := int(addr % ws)
			sum := lv.ByteColumnFor(addr, idx) + bv.ByteColumnFor(addr, idx)
			require.Equal(t, le.FirstByteColumn()+le.LastByteColumn(), sum, "addr %#x ws %d", addr, ws)
		}
	}
}

func TestComposeRoundTrip(t *testing.T) {
	f := fuzz.NewWithSeed(11)
	for _, little := range []bool{true, false} {
		for _, ws := range []uint64{4, 8} {
			v := NewByteView(Space{WordSize: ws, Base: 0x1000, Limit: 0, LittleEndian: little})
			for i := 0; i < 100; i++ {
				var word uint64
				f.Fuzz(&word)
				if ws < 8 {
					word &= 1<<(8*ws) - 1
				}
				require.Equal(t, word, v.ComposeWord(v.DecodeWord(word)))
			}
		}
	}
}
