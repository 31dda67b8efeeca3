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

package slots

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvis/stackvis/core/segment"
)

var space = segment.Space{WordSize: 4, Base: 0x7fffeffc, Limit: 0x7fffe000, LittleEndian: true}

func newTestGrid(t *testing.T) *Grid {
	g, err := NewGrid(space, 0x7fffeffc, 30, 10)
	require.NoError(t, err)
	return g
}

func TestNewGrid(t *testing.T) {
	g := newTestGrid(t)
	assert.Equal(t, 30, g.Len())
	assert.Equal(t, 0x400, g.MaxRows())
	assert.Equal(t, uint64(0x7fffeffc), g.Slot(0).Address)
	assert.Equal(t, uint64(0x7fffef88), g.Slot(29).Address)
	assert.Nil(t, g.Slot(30))

	_, err := NewGrid(space, 0x1000, 30, 10)
	assert.True(t, errors.Is(err, segment.ErrOutOfSegment))
}

func TestRowFor(t *testing.T) {
	g := newTestGrid(t)

	row, err := g.RowFor(0x7fffeff8)
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	row, err = g.RowFor(0x7fffeffb)
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	row, err = g.RowFor(0x7fffe000)
	require.NoError(t, err)
	assert.Equal(t, g.MaxRows()-1, row)

	_, err = g.RowFor(0x7ffff000)
	assert.True(t, errors.Is(err, segment.ErrOutOfSegment))
}

func TestAboveInitialTop(t *testing.T) {
	g, err := NewGrid(space, 0x7fffeff0, 30, 10)
	require.NoError(t, err)

	_, err = g.RowFor(0x7fffeff4)
	assert.True(t, errors.Is(err, ErrAboveInitialTop))
	_, _, err = g.Locate(0x7fffeffc)
	assert.True(t, errors.Is(err, ErrAboveInitialTop))
	assert.Equal(t, 30, g.Len())
}

func TestColumnFor(t *testing.T) {
	g := newTestGrid(t)
	for addr, want := range map[uint64]int{
		0x7fffeff8: 4,
		0x7fffeff9: 3,
		0x7fffeffa: 2,
		0x7fffeffb: 1,
	} {
		col, err := g.ColumnFor(addr)
		require.NoError(t, err)
		assert.Equal(t, want, col, "%#x", addr)
	}
}

func TestRowProperties(t *testing.T) {
	g := newTestGrid(t)
	f := fuzz.NewWithSeed(3)
	span := space.Base + space.WordSize - space.Limit

	for i := 0; i < 500; i++ {
		var a, b uint64
		f.Fuzz(&a)
		f.Fuzz(&b)
		a, b = space.Limit+a%span, space.Limit+b%span
		if a < b {
			a, b = b, a
		}
		ra, err := g.RowFor(a)
		require.NoError(t, err)
		rb, err := g.RowFor(b)
		require.NoError(t, err)
		require.LessOrEqual(t, ra, rb, "%#x > %#x", a, b)

		aligned := space.AlignDown(a)
		require.Equal(t, aligned, g.AddressFor(ra), "%#x", a)
	}
}

func TestEnsureRowsIdempotent(t *testing.T) {
	g := newTestGrid(t)

	assert.Equal(t, 0, g.EnsureRows(29))
	assert.Equal(t, 14, g.EnsureRows(34))
	n := g.Len()
	assert.Equal(t, 0, g.EnsureRows(34))
	assert.Equal(t, n, g.Len())

	for row := 0; row < g.Len(); row++ {
		if !assert.Equal(t, g.AddressFor(row), g.Slot(row).Address) {
			t.Log(spew.Sdump(g.Slot(row)))
		}
	}
}

func TestGrowthCappedAtLimit(t *testing.T) {
	g := newTestGrid(t)

	_, _, err := g.Locate(0x7fffe000)
	require.NoError(t, err)
	assert.Equal(t, g.MaxRows(), g.Len())
	assert.Equal(t, 0, g.EnsureRows(g.MaxRows()+5))
	assert.Equal(t, 0, g.GrowTo(g.MaxRows()*2))
	assert.Equal(t, space.Limit, g.Slot(g.Len()-1).Address)
}

func TestGrowIfNear(t *testing.T) {
	g := newTestGrid(t)

	assert.Equal(t, 0, g.GrowIfNear(20, 5))
	assert.Equal(t, 30, g.Len())
	added := g.GrowIfNear(25, 5)
	assert.Equal(t, 10, added)
	assert.Equal(t, 40, g.Len())
	assert.Equal(t, 10, g.GrowTo(50))
}

func TestClearAnnotations(t *testing.T) {
	g := newTestGrid(t)
	for row := 0; row < 6; row++ {
		g.Slot(row).StoredRegister = "$ra"
	}
	g.Slot(3).FrameLabel = "sum (1)"

	cleared := g.ClearAnnotations(1, 4)
	assert.Equal(t, []int{2, 3, 4}, cleared)
	assert.Equal(t, "$ra", g.Slot(1).StoredRegister)
	assert.Empty(t, g.Slot(3).FrameLabel)
	assert.Equal(t, "$ra", g.Slot(5).StoredRegister)

	assert.Empty(t, g.ClearAnnotations(1, 4))
	assert.Empty(t, g.ClearAnnotations(40, 100))

	g.ClearAllAnnotations()
	for row := 0; row < g.Len(); row++ {
		assert.False(t, g.Slot(row).Annotated())
	}
}

func TestSlotWord(t *testing.T) {
	g := newTestGrid(t)
	view := segment.NewByteView(space)
	s := g.Slot(1)

	_, ok := s.Word(view)
	assert.False(t, ok)
	for i, b := range view.DecodeWord(0x11223344) {
		s.Bytes[i] = Byte{Value: b, Known: true}
	}
	word, ok := s.Word(view)
	require.True(t, ok)
	assert.Equal(t, uint64(0x11223344), word)

	cpy := s.Copy()
	s.Bytes[0].Value = 0
	assert.Equal(t, byte(0x44), cpy.Bytes[0].Value)

	g.Forget()
	_, ok = s.Word(view)
	assert.False(t, ok)
}
