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

// Package slots maps stack addresses onto a growable sequence of word slots,
// indexed from the initial stack top downwards.
package slots

import (
	"errors"
	"fmt"

	"github.com/stackvis/stackvis/core/segment"
)

// ErrAboveInitialTop is returned for stack addresses above the word the
// stack pointer held when the grid was created.
var ErrAboveInitialTop = errors.New("address above the initial stack top")

// Byte is one byte cell of a slot. Known is false until the byte was
// observed.
type Byte struct {
	Value byte
	Known bool
}

// Slot is one word of the stack segment.
type Slot struct {
	Address uint64
	Bytes   []Byte // Indexed by offset from Address

	StoredRegister string // Register whose value was last stored here
	FrameLabel     string // Set on the highest slot of a new frame
}

// Annotated reports whether the slot carries a register name or frame label.
func (s *Slot) Annotated() bool {
	return s.StoredRegister != "" || s.FrameLabel != ""
}

// Word reassembles the slot's bytes into a value. The second result is false
// while any byte is still unknown.
func (s *Slot) Word(view segment.ByteView) (uint64, bool) {
	raw := make([]byte, len(s.Bytes))
	for i, b := range s.Bytes {
		if !b.Known {
			return 0, false
		}
		raw[i] = b.Value
	}
	return view.ComposeWord(raw), true
}

// Copy returns a deep copy of the slot.
func (s *Slot) Copy() Slot {
	cpy := *s
	cpy.Bytes = append([]Byte(nil), s.Bytes...)
	return cpy
}

// Grid is the ordered, push-only sequence of slots. Row r holds the word at
// Top() - r*WordSize. It is not safe for concurrent use.
type Grid struct {
	space   segment.Space
	top     uint64
	margin  int
	maxRows int
	slots   []*Slot
}

// NewGrid creates a grid whose row 0 is the word holding initialSP, with
// rows slots allocated up front. Reactive growth appends margin extra rows.
func NewGrid(space segment.Space, initialSP uint64, rows, margin int) (*Grid, error) {
	if err := space.Validate(); err != nil {
		return nil, err
	}
	if err := space.Check(initialSP); err != nil {
		return nil, fmt.Errorf("initial stack pointer: %w", err)
	}
	if margin < 1 {
		margin = 1
	}
	top := space.AlignDown(initialSP)
	g := &Grid{
		space:   space,
		top:     top,
		margin:  margin,
		maxRows: int((top-space.Limit)/space.WordSize) + 1,
	}
	g.appendRows(rows)
	return g, nil
}

// Space returns the segment geometry of the grid.
func (g *Grid) Space() segment.Space {
	return g.space
}

// Top is the address of row 0.
func (g *Grid) Top() uint64 {
	return g.top
}

// Len is the number of allocated rows.
func (g *Grid) Len() int {
	return len(g.slots)
}

// MaxRows is the number of rows between the initial top and the segment
// limit. The grid never grows past it.
func (g *Grid) MaxRows() int {
	return g.maxRows
}

// RowFor maps an address to its row.
func (g *Grid) RowFor(addr uint64) (int, error) {
	if err := g.space.Check(addr); err != nil {
		return 0, err
	}
	aligned := g.space.AlignDown(addr)
	if aligned > g.top {
		return 0, fmt.Errorf("%w: %#x > %#x", ErrAboveInitialTop, addr, g.top)
	}
	return int((g.top - aligned) / g.space.WordSize), nil
}

// ColumnFor maps an address to the display column of its byte. The result
// does not depend on the byte order.
func (g *Grid) ColumnFor(addr uint64) (int, error) {
	if err := g.space.Check(addr); err != nil {
		return 0, err
	}
	return g.space.LastByteColumn() - g.space.ByteOffset(addr), nil
}

// AddressFor is the word address held by row.
func (g *Grid) AddressFor(row int) uint64 {
	return g.top - uint64(row)*g.space.WordSize
}

// Locate resolves addr to its coordinates and makes sure the row exists.
func (g *Grid) Locate(addr uint64) (row, col int, err error) {
	if row, err = g.RowFor(addr); err != nil {
		return 0, 0, err
	}
	if col, err = g.ColumnFor(addr); err != nil {
		return 0, 0, err
	}
	g.EnsureRows(row)
	return row, col, nil
}

// EnsureRows makes row addressable, appending the missing rows plus the
// growth margin. It returns the number of rows added.
func (g *Grid) EnsureRows(row int) int {
	if row < len(g.slots) {
		return 0
	}
	return g.appendRows(row - len(g.slots) + g.margin)
}

// GrowIfNear grows the grid when row is within threshold rows of its end.
func (g *Grid) GrowIfNear(row, threshold int) int {
	if row+threshold < len(g.slots) {
		return 0
	}
	return g.EnsureRows(row + threshold)
}

// GrowTo grows the grid to at least rows rows.
func (g *Grid) GrowTo(rows int) int {
	if rows <= len(g.slots) {
		return 0
	}
	return g.appendRows(rows - len(g.slots))
}

func (g *Grid) appendRows(n int) int {
	if room := g.maxRows - len(g.slots); n > room {
		n = room
	}
	for i := 0; i < n; i++ {
		row := len(g.slots)
		g.slots = append(g.slots, &Slot{
			Address: g.AddressFor(row),
			Bytes:   make([]Byte, g.space.WordSize),
		})
	}
	if n < 0 {
		return 0
	}
	return n
}

// Slot returns the slot at row, or nil if the row is not allocated.
func (g *Grid) Slot(row int) *Slot {
	if row < 0 || row >= len(g.slots) {
		return nil
	}
	return g.slots[row]
}

// ClearAnnotations drops register names and frame labels from the rows in
// (from, to]. It returns the rows that lost an annotation.
func (g *Grid) ClearAnnotations(from, to int) []int {
	if from < -1 {
		from = -1
	}
	if to >= len(g.slots) {
		to = len(g.slots) - 1
	}
	var cleared []int
	for row := from + 1; row <= to; row++ {
		if s := g.slots[row]; s.Annotated() {
			s.StoredRegister, s.FrameLabel = "", ""
			cleared = append(cleared, row)
		}
	}
	return cleared
}

// ClearAllAnnotations drops every register name and frame label.
func (g *Grid) ClearAllAnnotations() {
	for _, s := range g.slots {
		s.StoredRegister, s.FrameLabel = "", ""
	}
}

// Forget marks every byte unknown, keeping the rows allocated.
func (g *Grid) Forget() {
	for _, s := range g.slots {
		for i := range s.Bytes {
			s.Bytes[i] = Byte{}
		}
	}
}
