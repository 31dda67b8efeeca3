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

// Package segment describes the geometry of a downward-growing stack segment
// and how its words decompose into byte columns.
package segment

import (
	"errors"
	"fmt"
)

// ErrOutOfSegment is returned for addresses outside [Limit, Base+WordSize-1].
var ErrOutOfSegment = errors.New("address outside the stack segment")

// AddressColumn is the display column holding a slot's address. Byte columns
// follow it.
const AddressColumn = 0

// Space is the geometry of the stack segment. It holds no state; every
// method is a pure function of the fields.
type Space struct {
	WordSize     uint64 // Bytes per word, power of two, at most 8
	Base         uint64 // Highest word-aligned address
	Limit        uint64 // Lowest word-aligned address
	LittleEndian bool
}

// Validate checks the geometry invariants.
func (s Space) Validate() error {
	if s.WordSize == 0 || s.WordSize > 8 || s.WordSize&(s.WordSize-1) != 0 {
		return fmt.Errorf("invalid word size %d", s.WordSize)
	}
	if !s.Aligned(s.Base) || !s.Aligned(s.Limit) {
		return fmt.Errorf("segment bounds %#x-%#x not word aligned", s.Limit, s.Base)
	}
	if s.Base < s.Limit {
		return fmt.Errorf("segment base %#x below limit %#x", s.Base, s.Limit)
	}
	return nil
}

// Top is the highest byte address of the segment.
func (s Space) Top() uint64 {
	return s.Base + s.WordSize - 1
}

// Contains reports whether addr is a legal stack address.
func (s Space) Contains(addr uint64) bool {
	return addr >= s.Limit && addr <= s.Top()
}

// Check returns ErrOutOfSegment wrapped with the address if addr is not a
// legal stack address.
func (s Space) Check(addr uint64) error {
	if !s.Contains(addr) {
		return fmt.Errorf("%w: %#x not in [%#x, %#x]", ErrOutOfSegment, addr, s.Limit, s.Top())
	}
	return nil
}

// Aligned reports whether addr sits on a word boundary.
func (s Space) Aligned(addr uint64) bool {
	return addr&(s.WordSize-1) == 0
}

// AlignDown returns addr if it is word aligned, otherwise the closest lower
// word boundary. Rounding is always downwards: the topmost word is reachable
// by word accesses but not by narrower accesses past it.
func (s Space) AlignDown(addr uint64) uint64 {
	if s.Aligned(addr) {
		return addr
	}
	return addr &^ (s.WordSize - 1)
}

// ByteOffset is the position of addr inside its word.
func (s Space) ByteOffset(addr uint64) int {
	return int(addr & (s.WordSize - 1))
}

// IsBoundaryWord reports whether addr falls in the topmost word of the
// segment, which the simulated hardware only allows to be read as a whole.
func (s Space) IsBoundaryWord(addr uint64) bool {
	return addr >= s.Base && addr <= s.Top()
}

// Words is the number of words in the segment.
func (s Space) Words() uint64 {
	return (s.Base-s.Limit)/s.WordSize + 1
}

// FirstByteColumn is the display column of the first byte of a word.
func (s Space) FirstByteColumn() int {
	return AddressColumn + 1
}

// LastByteColumn is the display column of the last byte of a word.
func (s Space) LastByteColumn() int {
	return s.FirstByteColumn() + int(s.WordSize) - 1
}
