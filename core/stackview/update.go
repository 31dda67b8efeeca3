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

package stackview

// SlotUpdate describes a change of one row, for the presentation layer.
type SlotUpdate struct {
	Row     int
	Address uint64 // Word address of the row
	Columns []int  // Byte columns that received new values
	Value   uint64 // Value of the write, raw
	Length  int    // Bytes written, zero for annotation-only updates

	StoredRegister string
	FrameLabel     string

	// Cleared is set when the row lost its annotations because the stack
	// pointer moved above it.
	Cleared bool
}
