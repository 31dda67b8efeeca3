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

// ByteView projects words of a Space onto byte columns, honoring the
// configured byte order. Values are raw integers; formatting is left to the
// presentation layer.
type ByteView struct {
	space Space
}

// NewByteView returns the byte projection for space.
func NewByteView(space Space) ByteView {
	return ByteView{space: space}
}

// Space returns the geometry the view projects.
func (v ByteView) Space() Space {
	return v.space
}

// ByteColumnFor returns the display column of the byte at addr+byteIndex.
// Little-endian words put the lowest address in the rightmost column,
// big-endian words mirror that.
func (v ByteView) ByteColumnFor(addr uint64, byteIndex int) int {
	i := v.space.ByteOffset(addr + uint64(byteIndex))
	if v.space.LittleEndian {
		return v.space.LastByteColumn() - i
	}
	return v.space.FirstByteColumn() + i
}

// DecodeWord splits a whole word into its bytes, in address order: element i
// is the byte stored at word address + i.
func (v ByteView) DecodeWord(word uint64) []byte {
	return v.EncodeValue(word, int(v.space.WordSize))
}

// EncodeValue splits the low length bytes of value into the bytes a store of
// that width leaves in memory, in address order.
func (v ByteView) EncodeValue(value uint64, length int) []byte {
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		shift := i
		if !v.space.LittleEndian {
			shift = length - 1 - i
		}
		out[i] = byte(value >> (8 * shift))
	}
	return out
}

// ComposeWord reassembles bytes given in address order into a value. It is
// the inverse of EncodeValue.
func (v ByteView) ComposeWord(bytes []byte) uint64 {
	var word uint64
	for i, b := range bytes {
		shift := i
		if !v.space.LittleEndian {
			shift = len(bytes) - 1 - i
		}
		word |= uint64(b) << (8 * shift)
	}
	return word
}
