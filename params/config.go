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

package params

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// DefaultMemoryConfig is the layout of a 32-bit little-endian simulator in
	// its default memory configuration: text at 0x00400000, stack pointer
	// starting one page below the top of the stack segment.
	DefaultMemoryConfig = &MemoryConfig{
		WordSize:        4,
		LittleEndian:    true,
		StackBase:       0x7ffffffc,
		StackLimit:      0x10040000,
		StackPointer:    0x7fffeffc,
		TextBase:        0x00400000,
		TextLimit:       0x0ffffffc,
		InstructionSize: 4,
		SPRegister:      "$sp",
		SPRegisterIndex: 29,
	}

	// Mips64MemoryConfig is a big-endian layout with 8-byte words. The
	// segments sit at the same places as the default layout.
	Mips64MemoryConfig = &MemoryConfig{
		WordSize:        8,
		LittleEndian:    false,
		StackBase:       0x7ffffff8,
		StackLimit:      0x10040000,
		StackPointer:    0x7fffeff8,
		TextBase:        0x00400000,
		TextLimit:       0x0ffffffc,
		InstructionSize: 4,
		SPRegister:      "$sp",
		SPRegisterIndex: 29,
	}
)

// Layouts maps the names accepted on the command line and in trace files to
// the preset layouts.
var Layouts = map[string]*MemoryConfig{
	"default": DefaultMemoryConfig,
	"mips64":  Mips64MemoryConfig,
}

// LayoutByName returns a copy of the named preset layout.
func LayoutByName(name string) (*MemoryConfig, error) {
	layout, ok := Layouts[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown memory layout %q", name)
	}
	cpy := *layout
	return &cpy, nil
}

var (
	errWordSize        = errors.New("word size must be a power of two between 1 and 8")
	errStackBounds     = errors.New("stack base below stack limit")
	errTextBounds      = errors.New("text base above text limit")
	errInstructionSize = errors.New("instruction size must be a power of two")
	errStackPointer    = errors.New("initial stack pointer outside the stack segment")
	errSegmentsClash   = errors.New("text segment overlaps the stack segment")
	errSPRegister      = errors.New("stack pointer register name missing")
)

// MemoryConfig describes the memory layout of the simulator whose stack is
// being reconstructed. All addresses are byte addresses.
type MemoryConfig struct {
	WordSize     uint64 // Bytes per word, power of two
	LittleEndian bool   // Byte order of multi-byte values

	StackBase    uint64 // Highest word-aligned address of the stack segment
	StackLimit   uint64 // Lowest word-aligned address of the stack segment
	StackPointer uint64 // Initial stack pointer value, the top of the visualized stack

	TextBase        uint64 // First address of the text segment
	TextLimit       uint64 // Last address of the text segment
	InstructionSize uint64 // Bytes per instruction, the unit of jump targets

	SPRegister      string // Name of the stack pointer register, e.g. "$sp"
	SPRegisterIndex int    // Index of the stack pointer in the register file
}

// Validate checks that the layout is self-consistent.
func (c *MemoryConfig) Validate() error {
	if c.WordSize == 0 || c.WordSize > 8 || c.WordSize&(c.WordSize-1) != 0 {
		return fmt.Errorf("%w: have %d", errWordSize, c.WordSize)
	}
	if c.StackBase < c.StackLimit {
		return fmt.Errorf("%w: base %#x, limit %#x", errStackBounds, c.StackBase, c.StackLimit)
	}
	if c.StackBase%c.WordSize != 0 || c.StackLimit%c.WordSize != 0 {
		return fmt.Errorf("stack bounds %#x-%#x not aligned to %d bytes", c.StackLimit, c.StackBase, c.WordSize)
	}
	if c.StackPointer < c.StackLimit || c.StackPointer > c.StackBase+c.WordSize-1 {
		return fmt.Errorf("%w: %#x", errStackPointer, c.StackPointer)
	}
	if c.InstructionSize == 0 || c.InstructionSize&(c.InstructionSize-1) != 0 {
		return fmt.Errorf("%w: have %d", errInstructionSize, c.InstructionSize)
	}
	if c.TextBase > c.TextLimit {
		return fmt.Errorf("%w: base %#x, limit %#x", errTextBounds, c.TextBase, c.TextLimit)
	}
	if c.TextBase <= c.StackBase+c.WordSize-1 && c.StackLimit <= c.TextLimit {
		return errSegmentsClash
	}
	if c.SPRegister == "" {
		return errSPRegister
	}
	return nil
}

// InText reports whether addr lies in the text segment.
func (c *MemoryConfig) InText(addr uint64) bool {
	return addr >= c.TextBase && addr <= c.TextLimit
}

// ByteOrder returns the name of the configured byte order.
func (c *MemoryConfig) ByteOrder() string {
	if c.LittleEndian {
		return "little-endian"
	}
	return "big-endian"
}

// Description returns a human-readable description of the layout.
func (c *MemoryConfig) Description() string {
	var banner strings.Builder
	banner.WriteString(fmt.Sprintf("Word size:      %d bytes (%s)\n", c.WordSize, c.ByteOrder()))
	banner.WriteString(fmt.Sprintf("Stack segment:  %#08x - %#08x\n", c.StackLimit, c.StackBase+c.WordSize-1))
	banner.WriteString(fmt.Sprintf("Stack pointer:  %#08x (%s, register %d)\n", c.StackPointer, c.SPRegister, c.SPRegisterIndex))
	banner.WriteString(fmt.Sprintf("Text segment:   %#08x - %#08x\n", c.TextBase, c.TextLimit))
	return banner.String()
}

// String implements fmt.Stringer.
func (c *MemoryConfig) String() string {
	return fmt.Sprintf("{WordSize: %d Order: %s Stack: %#x-%#x SP: %#x Text: %#x-%#x}",
		c.WordSize, c.ByteOrder(), c.StackLimit, c.StackBase, c.StackPointer, c.TextBase, c.TextLimit)
}
