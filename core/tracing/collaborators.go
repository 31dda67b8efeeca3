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

package tracing

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// SilentMemory reads simulator memory without emitting access events. It is
// the only memory capability the stack view receives, so redrawing the view
// can never feed back into the event stream.
type SilentMemory interface {
	PeekByte(addr uint64) (byte, error)
	PeekWord(addr uint64) (uint64, error)
}

// NotifyingMemory loads simulator memory the way the simulated program does,
// emitting a MemoryAccess event for every load.
type NotifyingMemory interface {
	LoadByte(addr uint64) (byte, error)
	LoadWord(addr uint64) (uint64, error)
}

// Memory is the full memory capability of a simulator.
type Memory interface {
	SilentMemory
	NotifyingMemory
}

// Registers gives access to the general purpose register file.
type Registers interface {
	Name(index int) string
	Value(index int) uint64
}

// Symbols resolves text addresses to labels.
type Symbols interface {
	LabelAt(addr uint64) (string, bool)
}

// Program looks up decoded statements in the text segment.
type Program interface {
	StatementAt(addr uint64) (*Statement, bool)
}

// Class is the control or data flow category of a mnemonic.
type Class uint8

const (
	ClassOther        Class = iota
	ClassStore              // Stores a register into memory
	ClassJump               // Unconditional jump, no link
	ClassLinkingJump        // Subroutine call
	ClassRegisterJump       // Jump through a register, taken as a return
)

var classNames = [...]string{"other", "store", "jump", "linking-jump", "register-jump"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

var (
	storeMnemonics = mapset.NewThreadUnsafeSet[string](
		"sb", "sh", "sw", "swl", "swr", "sc", "sd", "sdl", "sdr", "scd",
	)
	jumpMnemonics         = mapset.NewThreadUnsafeSet[string]("j")
	linkingJumpMnemonics  = mapset.NewThreadUnsafeSet[string]("jal")
	registerJumpMnemonics = mapset.NewThreadUnsafeSet[string]("jr")
)

// Classify maps a mnemonic to its class. Unknown mnemonics, including jalr,
// are ClassOther.
func Classify(mnemonic string) Class {
	m := strings.ToLower(strings.TrimSpace(mnemonic))
	switch {
	case storeMnemonics.Contains(m):
		return ClassStore
	case jumpMnemonics.Contains(m):
		return ClassJump
	case linkingJumpMnemonics.Contains(m):
		return ClassLinkingJump
	case registerJumpMnemonics.Contains(m):
		return ClassRegisterJump
	default:
		return ClassOther
	}
}

// Statement is one decoded instruction.
//
// Operands follow the assembler's operand order: for stores operand 0 is the
// source register index, for jal and j it is the encoded jump target (the
// word index), for jr the register index.
type Statement struct {
	Address  uint64
	Mnemonic string
	Class    Class
	Operands []int64
	Source   string
}

// NewStatement builds a statement and classifies its mnemonic.
func NewStatement(addr uint64, mnemonic string, operands []int64, source string) *Statement {
	return &Statement{
		Address:  addr,
		Mnemonic: mnemonic,
		Class:    Classify(mnemonic),
		Operands: operands,
		Source:   source,
	}
}

// Operand returns operand i, or false if the statement has fewer operands.
func (s *Statement) Operand(i int) (int64, bool) {
	if i < 0 || i >= len(s.Operands) {
		return 0, false
	}
	return s.Operands[i], true
}
