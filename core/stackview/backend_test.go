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

import (
	"errors"

	"github.com/stackvis/stackvis/core/tracing"
	"github.com/stackvis/stackvis/params"
)

var errByteAccess = errors.New("byte access to the boundary word")

// testMemoryConfig is a small stack segment whose initial stack pointer sits
// on the topmost word.
var testMemoryConfig = &params.MemoryConfig{
	WordSize:        4,
	LittleEndian:    true,
	StackBase:       0x7fffeffc,
	StackLimit:      0x7fffe000,
	StackPointer:    0x7fffeffc,
	TextBase:        0x00400000,
	TextLimit:       0x0ffffffc,
	InstructionSize: 4,
	SPRegister:      "$sp",
	SPRegisterIndex: 29,
}

// testMemory is little-endian byte storage refusing byte reads of the
// topmost word, like the simulated hardware.
type testMemory struct {
	cells    map[uint64]byte
	notified int
}

func newTestMemory() *testMemory {
	return &testMemory{cells: make(map[uint64]byte)}
}

func (m *testMemory) store(addr, value uint64, length int) {
	for i := 0; i < length; i++ {
		m.cells[addr+uint64(i)] = byte(value >> (8 * i))
	}
}

func (m *testMemory) PeekByte(addr uint64) (byte, error) {
	if addr >= testMemoryConfig.StackBase && addr <= testMemoryConfig.StackBase+3 {
		return 0, errByteAccess
	}
	return m.cells[addr], nil
}

func (m *testMemory) PeekWord(addr uint64) (uint64, error) {
	var word uint64
	for i := 0; i < 4; i++ {
		word |= uint64(m.cells[addr+uint64(i)]) << (8 * i)
	}
	return word, nil
}

func (m *testMemory) LoadByte(addr uint64) (byte, error) {
	m.notified++
	return m.PeekByte(addr)
}

func (m *testMemory) LoadWord(addr uint64) (uint64, error) {
	m.notified++
	return m.PeekWord(addr)
}

var _ tracing.Memory = (*testMemory)(nil)

var regNames = [32]string{
	"$zero", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
}

type testRegisters map[int]uint64

func (r testRegisters) Name(i int) string  { return regNames[i] }
func (r testRegisters) Value(i int) uint64 { return r[i] }

type testProgram map[uint64]*tracing.Statement

func (p testProgram) StatementAt(addr uint64) (*tracing.Statement, bool) {
	st, ok := p[addr]
	return st, ok
}

func (p testProgram) add(addr uint64, mnemonic string, operands ...int64) {
	p[addr] = tracing.NewStatement(addr, mnemonic, operands, mnemonic)
}

type testSymbols map[uint64]string

func (s testSymbols) LabelAt(addr uint64) (string, bool) {
	l, ok := s[addr]
	return l, ok
}

// sumProgram is main calling sum, which saves $ra and $a0 in an 8 byte frame:
//
//	0x400000 main: addi $sp, $sp, -4
//	0x400004       sw   $ra, 0($sp)
//	0x400008       jal  sum
//	0x40000c       lw   $ra, 0($sp)
//	0x400010       j    exit
//	0x400020 sum:  addi $sp, $sp, -8
//	0x400024       sw   $ra, 4($sp)
//	0x400028       sw   $a0, 0($sp)
//	0x40002c       add  $v0, $a0, $a1
//	0x400030       lw   $a0, 0($sp)
//	0x400034       lw   $ra, 4($sp)
//	0x400038       addi $sp, $sp, 8
//	0x40003c       jr   $ra
//	0x400040 exit: nop
func sumProgram() (testProgram, testSymbols) {
	p := make(testProgram)
	p.add(0x400000, "addi", 29, 29, -4)
	p.add(0x400004, "sw", 31, 0, 29)
	p.add(0x400008, "jal", 0x400020/4)
	p.add(0x40000c, "lw", 31, 0, 29)
	p.add(0x400010, "j", 0x400040/4)
	p.add(0x400020, "addi", 29, 29, -8)
	p.add(0x400024, "sw", 31, 4, 29)
	p.add(0x400028, "sw", 4, 0, 29)
	p.add(0x40002c, "add", 2, 4, 5)
	p.add(0x400030, "lw", 4, 0, 29)
	p.add(0x400034, "lw", 31, 4, 29)
	p.add(0x400038, "addi", 29, 29, 8)
	p.add(0x40003c, "jr", 31)
	p.add(0x400040, "nop")

	return p, testSymbols{0x400000: "main", 0x400020: "sum", 0x400040: "exit"}
}

type testBackend struct {
	mem     *testMemory
	regs    testRegisters
	program testProgram
	symbols testSymbols
}

func newTestBackend() *testBackend {
	program, symbols := sumProgram()
	regs := testRegisters{29: testMemoryConfig.StackPointer}
	return &testBackend{mem: newTestMemory(), regs: regs, program: program, symbols: symbols}
}

func (b *testBackend) backend() Backend {
	return Backend{Memory: b.mem, Program: b.program, Symbols: b.symbols, Registers: b.regs}
}
