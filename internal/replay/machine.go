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

package replay

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/stackvis/stackvis/core/stackview"
	"github.com/stackvis/stackvis/core/tracing"
	"github.com/stackvis/stackvis/params"
)

const symbolCacheSize = 256

var (
	// ErrAddressRange is returned for accesses the simulated hardware refuses.
	ErrAddressRange = errors.New("address out of range")

	// ErrUnaligned is returned for word accesses off a word boundary.
	ErrUnaligned = errors.New("unaligned word access")
)

// RegisterNames are the conventional names of the general purpose registers.
var RegisterNames = [32]string{
	"$zero", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
}

// RegisterIndex resolves "$ra" style and "$31" style register names.
func RegisterIndex(name string) (int, bool) {
	for i, n := range RegisterNames {
		if n == name {
			return i, true
		}
	}
	if strings.HasPrefix(name, "$") {
		if i, err := strconv.Atoi(name[1:]); err == nil && i >= 0 && i < len(RegisterNames) {
			return i, true
		}
	}
	return 0, false
}

type symbol struct {
	addr  uint64
	label string
}

type cachedLabel struct {
	label string
	ok    bool
}

// Machine is an in-memory stand-in for the simulator: sparse byte memory, a
// register file, the decoded program and its symbol table. Every load,
// store, register write and fetch is announced to the subscribers; the
// Peek methods are silent.
type Machine struct {
	config  *params.MemoryConfig
	cells   map[uint64]byte
	regs    [32]uint64
	program map[uint64]*tracing.Statement
	symbols []symbol
	cache   *lru.Cache

	subscribers []func(tracing.Event)
}

// NewMachine loads trace's program, symbols, registers and memory into a
// machine with the given layout.
func NewMachine(config *params.MemoryConfig, trace *Trace) (*Machine, error) {
	cache, err := lru.New(symbolCacheSize)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		config:  config,
		cells:   make(map[uint64]byte),
		program: make(map[uint64]*tracing.Statement),
		cache:   cache,
	}
	m.regs[config.SPRegisterIndex] = config.StackPointer

	for name, value := range trace.Registers {
		i, _ := RegisterIndex(name)
		m.regs[i] = value
	}
	next := config.TextBase
	for _, ins := range trace.Program {
		addr := ins.Addr
		if addr == 0 {
			addr = next
		}
		if !config.InText(addr) {
			return nil, fmt.Errorf("%w: instruction %q at %#x outside the text segment", ErrAddressRange, ins.Op, addr)
		}
		src := ins.Source
		if src == "" {
			src = ins.Op
		}
		m.program[addr] = tracing.NewStatement(addr, ins.Op, ins.Args, src)
		next = addr + config.InstructionSize
	}
	for label, addr := range trace.Symbols {
		m.symbols = append(m.symbols, symbol{addr: addr, label: label})
	}
	sort.Slice(m.symbols, func(i, j int) bool {
		if m.symbols[i].addr != m.symbols[j].addr {
			return m.symbols[i].addr < m.symbols[j].addr
		}
		return m.symbols[i].label < m.symbols[j].label
	})
	for _, w := range trace.Memory {
		if err := m.store(w.Addr, w.Value, m.length(w.Len)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Backend returns the capabilities a stack view needs. Memory is handed out
// through its silent side only.
func (m *Machine) Backend() stackview.Backend {
	return stackview.Backend{
		Memory:    silentMemory{m},
		Program:   m,
		Symbols:   m,
		Registers: m,
	}
}

// silentMemory hides the notifying loads of a Machine.
type silentMemory struct {
	m *Machine
}

func (s silentMemory) PeekByte(addr uint64) (byte, error)   { return s.m.PeekByte(addr) }
func (s silentMemory) PeekWord(addr uint64) (uint64, error) { return s.m.PeekWord(addr) }

// Subscribe registers fn for every event the machine emits.
func (m *Machine) Subscribe(fn func(tracing.Event)) {
	m.subscribers = append(m.subscribers, fn)
}

func (m *Machine) notify(ev tracing.Event) {
	for _, fn := range m.subscribers {
		fn(ev)
	}
}

func (m *Machine) length(n int) int {
	if n <= 0 {
		return int(m.config.WordSize)
	}
	return n
}

// checkAccess mirrors the simulator's range check: the topmost stack word is
// only reachable by whole-word accesses.
func (m *Machine) checkAccess(addr uint64, length int) error {
	top := m.config.StackBase
	if uint64(length) < m.config.WordSize && addr > top && addr <= top+m.config.WordSize-1 {
		return fmt.Errorf("%w: %d byte access at %#x", ErrAddressRange, length, addr)
	}
	if uint64(length) == m.config.WordSize && addr%m.config.WordSize != 0 {
		return fmt.Errorf("%w: %#x", ErrUnaligned, addr)
	}
	return nil
}

func (m *Machine) load(addr uint64, length int) (uint64, error) {
	if err := m.checkAccess(addr, length); err != nil {
		return 0, err
	}
	var value uint64
	for i := 0; i < length; i++ {
		shift := i
		if !m.config.LittleEndian {
			shift = length - 1 - i
		}
		value |= uint64(m.cells[addr+uint64(i)]) << (8 * shift)
	}
	return value, nil
}

func (m *Machine) store(addr, value uint64, length int) error {
	if err := m.checkAccess(addr, length); err != nil {
		return err
	}
	for i := 0; i < length; i++ {
		shift := i
		if !m.config.LittleEndian {
			shift = length - 1 - i
		}
		m.cells[addr+uint64(i)] = byte(value >> (8 * shift))
	}
	return nil
}

// PeekByte reads a byte without notifying.
func (m *Machine) PeekByte(addr uint64) (byte, error) {
	v, err := m.load(addr, 1)
	return byte(v), err
}

// PeekWord reads a word without notifying.
func (m *Machine) PeekWord(addr uint64) (uint64, error) {
	return m.load(addr, int(m.config.WordSize))
}

// LoadByte reads a byte and announces the access.
func (m *Machine) LoadByte(addr uint64) (byte, error) {
	v, err := m.Load(addr, 1)
	return byte(v), err
}

// LoadWord reads a word and announces the access.
func (m *Machine) LoadWord(addr uint64) (uint64, error) {
	return m.Load(addr, int(m.config.WordSize))
}

// Load reads length bytes and announces the access.
func (m *Machine) Load(addr uint64, length int) (uint64, error) {
	length = m.length(length)
	v, err := m.load(addr, length)
	if err != nil {
		return 0, err
	}
	m.notify(tracing.MemoryAccess{Address: addr, Kind: tracing.Read, Value: v, Length: length})
	return v, nil
}

// Store writes the low length bytes of value and announces the access.
func (m *Machine) Store(addr, value uint64, length int) error {
	length = m.length(length)
	if err := m.store(addr, value, length); err != nil {
		return err
	}
	m.notify(tracing.MemoryAccess{Address: addr, Kind: tracing.Write, Value: value, Length: length})
	return nil
}

// Fetch announces the execution of the statement at addr.
func (m *Machine) Fetch(addr uint64) {
	m.notify(tracing.InstructionFetch{Address: addr})
}

// Name implements tracing.Registers.
func (m *Machine) Name(index int) string {
	if index < 0 || index >= len(RegisterNames) {
		return fmt.Sprintf("$%d", index)
	}
	return RegisterNames[index]
}

// Value implements tracing.Registers.
func (m *Machine) Value(index int) uint64 {
	if index < 0 || index >= len(m.regs) {
		return 0
	}
	return m.regs[index]
}

// SetRegister writes a register and announces the access.
func (m *Machine) SetRegister(name string, value uint64) error {
	i, ok := RegisterIndex(name)
	if !ok {
		return fmt.Errorf("unknown register %q", name)
	}
	if i == 0 {
		return nil
	}
	m.regs[i] = value
	m.notify(tracing.RegisterAccess{Name: RegisterNames[i], Index: i, Kind: tracing.Write, Value: value})
	return nil
}

// StatementAt implements tracing.Program.
func (m *Machine) StatementAt(addr uint64) (*tracing.Statement, bool) {
	st, ok := m.program[addr]
	return st, ok
}

// LabelAt implements tracing.Symbols. Lookups walk the symbol table and are
// cached.
func (m *Machine) LabelAt(addr uint64) (string, bool) {
	if v, ok := m.cache.Get(addr); ok {
		c := v.(cachedLabel)
		return c.label, c.ok
	}
	var c cachedLabel
	if m.config.InText(addr) {
		i := sort.Search(len(m.symbols), func(i int) bool { return m.symbols[i].addr >= addr })
		if i < len(m.symbols) && m.symbols[i].addr == addr {
			c = cachedLabel{label: m.symbols[i].label, ok: true}
		}
	}
	m.cache.Add(addr, c)
	return c.label, c.ok
}

var (
	_ tracing.Memory    = (*Machine)(nil)
	_ tracing.Program   = (*Machine)(nil)
	_ tracing.Symbols   = (*Machine)(nil)
	_ tracing.Registers = (*Machine)(nil)
)
