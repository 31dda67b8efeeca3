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

// Package tracing defines the events a simulator feeds into the stack view
// and the collaborator interfaces the view needs from the simulator.
package tracing

import "fmt"

// AccessKind tells reads from writes.
type AccessKind uint8

const (
	Read AccessKind = iota
	Write
)

func (k AccessKind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("AccessKind(%d)", uint8(k))
	}
}

// Event is one notification from the simulator. The set of implementations
// is closed: MemoryAccess, RegisterAccess and InstructionFetch.
type Event interface {
	event()
}

// MemoryAccess is a read or write of Length bytes at Address. For writes,
// Value holds the stored value in its low Length bytes.
type MemoryAccess struct {
	Address uint64
	Kind    AccessKind
	Value   uint64
	Length  int
}

// RegisterAccess is a read or write of a general purpose register.
type RegisterAccess struct {
	Name  string
	Index int
	Kind  AccessKind
	Value uint64
}

// InstructionFetch announces the statement at Address is about to execute.
type InstructionFetch struct {
	Address uint64
}

func (MemoryAccess) event()     {}
func (RegisterAccess) event()   {}
func (InstructionFetch) event() {}

func (m MemoryAccess) String() string {
	return fmt.Sprintf("mem %s %#x/%d=%#x", m.Kind, m.Address, m.Length, m.Value)
}

func (r RegisterAccess) String() string {
	return fmt.Sprintf("reg %s %s=%#x", r.Kind, r.Name, r.Value)
}

func (f InstructionFetch) String() string {
	return fmt.Sprintf("fetch %#x", f.Address)
}
