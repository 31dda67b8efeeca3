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

// Package replay drives a stack view from recorded execution traces. A trace
// carries a decoded program, its symbols and the register, memory and fetch
// events of one run.
package replay

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stackvis/stackvis/params"
)

// Trace is a recorded program run.
type Trace struct {
	Name      string            `yaml:"name"`
	Layout    string            `yaml:"layout,omitempty"`
	Registers map[string]uint64 `yaml:"registers,omitempty"`
	Memory    []Access          `yaml:"memory,omitempty"`
	Symbols   map[string]uint64 `yaml:"symbols,omitempty"`
	Program   []Instruction     `yaml:"program"`
	Steps     []Step            `yaml:"steps"`
}

// Instruction is one decoded statement. A zero address continues after the
// previous instruction, the first one defaults to the text base.
type Instruction struct {
	Addr   uint64  `yaml:"addr,omitempty"`
	Op     string  `yaml:"op"`
	Args   []int64 `yaml:"args,flow,omitempty"`
	Source string  `yaml:"src,omitempty"`
}

// Access is a memory access of Len bytes, a whole word when Len is zero.
type Access struct {
	Addr  uint64 `yaml:"addr"`
	Value uint64 `yaml:"value,omitempty"`
	Len   int    `yaml:"len,omitempty"`
}

// RegisterWrite sets a register by name.
type RegisterWrite struct {
	Name  string `yaml:"name"`
	Value uint64 `yaml:"value"`
}

// Step is one simulator action. Exactly one field is set.
type Step struct {
	Fetch *uint64        `yaml:"fetch,omitempty"`
	Read  *Access        `yaml:"read,omitempty"`
	Write *Access        `yaml:"write,omitempty"`
	Reg   *RegisterWrite `yaml:"reg,omitempty"`
	Reset bool           `yaml:"reset,omitempty"`
}

func (s *Step) kinds() int {
	n := 0
	for _, set := range []bool{s.Fetch != nil, s.Read != nil, s.Write != nil, s.Reg != nil, s.Reset} {
		if set {
			n++
		}
	}
	return n
}

// Load reads and validates a trace file.
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read trace")
	}
	trace, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "trace %s", path)
	}
	if trace.Name == "" {
		trace.Name = path
	}
	return trace, nil
}

// Parse decodes and validates a YAML trace. Unknown fields are rejected.
func Parse(data []byte) (*Trace, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var trace Trace
	if err := dec.Decode(&trace); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if err := trace.validate(); err != nil {
		return nil, err
	}
	return &trace, nil
}

func (t *Trace) validate() error {
	if t.Layout != "" {
		if _, err := params.LayoutByName(t.Layout); err != nil {
			return err
		}
	}
	for name := range t.Registers {
		if _, ok := RegisterIndex(name); !ok {
			return errors.Errorf("unknown register %q", name)
		}
	}
	for i := range t.Steps {
		step := &t.Steps[i]
		if n := step.kinds(); n != 1 {
			return errors.Errorf("step %d: want exactly one action, have %d", i, n)
		}
		if step.Reg != nil {
			if _, ok := RegisterIndex(step.Reg.Name); !ok {
				return errors.Errorf("step %d: unknown register %q", i, step.Reg.Name)
			}
		}
	}
	return nil
}

// MemoryConfig returns the layout the trace was recorded with, or fallback
// when the trace does not name one.
func (t *Trace) MemoryConfig(fallback *params.MemoryConfig) *params.MemoryConfig {
	if t.Layout == "" {
		return fallback
	}
	layout, _ := params.LayoutByName(t.Layout)
	return layout
}
