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
	"fmt"

	"github.com/stackvis/stackvis/core/tracing"
)

// onFetch reacts to the statement about to execute at addr.
func (e *Engine) onFetch(addr uint64) error {
	st, ok := e.backend.Program.StatementAt(addr)
	if !ok {
		// Execution ran off the end of the program.
		return nil
	}
	switch st.Class {
	case tracing.ClassStore:
		if reg, ok := st.Operand(0); ok {
			e.stagedRegister = e.backend.Registers.Name(int(reg))
		}
	case tracing.ClassJump:
		jumpsCounter.Inc(1)
		label, _ := e.targetLabel(st)
		e.log.Trace("Jump", "to", label, "at", fmt.Sprintf("%#x", st.Address))
	case tracing.ClassLinkingJump:
		return e.onCall(st)
	case tracing.ClassRegisterJump:
		return e.onReturn(st)
	}
	return nil
}

// targetLabel names the target of a j or jal statement. Targets without a
// symbol are named by their address.
func (e *Engine) targetLabel(st *tracing.Statement) (string, error) {
	op, _ := st.Operand(0)
	target := uint64(op) * e.config.Memory.InstructionSize
	if label, ok := e.backend.Symbols.LabelAt(target); ok {
		return label, nil
	}
	return fmt.Sprintf("%#x", target), fmt.Errorf("%w: %#x", ErrUnknownSymbol, target)
}

func (e *Engine) onCall(st *tracing.Statement) error {
	label, err := e.targetLabel(st)
	e.stagedFrame = e.tracker.OnCall(st.Address, label)
	callsCounter.Inc(1)
	maxDepthGauge.UpdateIfGt(int64(e.tracker.Depth()))
	e.log.Trace("Call", "to", e.stagedFrame, "from", fmt.Sprintf("%#x", st.Address), "depth", e.tracker.Depth())
	return err
}

// onReturn treats a register jump as a subroutine return. The return
// address points one instruction past the linking jump that made the call,
// which names the subroutine being left.
func (e *Engine) onReturn(st *tracing.Statement) error {
	reg, ok := st.Operand(0)
	if !ok {
		return fmt.Errorf("%w: %q at %#x has no register operand", ErrUnresolvedReturn, st.Mnemonic, st.Address)
	}
	ra := e.backend.Registers.Value(int(reg))
	site := ra - e.config.Memory.InstructionSize
	if !e.config.Memory.InText(site) {
		return fmt.Errorf("%w: call site %#x of return address %#x outside the text segment", ErrUnresolvedReturn, site, ra)
	}
	call, ok := e.backend.Program.StatementAt(site)
	if !ok {
		return fmt.Errorf("%w: no statement at call site %#x", ErrUnresolvedReturn, site)
	}
	if call.Class != tracing.ClassLinkingJump {
		return fmt.Errorf("%w: %q at call site %#x is not a call", ErrUnresolvedReturn, call.Mnemonic, site)
	}
	label, lerr := e.targetLabel(call)

	// A callee that never touched the stack leaves its frame label staged.
	if top, ok := e.tracker.Top(); ok && top.Frame == e.stagedFrame {
		e.stagedFrame = ""
	}
	err := e.tracker.OnReturn(site, label)
	returnsCounter.Inc(1)
	e.log.Trace("Return", "from", label, "to", call.Source, "depth", e.tracker.Depth())
	return errors.Join(lerr, err)
}
