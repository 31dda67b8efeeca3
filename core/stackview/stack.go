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

	"github.com/stackvis/stackvis/core/segment"
	"github.com/stackvis/stackvis/core/slots"
	"github.com/stackvis/stackvis/core/tracing"
)

// onMemory routes a memory access. Text reads are instruction fetches in
// disguise; stack writes update the grid; everything else that writes
// outside the stack is reported.
func (e *Engine) onMemory(ev tracing.MemoryAccess) ([]SlotUpdate, error) {
	if e.config.Memory.InText(ev.Address) {
		if ev.Kind == tracing.Read {
			return nil, e.onFetch(ev.Address)
		}
		return nil, nil
	}
	if ev.Kind != tracing.Write {
		return nil, nil
	}
	return e.onStackWrite(ev)
}

// onStackWrite stores the written bytes and annotates the touched rows with
// the staged register and frame label. Writes outside the stack segment leave
// the staged values alone; writes above the initial top consume them.
func (e *Engine) onStackWrite(ev tracing.MemoryAccess) ([]SlotUpdate, error) {
	length := ev.Length
	if length <= 0 || length > 8 {
		length = int(e.space.WordSize)
	}
	// The last byte has the highest address and thus the lowest row, so
	// checking both ends covers every row in between.
	_, err := e.grid.RowFor(ev.Address)
	if err == nil {
		_, err = e.grid.RowFor(ev.Address + uint64(length) - 1)
	}
	if errors.Is(err, segment.ErrOutOfSegment) {
		return nil, err
	}
	register, frame := e.stagedRegister, e.stagedFrame
	e.stagedRegister, e.stagedFrame = "", ""
	if err != nil {
		return nil, err
	}
	if _, _, err := e.locate(ev.Address); err != nil {
		return nil, err
	}
	writesCounter.Inc(1)

	var updates []SlotUpdate
	for i, b := range e.view.EncodeValue(ev.Value, length) {
		addr := ev.Address + uint64(i)
		row, _ := e.grid.RowFor(addr)
		s := e.grid.Slot(row)
		s.Bytes[e.space.ByteOffset(addr)] = slots.Byte{Value: b, Known: true}

		if n := len(updates); n == 0 || updates[n-1].Row != row {
			s.StoredRegister, s.FrameLabel = register, frame
			updates = append(updates, SlotUpdate{
				Row:            row,
				Address:        s.Address,
				Value:          ev.Value,
				Length:         length,
				StoredRegister: register,
				FrameLabel:     frame,
			})
		}
		u := &updates[len(updates)-1]
		u.Columns = append(u.Columns, e.view.ByteColumnFor(ev.Address, i))
	}
	if frame != "" {
		e.log.Trace("Opened frame", "frame", frame, "row", updates[0].Row)
	}
	return updates, nil
}

func (e *Engine) isStackPointer(ev tracing.RegisterAccess) bool {
	if ev.Name != "" {
		return ev.Name == e.config.Memory.SPRegister
	}
	return ev.Index == e.config.Memory.SPRegisterIndex
}

// onRegister follows stack pointer writes. Rows the pointer moved above lose
// their annotations, as their contents are no longer part of the stack.
func (e *Engine) onRegister(ev tracing.RegisterAccess) ([]SlotUpdate, error) {
	if ev.Kind != tracing.Write || !e.isStackPointer(ev) {
		return nil, nil
	}
	row, col, err := e.locate(ev.Value)
	if err != nil {
		return nil, err
	}
	oldRow := e.spRow
	e.sp, e.spRow, e.spCol = ev.Value, row, col

	var updates []SlotUpdate
	for _, r := range e.grid.ClearAnnotations(row, oldRow) {
		updates = append(updates, SlotUpdate{Row: r, Address: e.grid.AddressFor(r), Cleared: true})
	}
	before := e.grid.Len()
	e.grid.GrowIfNear(row, e.config.RowThreshold)
	e.afterGrowth(before)
	return updates, nil
}
