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

// Package stackview reconstructs the state of a simulated call stack from the
// memory, register and instruction events of a running program.
package stackview

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/stackvis/stackvis/core/callstack"
	"github.com/stackvis/stackvis/core/segment"
	"github.com/stackvis/stackvis/core/slots"
	"github.com/stackvis/stackvis/core/tracing"
	"github.com/stackvis/stackvis/log"
)

// Backend is the part of the simulator the engine talks to. Memory is only
// ever read silently.
type Backend struct {
	Memory    tracing.SilentMemory
	Program   tracing.Program
	Symbols   tracing.Symbols
	Registers tracing.Registers
}

// CallView is read access to the shadow call stack.
type CallView interface {
	Depth() int
	Active(label string) int
	Top() (callstack.CallRecord, bool)
	Frames() []callstack.CallRecord
	ActiveLabels() []string
}

// Engine owns the slot grid and shadow call stack of one session and keeps
// them in sync with the event stream. It must be driven from one goroutine.
type Engine struct {
	config  Config
	backend Backend

	space   segment.Space
	view    segment.ByteView
	grid    *slots.Grid
	tracker *callstack.Tracker

	// Values staged by instruction fetches for the next stack write.
	stagedRegister string
	stagedFrame    string

	sp           uint64
	spRow, spCol int

	session    uuid.UUID
	log        log.Logger
	dropFilter *log.EveryN
}

// New creates an engine for a fresh session. The grid starts at the
// configured initial stack pointer; no memory is read until Refresh or Reset.
func New(config *Config, backend Backend) (*Engine, error) {
	if backend.Memory == nil || backend.Program == nil || backend.Symbols == nil || backend.Registers == nil {
		return nil, errMissingBackend
	}
	if config == nil {
		config = &Defaults
	}
	cfg := config.sanitize()
	if err := cfg.Memory.Validate(); err != nil {
		return nil, fmt.Errorf("invalid memory config: %w", err)
	}
	space := segment.Space{
		WordSize:     cfg.Memory.WordSize,
		Base:         cfg.Memory.StackBase,
		Limit:        cfg.Memory.StackLimit,
		LittleEndian: cfg.Memory.LittleEndian,
	}
	grid, err := slots.NewGrid(space, cfg.Memory.StackPointer, cfg.InitialRows, cfg.GrowthMargin)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		config:     cfg,
		backend:    backend,
		space:      space,
		view:       segment.NewByteView(space),
		grid:       grid,
		tracker:    callstack.NewTracker(),
		sp:         cfg.Memory.StackPointer,
		session:    uuid.New(),
		dropFilter: &log.EveryN{N: 64},
	}
	e.spRow, _ = grid.RowFor(e.sp)
	e.spCol, _ = grid.ColumnFor(e.sp)
	e.log = log.New("session", e.session.String()[:8])

	sessionsCounter.Inc(1)
	geometryLabel.Mark(map[string]interface{}{
		"wordsize": cfg.Memory.WordSize,
		"order":    cfg.Memory.ByteOrder(),
		"top":      fmt.Sprintf("%#x", grid.Top()),
		"limit":    fmt.Sprintf("%#x", space.Limit),
	})
	e.log.Debug("Created stack view", "top", fmt.Sprintf("%#x", grid.Top()), "rows", grid.Len(), "wordsize", space.WordSize, "order", cfg.Memory.ByteOrder())
	return e, nil
}

// Handle applies one simulator event and returns the rows it changed. A
// returned error is a soft failure: the event was dropped or only partly
// understood, and the engine stays usable.
func (e *Engine) Handle(ev tracing.Event) ([]SlotUpdate, error) {
	eventsCounter.Inc(1)

	var (
		updates []SlotUpdate
		err     error
	)
	switch ev := ev.(type) {
	case tracing.MemoryAccess:
		updates, err = e.onMemory(ev)
	case tracing.RegisterAccess:
		updates, err = e.onRegister(ev)
	case tracing.InstructionFetch:
		err = e.onFetch(ev.Address)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	if err != nil {
		e.report(ev, err)
	}
	return updates, err
}

func (e *Engine) report(ev tracing.Event, err error) {
	countAnomalies(err)
	switch {
	case errors.Is(err, segment.ErrOutOfSegment), errors.Is(err, slots.ErrAboveInitialTop):
		droppedCounter.Inc(1)
		log.WriteBy(e.log, e.dropFilter, log.LevelDebug, "Dropped stack event", "event", ev, "err", err)
	case errors.Is(err, ErrUnresolvedReturn), errors.Is(err, ErrUnknownEvent):
		droppedCounter.Inc(1)
		e.log.Warn("Dropped stack event", "event", ev, "err", err)
	default:
		e.log.Warn("Stack tracking anomaly", "event", ev, "err", err)
	}
}

// Reset clears everything derived from execution history: the shadow call
// stack, the annotations and staged values. Memory and the stack pointer are
// then re-read.
func (e *Engine) Reset() error {
	e.tracker.Reset()
	e.grid.ClearAllAnnotations()
	e.grid.Forget()
	e.stagedRegister, e.stagedFrame = "", ""
	e.log.Debug("Reset stack view")
	return e.Refresh()
}

// Refresh silently re-reads every row and re-derives the stack pointer
// position. Annotations and the shadow call stack are left alone.
func (e *Engine) Refresh() error {
	var errs []error
	if err := e.reload(0); err != nil {
		errs = append(errs, err)
	}
	sp := e.backend.Registers.Value(e.config.Memory.SPRegisterIndex)
	row, col, err := e.locate(sp)
	if err != nil {
		errs = append(errs, fmt.Errorf("stack pointer: %w", err))
	} else {
		e.sp, e.spRow, e.spCol = sp, row, col
	}
	return errors.Join(errs...)
}

// GrowTo makes sure at least rows rows exist, loading the new ones.
func (e *Engine) GrowTo(rows int) int {
	before := e.grid.Len()
	added := e.grid.GrowTo(rows)
	e.afterGrowth(before)
	return added
}

// Rows is the number of allocated rows.
func (e *Engine) Rows() int {
	return e.grid.Len()
}

// Slot returns a copy of the slot at row.
func (e *Engine) Slot(row int) (slots.Slot, bool) {
	s := e.grid.Slot(row)
	if s == nil {
		return slots.Slot{}, false
	}
	return s.Copy(), true
}

// Pointer returns the row and byte column the stack pointer points at.
func (e *Engine) Pointer() (row, col int) {
	return e.spRow, e.spCol
}

// StackPointer returns the last observed stack pointer value.
func (e *Engine) StackPointer() uint64 {
	return e.sp
}

// Calls gives read access to the shadow call stack.
func (e *Engine) Calls() CallView {
	return e.tracker
}

// View returns the byte projection used by the engine.
func (e *Engine) View() segment.ByteView {
	return e.view
}

// Config returns the sanitized settings of the session.
func (e *Engine) Config() Config {
	return e.config
}

// Session returns the id tagging the session's log lines.
func (e *Engine) Session() uuid.UUID {
	return e.session
}

// locate resolves addr and loads any rows the lookup added.
func (e *Engine) locate(addr uint64) (row, col int, err error) {
	before := e.grid.Len()
	row, col, err = e.grid.Locate(addr)
	e.afterGrowth(before)
	return row, col, err
}

func (e *Engine) afterGrowth(before int) {
	added := e.grid.Len() - before
	if added <= 0 {
		return
	}
	rowsGrownCounter.Inc(int64(added))
	if err := e.reload(before); err != nil {
		e.log.Debug("Failed to load new rows", "from", before, "err", err)
	}
	e.log.Trace("Grew stack grid", "rows", e.grid.Len(), "added", added)
}

// reload silently re-reads the rows from row onwards.
func (e *Engine) reload(from int) error {
	var (
		failed   int
		firstErr error
	)
	for row := from; row < e.grid.Len(); row++ {
		if err := e.loadSlot(e.grid.Slot(row)); err != nil {
			if failed == 0 {
				firstErr = err
			}
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	unreadableCounter.Inc(int64(failed))
	return fmt.Errorf("%d rows unreadable: %w", failed, firstErr)
}

// loadSlot reads one slot. The topmost word of the segment only supports
// whole-word access, so it is read as a word and split.
func (e *Engine) loadSlot(s *slots.Slot) error {
	mem := e.backend.Memory
	if e.space.IsBoundaryWord(s.Address) {
		word, err := mem.PeekWord(s.Address)
		if err != nil {
			return err
		}
		for i, b := range e.view.DecodeWord(word) {
			s.Bytes[i] = slots.Byte{Value: b, Known: true}
		}
		return nil
	}
	for i := range s.Bytes {
		b, err := mem.PeekByte(s.Address + uint64(i))
		if err != nil {
			return err
		}
		s.Bytes[i] = slots.Byte{Value: b, Known: true}
	}
	return nil
}
