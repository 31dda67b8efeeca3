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

// Package callstack implements a shadow call stack built purely from observed
// call and return instructions.
package callstack

import (
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	// ErrUnbalancedReturn is returned when a return arrives while no call is
	// pending, e.g. after attaching mid-execution or rewinding history.
	ErrUnbalancedReturn = errors.New("return without pending call")

	// ErrReturnAddressMismatch is returned when the popped call site differs
	// from the one the return resolved to. The pop still happens.
	ErrReturnAddressMismatch = errors.New("return address mismatch")

	// ErrInactiveSubroutine is returned when a return closes a subroutine
	// that has no active invocation.
	ErrInactiveSubroutine = errors.New("return from inactive subroutine")
)

// CallRecord is one pending call.
type CallRecord struct {
	Site  uint64 // Address of the linking jump
	Label string // Callee label
	Frame string // Frame label handed out for the call
}

// Tracker pairs calls with returns and names frames. The zero value is not
// usable, create one with NewTracker.
type Tracker struct {
	records []CallRecord
	active  map[string]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{active: make(map[string]int)}
}

// FrameName formats the label of the count-th concurrently active
// invocation of a subroutine.
func FrameName(label string, count int) string {
	return fmt.Sprintf("%s (%d)", label, count)
}

// OnCall records a call from site into label and returns the frame label for
// the callee's first stack slot.
func (t *Tracker) OnCall(site uint64, label string) string {
	t.active[label]++
	frame := FrameName(label, t.active[label])
	t.records = append(t.records, CallRecord{Site: site, Label: label, Frame: frame})
	return frame
}

// OnReturn closes an invocation of label whose call was made from
// expectedSite. Anomalies are reported but never block the state from
// advancing; several of them are joined.
func (t *Tracker) OnReturn(expectedSite uint64, label string) error {
	var errs []error
	switch n := t.active[label]; {
	case n > 1:
		t.active[label] = n - 1
	case n == 1:
		delete(t.active, label)
	default:
		errs = append(errs, fmt.Errorf("%w: %s", ErrInactiveSubroutine, label))
	}
	if len(t.records) == 0 {
		errs = append(errs, fmt.Errorf("%w: site %#x", ErrUnbalancedReturn, expectedSite))
		return errors.Join(errs...)
	}
	top := t.records[len(t.records)-1]
	t.records = t.records[:len(t.records)-1]
	if top.Site != expectedSite {
		errs = append(errs, fmt.Errorf("%w: have %#x (%s), want %#x (%s)",
			ErrReturnAddressMismatch, top.Site, top.Label, expectedSite, label))
	}
	return errors.Join(errs...)
}

// Reset drops all pending calls and active counters.
func (t *Tracker) Reset() {
	t.records = t.records[:0]
	maps.Clear(t.active)
}

// Depth is the number of pending calls.
func (t *Tracker) Depth() int {
	return len(t.records)
}

// Active returns the number of active invocations of label.
func (t *Tracker) Active(label string) int {
	return t.active[label]
}

// Top returns the innermost pending call.
func (t *Tracker) Top() (CallRecord, bool) {
	if len(t.records) == 0 {
		return CallRecord{}, false
	}
	return t.records[len(t.records)-1], true
}

// Frames returns the pending calls, outermost first.
func (t *Tracker) Frames() []CallRecord {
	return slices.Clone(t.records)
}

// ActiveLabels returns the sorted labels with at least one active invocation.
func (t *Tracker) ActiveLabels() []string {
	labels := maps.Keys(t.active)
	slices.Sort(labels)
	return labels
}
