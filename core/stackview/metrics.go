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

	"github.com/stackvis/stackvis/core/callstack"
	"github.com/stackvis/stackvis/core/segment"
	"github.com/stackvis/stackvis/core/slots"
	"github.com/stackvis/stackvis/metrics"
)

var (
	eventsCounter  = metrics.NewRegisteredCounter("stackvis/events", nil)
	writesCounter  = metrics.NewRegisteredCounter("stackvis/writes", nil)
	callsCounter   = metrics.NewRegisteredCounter("stackvis/calls", nil)
	returnsCounter = metrics.NewRegisteredCounter("stackvis/returns", nil)
	jumpsCounter   = metrics.NewRegisteredCounter("stackvis/jumps", nil)

	rowsGrownCounter  = metrics.NewRegisteredCounter("stackvis/grid/grown", nil)
	unreadableCounter = metrics.NewRegisteredCounter("stackvis/grid/unreadable", nil)
	droppedCounter    = metrics.NewRegisteredCounter("stackvis/dropped", nil)
	sessionsCounter   = metrics.NewRegisteredCounter("stackvis/sessions", nil)
	maxDepthGauge     = metrics.NewRegisteredGauge("stackvis/callstack/maxdepth", nil)
	geometryLabel     = metrics.GetOrRegisterLabel("stackvis/geometry", nil)

	outOfSegmentCounter  = metrics.NewRegisteredCounter("stackvis/anomaly/outofsegment", nil)
	aboveTopCounter      = metrics.NewRegisteredCounter("stackvis/anomaly/abovetop", nil)
	unbalancedCounter    = metrics.NewRegisteredCounter("stackvis/anomaly/unbalanced", nil)
	mismatchCounter      = metrics.NewRegisteredCounter("stackvis/anomaly/mismatch", nil)
	inactiveCounter      = metrics.NewRegisteredCounter("stackvis/anomaly/inactive", nil)
	unresolvedCounter    = metrics.NewRegisteredCounter("stackvis/anomaly/unresolved", nil)
	unknownSymbolCounter = metrics.NewRegisteredCounter("stackvis/anomaly/unknownsymbol", nil)
)

var anomalyCounters = []struct {
	err     error
	counter *metrics.Counter
}{
	{segment.ErrOutOfSegment, outOfSegmentCounter},
	{slots.ErrAboveInitialTop, aboveTopCounter},
	{callstack.ErrUnbalancedReturn, unbalancedCounter},
	{callstack.ErrReturnAddressMismatch, mismatchCounter},
	{callstack.ErrInactiveSubroutine, inactiveCounter},
	{ErrUnresolvedReturn, unresolvedCounter},
	{ErrUnknownSymbol, unknownSymbolCounter},
}

// countAnomalies bumps the counter of every anomaly kind err carries.
func countAnomalies(err error) {
	for _, a := range anomalyCounters {
		if errors.Is(err, a.err) {
			a.counter.Inc(1)
		}
	}
}
