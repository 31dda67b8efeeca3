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

import "errors"

var (
	// ErrUnresolvedReturn is returned when a register jump cannot be traced
	// back to the linking jump that produced its return address.
	ErrUnresolvedReturn = errors.New("unresolved return")

	// ErrUnknownSymbol is returned when a jump target has no label. The
	// target address stands in for the label.
	ErrUnknownSymbol = errors.New("no symbol at jump target")

	// ErrUnknownEvent is returned for event types the engine does not handle.
	ErrUnknownEvent = errors.New("unknown event")

	errMissingBackend = errors.New("incomplete simulator backend")
)
