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

// Package vmtest provides helpers for running tests against several simulator
// memory layouts.
package vmtest

import (
	"os"

	"github.com/stackvis/stackvis/params"
)

// Layouts returns the memory layouts to test. By default only the default
// layout is returned; set TEST_ALL_LAYOUTS=true to include every preset.
//
//	func TestSomething(t *testing.T) {
//		for _, layout := range vmtest.Layouts() {
//			t.Run(vmtest.Name(layout), func(t *testing.T) {
//				// test code using layout
//			})
//		}
//	}
func Layouts() []*params.MemoryConfig {
	layouts := []*params.MemoryConfig{params.DefaultMemoryConfig}
	if AllLayouts() {
		layouts = append(layouts, params.Mips64MemoryConfig)
	}
	return layouts
}

// Name returns a human-readable name for a layout, used for sub-test naming.
func Name(layout *params.MemoryConfig) string {
	for name, preset := range params.Layouts {
		if preset == layout {
			return name
		}
	}
	return layout.String()
}

// AllLayouts reports whether every preset layout should be tested.
func AllLayouts() bool {
	return os.Getenv("TEST_ALL_LAYOUTS") == "true"
}
