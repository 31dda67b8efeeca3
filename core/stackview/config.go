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
	"github.com/stackvis/stackvis/log"
	"github.com/stackvis/stackvis/params"
)

// Config are the settings of a stack view session.
type Config struct {
	Memory *params.MemoryConfig `toml:",omitempty"`

	InitialRows  int // Rows allocated when the session starts
	RowThreshold int // Rows kept available below the stack pointer
	GrowthMargin int // Extra rows appended when an access lands past the end
}

// Defaults contains the settings for the default simulator layout.
var Defaults = Config{
	Memory:       params.DefaultMemoryConfig,
	InitialRows:  params.InitialRows,
	RowThreshold: params.RowThreshold,
	GrowthMargin: params.GrowthMargin,
}

// sanitize checks the provided user configurations and changes anything
// that's unreasonable or unworkable.
func (c *Config) sanitize() Config {
	conf := *c
	if conf.Memory == nil {
		conf.Memory = Defaults.Memory
	}
	if conf.InitialRows < 1 {
		log.Warn("Sanitizing invalid stack view initial rows", "provided", conf.InitialRows, "updated", Defaults.InitialRows)
		conf.InitialRows = Defaults.InitialRows
	}
	if conf.RowThreshold < 1 {
		log.Warn("Sanitizing invalid stack view row threshold", "provided", conf.RowThreshold, "updated", Defaults.RowThreshold)
		conf.RowThreshold = Defaults.RowThreshold
	}
	if conf.GrowthMargin < 1 {
		log.Warn("Sanitizing invalid stack view growth margin", "provided", conf.GrowthMargin, "updated", Defaults.GrowthMargin)
		conf.GrowthMargin = Defaults.GrowthMargin
	}
	return conf
}
