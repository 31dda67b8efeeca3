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

package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsValidate(t *testing.T) {
	for _, cfg := range []*MemoryConfig{DefaultMemoryConfig, Mips64MemoryConfig} {
		require.NoError(t, cfg.Validate(), cfg.String())
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *MemoryConfig)
		err    error
	}{
		{"word size three", func(c *MemoryConfig) { c.WordSize = 3 }, errWordSize},
		{"word size zero", func(c *MemoryConfig) { c.WordSize = 0 }, errWordSize},
		{"inverted stack", func(c *MemoryConfig) { c.StackLimit = c.StackBase + 4 }, errStackBounds},
		{"sp above stack", func(c *MemoryConfig) { c.StackPointer = c.StackBase + 4 }, errStackPointer},
		{"sp below stack", func(c *MemoryConfig) { c.StackPointer = c.StackLimit - 4 }, errStackPointer},
		{"no instruction size", func(c *MemoryConfig) { c.InstructionSize = 0 }, errInstructionSize},
		{"instruction size six", func(c *MemoryConfig) { c.InstructionSize = 6 }, errInstructionSize},
		{"inverted text", func(c *MemoryConfig) { c.TextBase = c.TextLimit + 4 }, errTextBounds},
		{"overlap", func(c *MemoryConfig) { c.TextLimit = c.StackLimit }, errSegmentsClash},
		{"no sp name", func(c *MemoryConfig) { c.SPRegister = "" }, errSPRegister},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *DefaultMemoryConfig
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.err)
		})
	}
}

func TestUnalignedStackBounds(t *testing.T) {
	cfg := *DefaultMemoryConfig
	cfg.StackLimit++
	assert.Error(t, cfg.Validate())
}

func TestInText(t *testing.T) {
	cfg := DefaultMemoryConfig
	assert.True(t, cfg.InText(0x00400000))
	assert.True(t, cfg.InText(0x0ffffffc))
	assert.False(t, cfg.InText(0x003ffffc))
	assert.False(t, cfg.InText(cfg.StackPointer))
}

func TestDescription(t *testing.T) {
	desc := DefaultMemoryConfig.Description()
	assert.Contains(t, desc, "little-endian")
	assert.Contains(t, desc, "$sp")
}

func TestLayoutByName(t *testing.T) {
	cfg, err := LayoutByName("MIPS64")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), cfg.WordSize)

	cfg.WordSize = 2
	assert.Equal(t, uint64(8), Mips64MemoryConfig.WordSize)

	_, err = LayoutByName("vax")
	assert.Error(t, err)
}
