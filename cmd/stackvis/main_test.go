// Copyright 2024 The stackvis Authors
// This file is part of stackvis.
//
// stackvis is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// stackvis is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with stackvis. If not, see <http://www.gnu.org/licenses/>.


package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvis/stackvis/log"
)

var (
	sumTrace       = filepath.Join("..", "..", "internal", "replay", "testdata", "sum.yaml")
	recursionTrace = filepath.Join("..", "..", "internal", "replay", "testdata", "recursion.yaml")
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer log.SetDefault(log.NewLogger(log.DiscardHandler()))

	var out bytes.Buffer
	a := newApp()
	a.Writer = &out
	a.ErrWriter = &out
	err := a.Run(append([]string{"stackvis", "--verbosity", "0"}, args...))
	return out.String(), err
}

func TestReplayWordView(t *testing.T) {
	out, err := runApp(t, "replay", sumTrace)
	require.NoError(t, err)
	assert.Contains(t, out, "sum: 34 events")
	assert.Contains(t, out, "depth 0")
	assert.Contains(t, out, "sp->")
	assert.Contains(t, out, "0x7fffeff0")
	assert.Contains(t, out, "0x00400010")
	assert.Contains(t, out, "0x00000005")
	assert.NotContains(t, out, "0x7fffefec")
}

func TestReplayByteView(t *testing.T) {
	out, err := runApp(t, "replay", "--view", "byte", "--format", "dec", sumTrace)
	require.NoError(t, err)
	assert.Contains(t, out, "+3")
	assert.Contains(t, out, "+0")
	assert.Contains(t, out, "2147479540") // 0x7fffeff4
	assert.Contains(t, out, "64")
	assert.Contains(t, out, "16")
}

func TestReplayAnomaliesAndMetrics(t *testing.T) {
	out, err := runApp(t, "replay", "--metrics", recursionTrace+","+sumTrace)
	require.NoError(t, err)
	assert.Contains(t, out, "recursion:")
	assert.Contains(t, out, "sum:")
	assert.Contains(t, out, "step 18:")
	assert.Contains(t, out, "stackvis/events")
	assert.Contains(t, out, "stackvis/anomaly/unbalanced")
}

func TestReplayFailures(t *testing.T) {
	_, err := runApp(t, "replay", sumTrace, "missing.yaml")
	assert.EqualError(t, err, "1 of 2 traces failed")

	_, err = runApp(t, "replay")
	assert.Error(t, err)

	_, err = runApp(t, "replay", "--view", "nibble", sumTrace)
	assert.Error(t, err)
}

func TestLayouts(t *testing.T) {
	out, err := runApp(t, "layouts")
	require.NoError(t, err)
	assert.Contains(t, out, "default:\nWord size:      4 bytes (little-endian)")
	assert.Contains(t, out, "mips64:\nWord size:      8 bytes (big-endian)")
}

func TestDumpConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stackvis.toml")
	_, err := runApp(t, "dumpconfig", "--layout", "mips64", "--rows", "40", "--view", "byte", path)
	require.NoError(t, err)

	cfg := defaultConfig()
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, 40, cfg.Stack.InitialRows)
	assert.Equal(t, uint64(8), cfg.Stack.Memory.WordSize)
	assert.False(t, cfg.Stack.Memory.LittleEndian)
	assert.Equal(t, uint64(4), cfg.Stack.Memory.InstructionSize)
	assert.Equal(t, "byte", cfg.Display.View)
	assert.Equal(t, "hex", cfg.Display.Format)

	// Flags override the file.
	out, err := runApp(t, "replay", "--config", path, "--layout", "default", sumTrace)
	require.NoError(t, err)
	assert.Contains(t, out, "+3")
	assert.Contains(t, out, "sum: 34 events")
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Stack]\nBogus = 1\n"), 0644))

	cfg := defaultConfig()
	err := loadConfig(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bogus")

	assert.Error(t, loadConfig(filepath.Join(dir, "missing.toml"), &cfg))
}

func TestDefaultConfigCopiesLayout(t *testing.T) {
	a, b := defaultConfig(), defaultConfig()
	a.Stack.Memory.WordSize = 8
	assert.Equal(t, uint64(4), b.Stack.Memory.WordSize)
}

func TestNewDisplay(t *testing.T) {
	d, err := newDisplay(displayConfig{Format: "DEC", View: "byte"}, false)
	require.NoError(t, err)
	assert.True(t, d.decimal)
	assert.True(t, d.bytes)
	assert.Equal(t, "42", d.number(42, 8))

	d, err = newDisplay(displayConfig{Format: "hex", View: "word"}, false)
	require.NoError(t, err)
	assert.Equal(t, "0x0000002a", d.number(42, 8))

	_, err = newDisplay(displayConfig{Format: "oct", View: "word"}, false)
	assert.Error(t, err)
}
