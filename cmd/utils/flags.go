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


// Package utils contains internal helper functions for stackvis commands.
package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slices"

	"github.com/stackvis/stackvis/core/stackview"
	"github.com/stackvis/stackvis/internal/flags"
	"github.com/stackvis/stackvis/params"
)

var (
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.StackCategory,
	}
	LayoutFlag = &cli.StringFlag{
		Name:     "layout",
		Usage:    "Memory layout preset (default|mips64)",
		Category: flags.StackCategory,
	}
	RowsFlag = &cli.IntFlag{
		Name:     "rows",
		Usage:    "Rows allocated when a session starts",
		Value:    params.InitialRows,
		Category: flags.StackCategory,
	}
	ThresholdFlag = &cli.IntFlag{
		Name:     "threshold",
		Usage:    "Rows left below the stack pointer before the grid grows",
		Value:    params.RowThreshold,
		Category: flags.StackCategory,
	}
	MarginFlag = &cli.IntFlag{
		Name:     "margin",
		Usage:    "Extra rows appended when an access lands past the last row",
		Value:    params.GrowthMargin,
		Category: flags.StackCategory,
	}

	FormatFlag = &cli.StringFlag{
		Name:     "format",
		Usage:    "Number format for addresses and values (hex|dec)",
		Value:    "hex",
		Category: flags.DisplayCategory,
	}
	ViewFlag = &cli.StringFlag{
		Name:     "view",
		Usage:    "Show each slot as a whole word or as separate bytes (word|byte)",
		Value:    "word",
		Category: flags.DisplayCategory,
	}

	MetricsFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Print the engine counters after replaying",
		Category: flags.ReplayCategory,
	}
	WorkersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Trace files replayed concurrently (0 = one per CPU)",
		Category: flags.ReplayCategory,
	}
)

var (
	// StackFlags configure the stack view engine.
	StackFlags = []cli.Flag{ConfigFileFlag, LayoutFlag, RowsFlag, ThresholdFlag, MarginFlag}

	// DisplayFlags control how a grid is rendered.
	DisplayFlags = []cli.Flag{FormatFlag, ViewFlag}

	// ReplayFlags control the replay command.
	ReplayFlags = []cli.Flag{MetricsFlag, WorkersFlag}
)

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// SetStackConfig applies the stack view command line flags to the config.
// Flags the user did not set leave the config untouched, so values loaded
// from a config file survive.
func SetStackConfig(ctx *cli.Context, cfg *stackview.Config) error {
	if ctx.IsSet(LayoutFlag.Name) {
		layout, err := params.LayoutByName(ctx.String(LayoutFlag.Name))
		if err != nil {
			return err
		}
		cfg.Memory = layout
	}
	if ctx.IsSet(RowsFlag.Name) {
		cfg.InitialRows = ctx.Int(RowsFlag.Name)
	}
	if ctx.IsSet(ThresholdFlag.Name) {
		cfg.RowThreshold = ctx.Int(ThresholdFlag.Name)
	}
	if ctx.IsSet(MarginFlag.Name) {
		cfg.GrowthMargin = ctx.Int(MarginFlag.Name)
	}
	return nil
}

// Choice returns the lowercased value of a string flag, failing when it is
// not one of the given choices.
func Choice(ctx *cli.Context, flag *cli.StringFlag, choices ...string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(ctx.String(flag.Name)))
	if !slices.Contains(choices, v) {
		return "", fmt.Errorf("invalid --%s %q, want one of %s", flag.Name, v, strings.Join(choices, "|"))
	}
	return v, nil
}

// SplitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func SplitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}
