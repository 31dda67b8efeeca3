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
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/stackvis/stackvis/cmd/utils"
	"github.com/stackvis/stackvis/internal/debug"
	"github.com/stackvis/stackvis/internal/flags"
	"github.com/stackvis/stackvis/internal/replay"
	"github.com/stackvis/stackvis/log"
	"github.com/stackvis/stackvis/metrics"
)

var replayCommand = &cli.Command{
	Action:    replayTraces,
	Name:      "replay",
	Usage:     "Replay trace files through the stack view and print the final grids",
	ArgsUsage: "<trace.yaml> [trace.yaml...]",
	Flags:     flags.Merge(utils.StackFlags, utils.DisplayFlags, utils.ReplayFlags),
	Description: `
The replay command feeds each trace file through a simulated machine wired to a
stack view session and prints the reconstructed stack. Several files, given as
separate arguments or comma separated, are replayed concurrently.`,
}

func replayTraces(ctx *cli.Context) error {
	var paths []string
	for _, arg := range ctx.Args().Slice() {
		paths = append(paths, utils.SplitAndTrim(arg)...)
	}
	if len(paths) == 0 {
		return errors.New("no trace files given")
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	d, err := newDisplay(cfg.Display, isatty.IsTerminal(os.Stdout.Fd()))
	if err != nil {
		return err
	}

	end := debug.Handler.StartRegionAuto("replay")
	outcomes, err := replay.RunFiles(paths, &cfg.Stack, ctx.Int(utils.WorkersFlag.Name))
	end()
	if err != nil {
		return err
	}
	out := ctx.App.Writer
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			log.Error("Replay failed", "file", o.Path, "err", o.Err)
			failed++
			continue
		}
		title := fmt.Sprintf("%s: %d events, %d updates, depth %d", o.Result.Name, o.Result.Events, o.Result.Updates, o.Result.Engine.Calls().Depth())
		d.renderGrid(out, title, o.Result.Engine)
		for _, a := range o.Result.Anomalies {
			fmt.Fprintf(out, "  step %d: %v: %v\n", a.Step, a.Event, a.Err)
		}
	}
	if ctx.Bool(utils.MetricsFlag.Name) {
		renderMetrics(out, metrics.DefaultRegistry)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d traces failed", failed, len(outcomes))
	}
	return nil
}
