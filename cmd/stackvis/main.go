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


// stackvis replays simulator traces through the stack view engine.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/stackvis/stackvis/internal/debug"
	"github.com/stackvis/stackvis/params"
)

var app = newApp()

var layoutsCommand = &cli.Command{
	Action: listLayouts,
	Name:   "layouts",
	Usage:  "List the memory layout presets",
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "stackvis",
		Usage:                "the stack view replay tool",
		Version:              params.VersionWithMeta,
		EnableBashCompletion: true,
		Flags:                debug.Flags,
		Commands: []*cli.Command{
			replayCommand,
			dumpConfigCommand,
			layoutsCommand,
		},
		Before: func(ctx *cli.Context) error {
			return debug.Setup(ctx)
		},
		After: func(ctx *cli.Context) error {
			debug.Exit()
			return nil
		},
	}
}

func listLayouts(ctx *cli.Context) error {
	names := maps.Keys(params.Layouts)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(ctx.App.Writer, "%s:\n%s\n", name, params.Layouts[name].Description())
	}
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
