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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/stackvis/stackvis/cmd/utils"
	"github.com/stackvis/stackvis/core/stackview"
	"github.com/stackvis/stackvis/internal/flags"
)

var (
	dumpConfigCommand = &cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Export configuration values in a TOML format",
		ArgsUsage:   "<dumpfile (optional)>",
		Flags:       flags.Merge(utils.StackFlags, utils.DisplayFlags),
		Description: `Export configuration values in TOML format (to stdout by default).`,
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// displayConfig selects how grids are printed.
type displayConfig struct {
	Format string // hex or dec
	View   string // word or byte
}

type stackvisConfig struct {
	Stack   stackview.Config
	Display displayConfig
}

func defaultConfig() stackvisConfig {
	// Decoding a file writes through the layout pointer, so it must not be
	// the shared preset.
	memory := *stackview.Defaults.Memory
	stack := stackview.Defaults
	stack.Memory = &memory
	return stackvisConfig{
		Stack: stack,
		Display: displayConfig{
			Format: utils.FormatFlag.Value,
			View:   utils.ViewFlag.Value,
		},
	}
}

func loadConfig(file string, cfg *stackvisConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the config file if one is given and applies the command
// line flags on top of it.
func makeConfig(ctx *cli.Context) (stackvisConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := utils.SetStackConfig(ctx, &cfg.Stack); err != nil {
		return cfg, err
	}
	if cfg.Stack.Memory != nil {
		if err := cfg.Stack.Memory.Validate(); err != nil {
			return cfg, fmt.Errorf("invalid memory layout: %v", err)
		}
	}
	if ctx.IsSet(utils.FormatFlag.Name) {
		cfg.Display.Format = ctx.String(utils.FormatFlag.Name)
	}
	if ctx.IsSet(utils.ViewFlag.Name) {
		cfg.Display.View = ctx.String(utils.ViewFlag.Name)
	}
	return cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
