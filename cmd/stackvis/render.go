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
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/stackvis/stackvis/core/slots"
	"github.com/stackvis/stackvis/core/stackview"
	"github.com/stackvis/stackvis/metrics"
)

// display renders stack grids and metrics as tables.
type display struct {
	decimal bool // Numbers in decimal instead of hex
	bytes   bool // One column per byte instead of one per word
	color   bool // Highlight the stack pointer row
}

func newDisplay(cfg displayConfig, useColor bool) (display, error) {
	d := display{color: useColor}
	switch strings.ToLower(cfg.Format) {
	case "hex":
	case "dec":
		d.decimal = true
	default:
		return d, fmt.Errorf("unknown number format %q", cfg.Format)
	}
	switch strings.ToLower(cfg.View) {
	case "word":
	case "byte":
		d.bytes = true
	default:
		return d, fmt.Errorf("unknown view %q", cfg.View)
	}
	return d, nil
}

func (d display) number(v uint64, width int) string {
	if d.decimal {
		return strconv.FormatUint(v, 10)
	}
	return fmt.Sprintf("0x%0*x", width, v)
}

// lastRow is the deepest row worth printing: the stack pointer row, an
// annotated row or a row holding a non-zero byte, whichever is lowest.
func lastRow(e *stackview.Engine) int {
	last, _ := e.Pointer()
	for row := last + 1; row < e.Rows(); row++ {
		s, ok := e.Slot(row)
		if !ok {
			break
		}
		if s.Annotated() || nonZero(s.Bytes) {
			last = row
		}
	}
	return last
}

func nonZero(bytes []slots.Byte) bool {
	for _, b := range bytes {
		if b.Known && b.Value != 0 {
			return true
		}
	}
	return false
}

// header returns the column titles. In byte view the columns follow the
// engine's byte columns, each titled with the byte's offset in the word.
func (d display) header(e *stackview.Engine) []string {
	header := []string{"", "Address"}
	if !d.bytes {
		return append(header, "Value", "Register", "Frame")
	}
	view := e.View()
	space := view.Space()
	titles := make([]string, space.WordSize)
	for i := range titles {
		titles[view.ByteColumnFor(space.Base, i)-space.FirstByteColumn()] = fmt.Sprintf("+%d", i)
	}
	header = append(header, titles...)
	return append(header, "Register", "Frame")
}

func (d display) rows(e *stackview.Engine) [][]string {
	var (
		view       = e.View()
		space      = view.Space()
		width      = int(space.WordSize) * 2
		pointer, _ = e.Pointer()
		highlight  = color.New(color.FgGreen, color.Bold)
	)
	var rows [][]string
	for row := 0; row <= lastRow(e); row++ {
		s, ok := e.Slot(row)
		if !ok {
			break
		}
		line := []string{"", d.number(s.Address, 8)}
		if row == pointer {
			line[0] = "sp->"
		}
		if d.bytes {
			cells := make([]string, space.WordSize)
			for i, b := range s.Bytes {
				cell := "??"
				if b.Known {
					cell = d.number(uint64(b.Value), 2)
					if !d.decimal {
						cell = cell[2:]
					}
				}
				cells[view.ByteColumnFor(s.Address, i)-space.FirstByteColumn()] = cell
			}
			line = append(line, cells...)
		} else if word, ok := s.Word(view); ok {
			line = append(line, d.number(word, width))
		} else {
			line = append(line, "?")
		}
		line = append(line, s.StoredRegister, s.FrameLabel)
		if row == pointer && d.color {
			for i := range line {
				line[i] = highlight.Sprint(line[i])
			}
		}
		rows = append(rows, line)
	}
	return rows
}

// renderGrid prints the engine's slots from the initial top down to the
// deepest interesting row.
func (d display) renderGrid(w io.Writer, title string, e *stackview.Engine) {
	if title != "" {
		fmt.Fprintf(w, "%s\n", title)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(d.header(e))
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(d.rows(e))
	table.Render()
}

// renderMetrics prints every stackvis metric in the registry.
func renderMetrics(w io.Writer, r metrics.Registry) {
	var data [][]string
	r.Each(func(name string, i interface{}) {
		if !strings.HasPrefix(name, "stackvis/") {
			return
		}
		var value string
		switch m := i.(type) {
		case *metrics.Counter:
			value = strconv.FormatInt(m.Snapshot().Count(), 10)
		case *metrics.Gauge:
			value = strconv.FormatInt(m.Snapshot().Value(), 10)
		case *metrics.Label:
			value = fmt.Sprint(m.Snapshot().Value())
		default:
			return
		}
		data = append(data, []string{name, value})
	})
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(data)
	table.Render()
}
