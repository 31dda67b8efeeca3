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

package debug

import (
	"context"
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"runtime/trace"
	"strings"
	"sync"

	"github.com/stackvis/stackvis/log"
)

// Handler is the global tracing handler.
var Handler = new(HandlerT)

// HandlerT owns the Go execution trace of the process.
type HandlerT struct {
	mu        sync.Mutex
	traceW    *os.File
	traceFile string
	ctx       context.Context
	task      *trace.Task
}

// StartGoTrace turns on tracing, writing to the given file.
func (h *HandlerT) StartGoTrace(file string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.traceW != nil {
		return errors.New("trace already in progress")
	}
	f, err := os.Create(expandHome(file))
	if err != nil {
		return err
	}
	if err := trace.Start(f); err != nil {
		f.Close()
		return err
	}
	h.traceW = f
	h.traceFile = file
	h.ctx, h.task = trace.NewTask(context.Background(), "stackvis")
	log.Info("Go tracing started", "dump", h.traceFile)
	return nil
}

// StopGoTrace stops an ongoing trace.
func (h *HandlerT) StopGoTrace() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.traceW == nil {
		return errors.New("trace not in progress")
	}
	h.task.End()
	h.task = nil
	h.ctx = nil

	trace.Stop()
	log.Info("Done writing Go trace", "dump", h.traceFile)
	err := h.traceW.Close()
	h.traceW = nil
	return err
}

// Tracing reports whether a trace is being written.
func (h *HandlerT) Tracing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.task != nil
}

// StartRegionAuto opens a trace region under the running task and returns the
// function closing it. Without a running trace the returned function is a no-op.
func (h *HandlerT) StartRegionAuto(msg string) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.task == nil {
		return func() {}
	}
	region := trace.StartRegion(h.ctx, msg)
	return region.End
}

// expandHome expands a leading ~ to the current user's home directory.
func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		home := os.Getenv("HOME")
		if home == "" {
			if usr, err := user.Current(); err == nil {
				home = usr.HomeDir
			}
		}
		if home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(p)
}
