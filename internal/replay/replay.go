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

package replay

import (
	"github.com/pkg/errors"

	"github.com/stackvis/stackvis/common/gopool"
	"github.com/stackvis/stackvis/core/stackview"
	"github.com/stackvis/stackvis/core/tracing"
	"github.com/stackvis/stackvis/log"
)

// Anomaly is a soft failure the stack view reported during a replay.
type Anomaly struct {
	Step  int
	Event tracing.Event
	Err   error
}

// Result is the outcome of one replay.
type Result struct {
	Name      string
	Engine    *stackview.Engine
	Machine   *Machine
	Events    int // Events delivered to the stack view
	Updates   int // Slot updates it produced
	Anomalies []Anomaly
}

// Run replays trace into a fresh stack view. The trace's own layout, if any,
// overrides the one in config.
func Run(trace *Trace, config *stackview.Config) (*Result, error) {
	cfg := *config
	if cfg.Memory == nil {
		cfg.Memory = stackview.Defaults.Memory
	}
	cfg.Memory = trace.MemoryConfig(cfg.Memory)

	machine, err := NewMachine(cfg.Memory, trace)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", trace.Name)
	}
	engine, err := stackview.New(&cfg, machine.Backend())
	if err != nil {
		return nil, errors.Wrapf(err, "start %s", trace.Name)
	}
	res := &Result{Name: trace.Name, Engine: engine, Machine: machine}

	step := -1
	machine.Subscribe(func(ev tracing.Event) {
		res.Events++
		updates, err := engine.Handle(ev)
		res.Updates += len(updates)
		if err != nil {
			res.Anomalies = append(res.Anomalies, Anomaly{Step: step, Event: ev, Err: err})
		}
	})
	if err := engine.Reset(); err != nil {
		return nil, errors.Wrap(err, "initial stack load")
	}
	for i := range trace.Steps {
		step = i
		if err := res.apply(&trace.Steps[i]); err != nil {
			return res, errors.Wrapf(err, "%s step %d", trace.Name, i)
		}
	}
	log.Debug("Replayed trace", "name", trace.Name, "steps", len(trace.Steps), "events", res.Events,
		"updates", res.Updates, "anomalies", len(res.Anomalies), "session", engine.Session())
	return res, nil
}

func (r *Result) apply(step *Step) error {
	m := r.Machine
	switch {
	case step.Fetch != nil:
		m.Fetch(*step.Fetch)
	case step.Read != nil:
		_, err := m.Load(step.Read.Addr, step.Read.Len)
		return err
	case step.Write != nil:
		return m.Store(step.Write.Addr, step.Write.Value, step.Write.Len)
	case step.Reg != nil:
		return m.SetRegister(step.Reg.Name, step.Reg.Value)
	case step.Reset:
		return r.Engine.Reset()
	}
	return nil
}

// RunFile loads and replays one trace file.
func RunFile(path string, config *stackview.Config) (*Result, error) {
	trace, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Run(trace, config)
}

// Outcome is the result of replaying one file of a batch.
type Outcome struct {
	Path   string
	Result *Result
	Err    error
}

// RunFiles replays independent trace files on up to workers goroutines.
// Outcomes are in the order of paths.
func RunFiles(paths []string, config *stackview.Config, workers int) ([]Outcome, error) {
	if workers <= 0 {
		workers = gopool.Threads(len(paths))
	}
	pool, err := gopool.New(workers)
	if err != nil {
		return nil, errors.Wrap(err, "replay pool")
	}
	defer pool.Release()

	outcomes := make([]Outcome, len(paths))
	for i, path := range paths {
		i, path := i, path
		outcomes[i].Path = path
		if err := pool.Submit(func() {
			outcomes[i].Result, outcomes[i].Err = RunFile(path, config)
		}); err != nil {
			outcomes[i].Err = err
		}
	}
	pool.Wait()
	return outcomes, nil
}
