package gopool

import (
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// minNumberPerTask is the number of tasks that justify a goroutine of their own.
var minNumberPerTask = 1

// Pool runs independent tasks, such as replay sessions, on a bounded set of
// goroutines.
type Pool struct {
	inner *ants.Pool
	wg    sync.WaitGroup
}

// New creates a pool running at most size tasks at once.
func New(size int) (*Pool, error) {
	inner, err := ants.NewPool(size, ants.WithExpiryDuration(10*time.Second))
	if err != nil {
		return nil, err
	}
	return &Pool{inner: inner}, nil
}

// Submit schedules task, blocking while the pool is saturated.
func (p *Pool) Submit(task func()) error {
	p.wg.Add(1)
	err := p.inner.Submit(func() {
		defer p.wg.Done()
		task()
	})
	if err != nil {
		p.wg.Done()
	}
	return err
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Running returns the number of the currently running goroutines.
func (p *Pool) Running() int {
	return p.inner.Running()
}

// Cap returns the capacity of the pool.
func (p *Pool) Cap() int {
	return p.inner.Cap()
}

// Release closes the pool.
func (p *Pool) Release() {
	p.inner.Release()
}

// Threads returns the number of goroutines worth spending on tasks, at most
// GOMAXPROCS.
func Threads(tasks int) int {
	procs := runtime.GOMAXPROCS(0)
	threads := tasks / minNumberPerTask
	if threads > procs {
		threads = procs
	} else if threads == 0 {
		threads = 1
	}
	return threads
}
