package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned for a result that finished after a newer
	// evaluation had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
	// errDetached stops a timed out script from realizing more nodes.
	errDetached = errors.New("document detached after timeout")
)

// outcome is what the evaluation goroutine hands back to Evaluate.
type outcome struct {
	result *Result
	errors []EvalError
	err    error
}

// gate guards document writes made by a running script. Once closed, the
// script keeps running but can no longer realize anything.
type gate struct {
	mu     sync.Mutex
	closed bool
}

// enter holds the gate for one write. It reports false, without holding
// anything, when the gate is closed.
func (g *gate) enter() bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	return true
}

func (g *gate) leave() { g.mu.Unlock() }

// close waits for a write in progress, then shuts the gate.
func (g *gate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

// run is one evaluation in flight.
type run struct {
	gen     uint64
	timeout time.Duration
	done    chan outcome
	gate    *gate
}

func newRun(gen uint64, timeout time.Duration) *run {
	return &run{gen: gen, timeout: timeout, done: make(chan outcome, 1), gate: &gate{}}
}

// await waits for r to finish. On timeout the run's gate is closed so the
// abandoned script leaves the document as it is; the goroutine itself is not
// stopped. A result that arrives after a newer run started is discarded.
func (e *Engine) await(r *run) (*Result, []EvalError, error) {
	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case out := <-r.done:
		e.mu.Lock()
		stale := e.generation != r.gen
		e.mu.Unlock()
		if stale {
			return nil, nil, ErrSuperseded
		}
		return out.result, out.errors, out.err
	case <-timer.C:
		r.gate.close()
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
	}
}
