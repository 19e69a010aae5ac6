// Package worker drives the physics stepper on a background goroutine,
// appending one committed record per step to the shared telemetry store and
// honoring start/pause/stop commands between records.
package worker

import (
	"fmt"
	"sync"

	"github.com/san-kum/racesim/internal/telemetry"
)

// State is the worker lifecycle state.
type State int32

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Stepper computes one simulation step. done reports that the run is over
// (no further records will be produced).
type Stepper interface {
	Step() (rec telemetry.Record, done bool, err error)
}

// Worker owns the write side of a telemetry store for the lifetime of one
// run. Control methods are idempotent: commands with no defined transition
// are no-ops. Stop is terminal.
type Worker struct {
	store   *telemetry.Store
	stepper Stepper
	status  chan string
	done    chan struct{}

	mu      sync.Mutex
	cond    *sync.Cond
	state   State
	started bool
}

// New returns an idle worker writing into store.
func New(store *telemetry.Store, stepper Stepper) *Worker {
	w := &Worker{
		store:   store,
		stepper: stepper,
		status:  make(chan string, 1),
		done:    make(chan struct{}),
		state:   Idle,
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Start launches the run loop, or resumes a paused one. Calling Start while
// already running or after Stop is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	switch w.state {
	case Idle:
		w.state = Running
		w.started = true
		go w.run()
	case Paused:
		w.state = Running
		w.cond.Broadcast()
	default:
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	w.publish("running")
}

// Pause suspends the loop between records. No-op unless running.
func (w *Worker) Pause() {
	w.mu.Lock()
	if w.state != Running {
		w.mu.Unlock()
		return
	}
	w.state = Paused
	w.mu.Unlock()
	w.publish("paused")
}

// Stop ends the run from any state. The loop finishes its in-flight record
// before exiting, so the store never ends on a partial commit. Terminal.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.state == Stopped {
		w.mu.Unlock()
		return
	}
	started := w.started
	w.state = Stopped
	w.started = true // Wait must not return early once stopped
	w.cond.Broadcast()
	w.mu.Unlock()
	if !started {
		close(w.done) // loop never launched, nothing to join
	}
	w.publish("stopped")
}

// Wait blocks until the run loop has exited. Returns immediately for a
// worker that was never started.
func (w *Worker) Wait() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if !started {
		return
	}
	<-w.done
}

// State returns the current lifecycle state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Status is a best-effort feed of state change messages. Queue depth is one
// and newer messages overwrite unread older ones, so a slow consumer always
// sees the latest transition.
func (w *Worker) Status() <-chan string {
	return w.status
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for w.state == Paused {
			w.cond.Wait()
		}
		if w.state != Running {
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()

		rec, finished, err := w.stepper.Step()
		if err != nil {
			w.terminate(fmt.Sprintf("error: %v", err))
			return
		}

		// One full record per step: begin, write every series, commit.
		// The commit is the only visibility point, and control requests
		// are only honored after it, never mid-record.
		i := w.store.BeginRecord()
		for _, s := range telemetry.AllSeries() {
			w.store.WriteField(i, s, rec.Field(s))
		}
		w.store.CommitRecord()

		if finished {
			w.terminate("finished")
			return
		}
	}
}

// terminate moves the loop to Stopped from inside run.
func (w *Worker) terminate(msg string) {
	w.mu.Lock()
	already := w.state == Stopped
	w.state = Stopped
	w.mu.Unlock()
	if !already {
		w.publish(msg)
	}
}

// publish delivers a status message latest-value-wins.
func (w *Worker) publish(msg string) {
	for {
		select {
		case w.status <- msg:
			return
		default:
			select {
			case <-w.status:
			default:
			}
		}
	}
}
