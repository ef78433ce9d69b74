package httprun

import (
	"context"
	"sync"
)

// Stage identifies one of the three points in the server lifecycle where
// registered callbacks run.
type Stage int

const (
	// StageBeforeRun callbacks run synchronously after the listener is
	// bound and before serving starts. An error from any of them aborts
	// startup.
	StageBeforeRun Stage = iota

	// StageOnStart callbacks are dispatched in registration order once
	// the server is serving. They are not awaited; failures are logged.
	StageOnStart

	// StageOnShutdown callbacks run sequentially during graceful
	// shutdown, each bounded by the remaining shutdown deadline.
	StageOnShutdown
)

// String returns a human-readable representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageBeforeRun:
		return "before-run"
	case StageOnStart:
		return "on-start"
	case StageOnShutdown:
		return "on-shutdown"
	default:
		return "unknown"
	}
}

// Callback is a lifecycle hook registered on an Application. A nil
// Deferred return means the callback finished synchronously. A non-nil
// Deferred reports completion of work the callback left in flight;
// only shutdown callbacks are awaited through it. Start callbacks are
// fire-and-forget and a before-run callback must finish its work before
// returning.
type Callback func(ctx context.Context, app *Application, rt *Runtime) (*Deferred, error)

// Deferred reports completion of work a callback left pending. The
// callback creates it with NewDeferred, hands it back to the runner and
// calls Complete when the work finishes.
type Deferred struct {
	done chan struct{}
	once sync.Once
	err  error
}

// NewDeferred creates a pending Deferred.
func NewDeferred() *Deferred {
	return &Deferred{done: make(chan struct{})}
}

// Complete marks the deferred work finished with the given error.
// Only the first call takes effect.
func (d *Deferred) Complete(err error) {
	d.once.Do(func() {
		d.err = err
		close(d.done)
	})
}

// Done returns a channel that is closed when the work completes.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Err returns the completion error. It returns nil while the work is
// still pending.
func (d *Deferred) Err() error {
	select {
	case <-d.done:
		return d.err
	default:
		return nil
	}
}
