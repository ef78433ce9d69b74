package httprun

import (
	"errors"
	"fmt"
)

// Process exit codes reported by ExitCode.
const (
	// ExitOK is the code after a normal shutdown, including one forced
	// by the shutdown deadline.
	ExitOK = 0

	// ExitFailure is the code when the server could not start: the
	// factory failed, the port could not be bound, or the worker pool
	// collapsed.
	ExitFailure = 1

	// ExitSoftware is the code when a startup callback aborts the run.
	ExitSoftware = 70
)

var (
	// ErrAlreadyRunning is returned by Run when the runner was already
	// started.
	ErrAlreadyRunning = errors.New("httprun: already running")

	// ErrNotRunning is returned by Stop when there is nothing to stop.
	ErrNotRunning = errors.New("httprun: not running")
)

// CallbackError reports a callback failure, identifying the stage and
// the registration index of the callback that failed.
type CallbackError struct {
	Stage Stage
	Index int
	Err   error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("httprun: %s callback %d: %v", e.Stage, e.Index, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cbErr *CallbackError
	if errors.As(err, &cbErr) && cbErr.Stage == StageBeforeRun {
		return ExitSoftware
	}
	return ExitFailure
}
