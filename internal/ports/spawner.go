package ports

import (
	"context"
	"os"
)

// WorkerProcess is a handle to one spawned worker process.
type WorkerProcess interface {
	// PID returns the operating system process id.
	PID() int

	// Signal sends a signal to the process.
	Signal(sig os.Signal) error

	// Wait blocks until the process exits and returns its exit code.
	// The error is non-nil only when waiting itself failed, not when
	// the process exited non-zero.
	Wait() (int, error)
}

// ProcessSpawner starts worker processes.
// Implementations re-execute the current binary with a worker marker in
// the environment so the child takes the single-process serving path.
type ProcessSpawner interface {
	// Spawn starts the worker with the given id (zero-based).
	Spawn(ctx context.Context, id int) (WorkerProcess, error)
}
