// Package lifecycle provides the state machine that sequences a runner
// process from construction to termination.
//
// This package manages the lifecycle of a served application, including
// state transitions (Created, Bound, Starting, Running, ShuttingDown,
// Stopped), graceful shutdown with timeout, and worker coordination.
//
// # Usage
//
// Create a lifecycle manager:
//
//	manager := lifecycle.NewManager(logger, eventEmitter)
//
//	if err := manager.TransitionTo(lifecycle.StateBound, "application built"); err != nil {
//	    return err
//	}
//
//	// ... do work in goroutines tracked via AddWorker/WorkerDone ...
//
//	// Graceful shutdown
//	if err := manager.WaitWithTimeout(5 * time.Second); err != nil {
//	    return ErrShutdownTimeout
//	}
//
// # State Machine
//
// States are strictly ordered and never revisited. Valid transitions:
//   - Created -> Bound, Stopped
//   - Bound -> Starting, Stopped
//   - Starting -> Running, ShuttingDown, Stopped
//   - Running -> ShuttingDown
//   - ShuttingDown -> Stopped
//
// The Stopped edges out of Created and Starting are abort paths: a failed
// application factory, bind failure, or failed before-run callback lands
// directly in the terminal state without passing through ShuttingDown,
// because ShuttingDown implies a shutdown-callback drain that must not run
// after a failed startup. ShuttingDown is entered at most once.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package lifecycle
