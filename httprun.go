// Package httprun runs long-lived HTTP services: ordered startup
// callbacks, signal handling, and a graceful shutdown bounded by a
// deadline.
//
// Example usage:
//
//	factory := func(settings httprun.Settings) (*httprun.Application, error) {
//	    mux := http.NewServeMux()
//	    mux.HandleFunc("GET /healthz", healthz)
//	    app := httprun.NewApplication(mux)
//	    app.BeforeRun(openDatabase)
//	    app.OnShutdown(closeDatabase)
//	    return app, nil
//	}
//	httprun.Main(factory)
//
// This package is a thin facade over pkg/httprun; import that package
// directly for the full API surface.
package httprun

import (
	"context"
	"fmt"
	"net/http"
	"os"

	run "github.com/bft-labs/httprun/pkg/httprun"
)

// Re-export the core types for convenient access.
type (
	// Runner drives one HTTP application through its full lifecycle.
	Runner = run.Runner

	// Application pairs an HTTP handler with its lifecycle callbacks.
	Application = run.Application

	// Factory builds the application a runner serves.
	Factory = run.Factory

	// Settings configures a runner.
	Settings = run.Settings

	// Option configures optional behavior of a Runner.
	Option = run.Option

	// Callback is a lifecycle hook registered on an Application.
	Callback = run.Callback

	// Deferred reports completion of work a callback left pending.
	Deferred = run.Deferred

	// Runtime is the serving-process handle passed to callbacks.
	Runtime = run.Runtime

	// Stage identifies the lifecycle point a callback is registered for.
	Stage = run.Stage

	// CallbackError reports which callback aborted startup.
	CallbackError = run.CallbackError

	// Plugin extends a runner with reusable lifecycle behavior.
	Plugin = run.Plugin

	// PluginContext is the state handed to a plugin when it attaches.
	PluginContext = run.PluginContext

	// State is a lifecycle state.
	State = run.State
)

// Lifecycle states a Runner moves through.
const (
	StateCreated      = run.StateCreated
	StateBound        = run.StateBound
	StateStarting     = run.StateStarting
	StateRunning      = run.StateRunning
	StateShuttingDown = run.StateShuttingDown
	StateStopped      = run.StateStopped
)

// Callback stages.
const (
	StageBeforeRun  = run.StageBeforeRun
	StageOnStart    = run.StageOnStart
	StageOnShutdown = run.StageOnShutdown
)

// Process exit codes reported by ExitCode.
const (
	ExitOK       = run.ExitOK
	ExitFailure  = run.ExitFailure
	ExitSoftware = run.ExitSoftware
)

var (
	// ErrAlreadyRunning is returned by Run when the runner was already
	// started.
	ErrAlreadyRunning = run.ErrAlreadyRunning

	// ErrNotRunning is returned by Stop when there is nothing to stop.
	ErrNotRunning = run.ErrNotRunning
)

// Options forwarded from pkg/httprun.
var (
	WithSettings     = run.WithSettings
	WithLogger       = run.WithLogger
	WithEventHandler = run.WithEventHandler
	WithPlugin       = run.WithPlugin
	WithListener     = run.WithListener
)

// New creates a runner for the application produced by factory.
func New(factory Factory, opts ...Option) (*Runner, error) {
	return run.New(factory, opts...)
}

// NewApplication wraps handler in an Application ready for callback
// registration.
func NewApplication(handler http.Handler) *Application {
	return run.NewApplication(handler)
}

// NewDeferred creates a pending Deferred for a callback to hand back.
func NewDeferred() *Deferred {
	return run.NewDeferred()
}

// Run builds a runner for factory and serves until it stops. A nil
// return means a graceful shutdown.
func Run(ctx context.Context, factory Factory, opts ...Option) error {
	runner, err := run.New(factory, opts...)
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}

// Main serves factory and exits the process with the code ExitCode maps
// for the outcome. It is the whole main function for the common case.
func Main(factory Factory, opts ...Option) {
	err := Run(context.Background(), factory, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(ExitCode(err))
}

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	return run.ExitCode(err)
}
