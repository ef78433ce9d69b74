package httprun

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"syscall"

	"github.com/bft-labs/httprun/internal/adapters/httpserver"
	"github.com/bft-labs/httprun/internal/adapters/netbind"
	"github.com/bft-labs/httprun/internal/adapters/proc"
	signalAdapter "github.com/bft-labs/httprun/internal/adapters/signal"
	"github.com/bft-labs/httprun/internal/app"
	"github.com/bft-labs/httprun/internal/ports"
	"github.com/bft-labs/httprun/pkg/lifecycle"
	"github.com/bft-labs/httprun/pkg/log"
)

// Runner drives one HTTP application through its full lifecycle: bind,
// startup callbacks, serving, graceful shutdown. Use New() to create an
// instance, then Run() to serve until stopped.
type Runner struct {
	factory   Factory
	settings  Settings
	opts      options
	logger    log.Logger
	lifecycle *lifecycle.DefaultManager
	binder    ports.Binder
	signals   ports.SignalSource
	spawner   ports.ProcessSpawner
	plugins   []Plugin
	emitter   *eventEmitterWrapper

	mu      sync.Mutex
	started bool
	addr    net.Addr

	stopOnce   sync.Once
	stopReason string
	stopC      chan struct{}
	stoppedC   chan struct{}
}

// New creates a runner for the application produced by factory.
// Settings come from WithSettings, the environment and defaults, in that
// order of precedence. The runner starts in StateCreated; call Run to
// begin serving.
func New(factory Factory, opts ...Option) (*Runner, error) {
	if factory == nil {
		return nil, errors.New("httprun: nil factory")
	}

	// Validate module version compatibility
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	// Apply options
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// Resolve settings: explicit values win over the environment, the
	// environment wins over defaults.
	settings := o.settings
	if err := settings.ApplyEnv(); err != nil {
		return nil, err
	}
	settings.SetDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	return &Runner{
		factory:   factory,
		settings:  settings,
		opts:      o,
		logger:    o.logger,
		lifecycle: lifecycle.NewManager(o.logger, emitter),
		binder:    netbind.NewTCPBinder(),
		signals:   signalAdapter.NewSource(),
		spawner:   proc.NewSpawner(o.logger),
		plugins:   o.plugins,
		emitter:   emitter,
		stopC:     make(chan struct{}),
		stoppedC:  make(chan struct{}),
	}, nil
}

// Settings returns the resolved settings the runner operates with.
func (r *Runner) Settings() Settings {
	return r.settings
}

// State returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (r *Runner) State() lifecycle.State {
	return r.lifecycle.State()
}

// Addr returns the bound listener address, or nil before binding.
func (r *Runner) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addr
}

// InWorker reports whether this process is a spawned pool worker.
// Plugins that manage per-host resources use this to run only in the
// supervising process.
func InWorker() bool {
	_, ok := proc.WorkerID()
	return ok
}

// Run executes the full lifecycle and blocks until the server has
// stopped. A nil return means a graceful or deadline-forced shutdown;
// map errors to process exit codes with ExitCode. Run can be called at
// most once per runner.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.started = true
	r.mu.Unlock()

	defer close(r.stoppedC)

	if id, ok := proc.WorkerID(); ok {
		r.logger.Info("worker process starting", log.Int("worker", id))
		return r.serve(ctx, true)
	}
	if r.settings.Workers > 1 {
		return r.supervise(ctx)
	}
	return r.serve(ctx, false)
}

// Stop triggers graceful shutdown and blocks until the runner has
// stopped. Stopping a runner that is already shutting down just waits;
// stopping one that never started returns ErrNotRunning.
func (r *Runner) Stop() error {
	switch {
	case r.lifecycle.CanStop():
		r.requestStop("Stop() called")
	case r.lifecycle.State() == lifecycle.StateShuttingDown:
	default:
		return ErrNotRunning
	}
	<-r.stoppedC
	return nil
}

// requestStop records the first stop trigger. Later triggers are no-ops.
func (r *Runner) requestStop(reason string) {
	r.stopOnce.Do(func() {
		r.stopReason = reason
		close(r.stopC)
	})
}

// serve runs the single-process path: every worker process and any
// single-worker runner ends up here.
func (r *Runner) serve(ctx context.Context, shared bool) error {
	application, err := r.factory(r.settings)
	if err != nil {
		_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "factory failed")
		return fmt.Errorf("create application: %w", err)
	}
	if application == nil {
		_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "factory returned nil")
		return errors.New("httprun: factory returned nil application")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.lifecycle.SetCancel(cancel)

	// Plugins attach before the listener is bound so their callbacks are
	// registered ahead of the startup stages.
	for _, p := range r.plugins {
		if err := p.Attach(runCtx, PluginContext{Runner: r, App: application, Logger: r.logger}); err != nil {
			r.logger.Error("plugin attach failed",
				log.String("plugin", p.Name()), log.Err(err))
			_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "plugin attach failed: "+p.Name())
			return fmt.Errorf("attach plugin %s: %w", p.Name(), err)
		}
		r.logger.Info("plugin attached", log.String("plugin", p.Name()))
	}

	listener, err := r.bind(ctx, shared)
	if err != nil {
		_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "bind failed")
		return err
	}
	r.setAddr(listener.Addr())
	if err := r.lifecycle.TransitionTo(lifecycle.StateBound, "listener bound"); err != nil {
		_ = listener.Close()
		return err
	}
	r.logger.Info("listening", log.String("addr", listener.Addr().String()))

	// Signals are trapped before the startup callbacks run.
	sigs := []os.Signal{syscall.SIGTERM}
	if r.settings.Debug {
		sigs = append(sigs, os.Interrupt)
	}
	sigC := r.signals.Subscribe(sigs...)
	defer r.signals.Stop()
	go func() {
		for {
			select {
			case sig := <-sigC:
				r.logger.Info("signal received, stopping", log.String("signal", sig.String()))
				r.requestStop("signal " + sig.String())
			case <-runCtx.Done():
				return
			}
		}
	}()

	if err := r.lifecycle.TransitionTo(lifecycle.StateStarting, "startup callbacks"); err != nil {
		_ = listener.Close()
		return err
	}

	rt := newRuntime(runCtx, listener.Addr(), r.lifecycle, r.logger)

	if err := r.runBeforeRun(runCtx, application, rt); err != nil {
		// Startup aborted: nothing was served, so the shutdown stage
		// does not run either.
		_ = listener.Close()
		_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "startup callback failed")
		return err
	}

	// A stop requested during startup skips serving entirely.
	select {
	case <-r.stopC:
		_ = r.lifecycle.TransitionTo(lifecycle.StateShuttingDown, r.stopReason)
		cancel()
		r.drain(application, rt, nil)
		_ = listener.Close()
		_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "stopped before serving")
		r.logger.Info("stopped")
		return nil
	default:
	}

	srv := httpserver.New(application.Handler(), r.logger)
	serveErrC := make(chan error, 1)
	go func() {
		err := srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrC <- err
			return
		}
		serveErrC <- nil
	}()

	if err := r.lifecycle.TransitionTo(lifecycle.StateRunning, "serving"); err != nil {
		_ = srv.Close()
		return err
	}

	// Dispatch on-start callbacks from a single goroutine, preserving
	// registration order.
	go r.runOnStart(runCtx, application, rt)

	var serveErr error
	serveDone := false
	select {
	case <-r.stopC:
	case serveErr = <-serveErrC:
		serveDone = true
		if serveErr != nil {
			r.logger.Error("server failed", log.Err(serveErr))
		}
		r.requestStop("server stopped")
	case <-ctx.Done():
		r.requestStop("context cancelled")
	}

	_ = r.lifecycle.TransitionTo(lifecycle.StateShuttingDown, r.stopReason)
	cancel()

	r.drain(application, rt, srv)

	if !serveDone {
		serveErr = <-serveErrC
	}

	_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "shutdown complete")
	r.logger.Info("stopped")
	return serveErr
}

// supervise runs the parent path of a multi-worker pool: probe the
// shared port, spawn the workers, forward termination to them. The
// parent serves nothing but still runs plugins and the callback stages,
// so process-level concerns like the PID file live here, not in the
// workers.
func (r *Runner) supervise(ctx context.Context) error {
	application := NewApplication(nil)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.lifecycle.SetCancel(cancel)

	for _, p := range r.plugins {
		if err := p.Attach(runCtx, PluginContext{Runner: r, App: application, Logger: r.logger}); err != nil {
			r.logger.Error("plugin attach failed",
				log.String("plugin", p.Name()), log.Err(err))
			_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "plugin attach failed: "+p.Name())
			return fmt.Errorf("attach plugin %s: %w", p.Name(), err)
		}
		r.logger.Info("plugin attached", log.String("plugin", p.Name()))
	}

	// Probe the shared port before spawning anything, so a busy port is
	// reported once from the parent rather than by every worker.
	probe, err := r.binder.BindShared(ctx, r.settings.Port)
	if err != nil {
		_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "bind failed")
		return err
	}
	_ = probe.Close()
	if err := r.lifecycle.TransitionTo(lifecycle.StateBound, "port probe ok"); err != nil {
		return err
	}

	sigC := r.signals.Subscribe(syscall.SIGTERM)
	defer r.signals.Stop()
	go func() {
		select {
		case sig := <-sigC:
			r.logger.Info("signal received, stopping", log.String("signal", sig.String()))
			r.requestStop("signal " + sig.String())
		case <-runCtx.Done():
		}
	}()
	go func() {
		select {
		case <-r.stopC:
			_ = r.lifecycle.TransitionTo(lifecycle.StateShuttingDown, r.stopReason)
			cancel()
		case <-runCtx.Done():
		}
	}()

	if err := r.lifecycle.TransitionTo(lifecycle.StateStarting, "spawning workers"); err != nil {
		return err
	}

	rt := newRuntime(runCtx, nil, r.lifecycle, r.logger)
	if err := r.runBeforeRun(runCtx, application, rt); err != nil {
		_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "startup callback failed")
		return err
	}

	supervisor := app.NewSupervisor(r.spawner, r.logger, r.settings.Workers)
	if err := r.lifecycle.TransitionTo(lifecycle.StateRunning, "supervising workers"); err != nil {
		return err
	}
	go r.runOnStart(runCtx, application, rt)

	err = supervisor.Run(runCtx)

	if r.lifecycle.State() != lifecycle.StateShuttingDown {
		_ = r.lifecycle.TransitionTo(lifecycle.StateShuttingDown, "workers exited")
	}
	r.drain(application, rt, nil)
	_ = r.lifecycle.TransitionTo(lifecycle.StateStopped, "supervisor done")
	r.logger.Info("stopped")
	return err
}

func (r *Runner) bind(ctx context.Context, shared bool) (net.Listener, error) {
	if r.opts.listener != nil {
		return r.opts.listener, nil
	}
	if shared {
		return r.binder.BindShared(ctx, r.settings.Port)
	}
	return r.binder.Bind(ctx, r.settings.Port)
}

func (r *Runner) setAddr(addr net.Addr) {
	r.mu.Lock()
	r.addr = addr
	r.mu.Unlock()
}

// runBeforeRun executes the startup callbacks sequentially. The stage
// is synchronous only; a returned Deferred is ignored with a warning.
func (r *Runner) runBeforeRun(ctx context.Context, application *Application, rt *Runtime) error {
	for i, cb := range application.Callbacks(StageBeforeRun) {
		d, err := cb(ctx, application, rt)
		if err == nil && d != nil {
			r.logger.Warn("startup callback returned a deferred, ignoring",
				log.Int("index", i))
		}
		if err != nil {
			r.logger.Error("startup callback cancelled start",
				log.Int("index", i), log.Err(err))
			r.emitter.emitCallbackError(StageBeforeRun, i, err)
			return &CallbackError{Stage: StageBeforeRun, Index: i, Err: err}
		}
	}
	return nil
}

// runOnStart dispatches the start callbacks in order. Failures are
// logged and do not stop the server; deferred results are not awaited.
func (r *Runner) runOnStart(ctx context.Context, application *Application, rt *Runtime) {
	for i, cb := range application.Callbacks(StageOnStart) {
		if ctx.Err() != nil {
			return
		}
		if _, err := cb(ctx, application, rt); err != nil {
			r.logger.Error("start callback failed", log.Int("index", i), log.Err(err))
			r.emitter.emitCallbackError(StageOnStart, i, err)
		}
	}
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"lifecycle": {lifecycle.Version, lifecycle.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}

	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	// Parse versions (simplified semver comparison)
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
