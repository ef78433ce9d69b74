// Package httprun runs long-lived HTTP services with deterministic
// startup and shutdown.
//
// A runner binds the listening port, executes registered startup
// callbacks, serves HTTP traffic and, on a termination signal or an
// explicit stop, drains the server within a bounded deadline. It can
// serve from a single process or supervise a pool of worker processes
// sharing one port.
//
// # Basic Usage
//
// Give the runner a factory that builds your application:
//
//	factory := func(settings httprun.Settings) (*httprun.Application, error) {
//	    app := httprun.NewApplication(myHandler())
//	    app.OnShutdown(func(ctx context.Context, app *httprun.Application, rt *httprun.Runtime) (*httprun.Deferred, error) {
//	        return nil, db.Close()
//	    })
//	    return app, nil
//	}
//
//	runner, err := httprun.New(factory)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = runner.Run(context.Background())
//	os.Exit(httprun.ExitCode(err))
//
// # Settings
//
// Create [Settings] and pass them via [WithSettings]. Unset fields are
// filled from the PORT, DEBUG and NUMBER_OF_PROCS environment variables,
// then from defaults; see [Settings.ApplyEnv] and [Settings.SetDefaults].
//
// # Callbacks
//
// Three stages hook into the lifecycle. [Application.BeforeRun]
// callbacks run synchronously before serving and abort startup on error.
// [Application.OnStart] callbacks are dispatched in order once the
// server is live and are not awaited. [Application.OnShutdown] callbacks
// run sequentially during graceful shutdown, each bounded by the
// shutdown deadline; a callback that leaves work in flight hands back a
// [Deferred] for the runner to await.
//
// # Lifecycle States
//
// A runner moves monotonically through [lifecycle.StateCreated],
// [lifecycle.StateBound], [lifecycle.StateStarting],
// [lifecycle.StateRunning], [lifecycle.StateShuttingDown] and
// [lifecycle.StateStopped]. Use [Runner.State] to query the current
// state and [WithEventHandler] to observe transitions.
//
// # Worker Pools
//
// With Workers above one the parent process probes the port, spawns that
// many worker processes serving on a shared socket and restarts workers
// that crash. Debug mode always serves from a single process.
//
// # Plugins
//
// Plugins package reusable callback sets:
//
//	import "github.com/bft-labs/httprun/plugins/pidfile"
//	import "github.com/bft-labs/httprun/plugins/configwatcher"
//
//	runner, err := httprun.New(factory,
//	    pidfile.WithDefaultPIDFile(),
//	    configwatcher.WithWatchedFile("/etc/myapp/config.toml"),
//	)
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules.
package httprun
