package pidfile

import "github.com/bft-labs/httprun/pkg/httprun"

// WithPIDFile returns a runner Option that writes a PID file while the
// server runs. Startup fails if the file names a live process.
//
// Usage:
//
//	runner, err := httprun.New(factory,
//	    pidfile.WithPIDFile(pidfile.Config{
//	        Path: "/var/run/myapp.pid",
//	    }),
//	)
func WithPIDFile(cfg Config) httprun.Option {
	plugin := New(cfg)
	return httprun.WithPlugin(plugin)
}

// WithDefaultPIDFile returns a runner Option that writes httprun.pid in
// the working directory.
//
// Usage:
//
//	runner, err := httprun.New(factory, pidfile.WithDefaultPIDFile())
func WithDefaultPIDFile() httprun.Option {
	return WithPIDFile(DefaultConfig())
}
