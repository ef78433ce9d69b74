package configwatcher

import "github.com/bft-labs/httprun/pkg/httprun"

// WithConfigWatcher returns a runner Option that stops the server
// gracefully when the watched file changes, so a process manager
// restarts it with fresh configuration.
//
// Usage:
//
//	runner, err := httprun.New(factory,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/myapp/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) httprun.Option {
	plugin := New(cfg)
	return httprun.WithPlugin(plugin)
}

// WithWatchedFile returns a runner Option that watches path with
// default settings (debounce 100ms).
//
// Usage:
//
//	runner, err := httprun.New(factory, configwatcher.WithWatchedFile(path))
func WithWatchedFile(path string) httprun.Option {
	cfg := DefaultConfig()
	cfg.Path = path
	return WithConfigWatcher(cfg)
}
