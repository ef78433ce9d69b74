// Package configwatcher restarts the runner when its configuration
// changes. When the watched file is modified the plugin requests a
// graceful stop, so a process manager restarts the service with fresh
// configuration.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/httprun/pkg/httprun"
	"github.com/bft-labs/httprun/pkg/log"
)

// Plugin implements config file watching. It watches the file's
// directory rather than the file itself, because config writers replace
// the file and a watch on the old inode would be lost.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration

	// Runtime state
	runner   *httprun.Runner
	logger   log.Logger
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the configuration file to watch. Empty disables the
	// plugin.
	Path string

	// DebounceDelay is the delay to wait after a file change before
	// stopping, so a burst of writes triggers one restart.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults. Path must
// still be set for the plugin to do anything.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Attach registers a start callback that runs the watch loop. The loop
// is tracked by the runner and exits during shutdown.
func (p *Plugin) Attach(ctx context.Context, pc httprun.PluginContext) error {
	p.logger = pc.Logger
	p.runner = pc.Runner

	if p.path == "" {
		p.logger.Warn("config watcher disabled: no path configured")
		return nil
	}

	pc.App.OnStart(func(ctx context.Context, app *httprun.Application, rt *httprun.Runtime) (*httprun.Deferred, error) {
		rt.Go(p.watchLoop)
		return nil, nil
	})
	return nil
}

// watchLoop watches for config file changes until the context ends.
func (p *Plugin) watchLoop(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: create watcher failed", log.Err(err))
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		p.logger.Error("config watcher: watch failed",
			log.String("dir", dir),
			log.Err(err))
		return
	}

	p.logger.Info("config watcher started", log.String("path", p.path))

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			p.stopDebounce()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.scheduleStop()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watch error", log.Err(err))
		}
	}
}

// scheduleStop arms the debounce timer; the last change in a burst wins.
func (p *Plugin) scheduleStop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.logger.Info("config changed, stopping for restart",
			log.String("path", p.path))
		if err := p.runner.Stop(); err != nil {
			p.logger.Warn("config watcher: stop failed", log.Err(err))
		}
	})
}

func (p *Plugin) stopDebounce() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
}

// Ensure Plugin implements httprun.Plugin.
var _ httprun.Plugin = (*Plugin)(nil)
