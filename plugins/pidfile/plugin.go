// Package pidfile writes the runner's PID to a file for process
// managers. The file is written before the server starts serving and
// removed during graceful shutdown.
package pidfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/bft-labs/httprun/pkg/httprun"
	"github.com/bft-labs/httprun/pkg/log"
)

// Plugin implements PID file management.
// Startup fails if the file names a live process, so two instances
// never run against the same PID file.
type Plugin struct {
	path   string
	logger log.Logger
}

// Config holds configuration options for the PID file plugin.
type Config struct {
	// Path is where the PID file is written.
	// Default: httprun.pid in the working directory
	Path string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path: "httprun.pid",
	}
}

// New creates a new PID file plugin with the given configuration.
func New(cfg Config) *Plugin {
	return &Plugin{path: cfg.Path}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "pidfile"
}

// Attach registers the write and remove callbacks on the application.
// Worker processes skip the plugin; the file belongs to the process the
// operator started.
func (p *Plugin) Attach(ctx context.Context, pc httprun.PluginContext) error {
	p.logger = pc.Logger

	if p.path == "" {
		p.logger.Warn("pid file disabled: no path configured")
		return nil
	}
	if httprun.InWorker() {
		p.logger.Debug("pid file skipped in worker process")
		return nil
	}

	pc.App.BeforeRun(func(ctx context.Context, app *httprun.Application, rt *httprun.Runtime) (*httprun.Deferred, error) {
		return nil, p.write()
	})
	pc.App.OnShutdown(func(ctx context.Context, app *httprun.Application, rt *httprun.Runtime) (*httprun.Deferred, error) {
		return nil, p.remove()
	})
	return nil
}

// write creates the PID file, replacing it only if the recorded process
// is gone.
func (p *Plugin) write() error {
	if old, err := os.ReadFile(p.path); err == nil {
		pid, perr := strconv.Atoi(strings.TrimSpace(string(old)))
		if perr == nil && pid > 0 && pid != os.Getpid() {
			if processAlive(pid) {
				return fmt.Errorf("pidfile: %s held by running process %d", p.path, pid)
			}
			p.logger.Warn("removing stale pid file",
				log.String("path", p.path),
				log.Int("pid", pid))
		}
	}

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pidfile: create directory: %w", err)
		}
	}

	// Write to temp file, then rename, so readers never see a partial
	// PID.
	tmp := p.path + ".tmp"
	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("pidfile: write: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("pidfile: write: %w", err)
	}

	p.logger.Info("pid file written",
		log.String("path", p.path),
		log.Int("pid", os.Getpid()))
	return nil
}

// remove deletes the PID file if it still holds this process's PID.
func (p *Plugin) remove() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.logger.Warn("pid file unreadable on shutdown", log.Err(err))
		}
		return nil
	}

	pid, perr := strconv.Atoi(strings.TrimSpace(string(data)))
	if perr != nil || pid != os.Getpid() {
		p.logger.Warn("pid file no longer ours, leaving it",
			log.String("path", p.path))
		return nil
	}

	if err := os.Remove(p.path); err != nil {
		return fmt.Errorf("pidfile: remove: %w", err)
	}
	p.logger.Info("pid file removed", log.String("path", p.path))
	return nil
}

// processAlive reports whether a process with the given PID exists,
// using the null signal. EPERM still means the process exists.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// Ensure Plugin implements httprun.Plugin.
var _ httprun.Plugin = (*Plugin)(nil)
