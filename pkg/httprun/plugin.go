package httprun

import (
	"context"

	"github.com/bft-labs/httprun/pkg/log"
)

// PluginContext is handed to a plugin when it attaches to a runner.
type PluginContext struct {
	// Runner is the runner the plugin is attached to. Plugins may call
	// Stop on it to trigger graceful shutdown, but never from inside a
	// shutdown callback.
	Runner *Runner

	// App is the application being served. Plugins register their
	// callbacks against it.
	App *Application

	// Logger is the runner's logger.
	Logger log.Logger
}

// Plugin extends a runner with optional behavior. Attach runs after the
// application is created and before the listener is bound; plugins
// typically register callbacks on the application. An Attach error
// aborts startup.
type Plugin interface {
	Name() string
	Attach(ctx context.Context, pc PluginContext) error
}

// BasePlugin provides a Name implementation and a no-op Attach. Embed it
// when only part of the plugin surface is needed.
type BasePlugin struct {
	name string
}

// NewBasePlugin creates a BasePlugin with the given name.
func NewBasePlugin(name string) BasePlugin {
	return BasePlugin{name: name}
}

// Name returns the plugin name.
func (p BasePlugin) Name() string { return p.name }

// Attach is a no-op.
func (p BasePlugin) Attach(context.Context, PluginContext) error { return nil }
