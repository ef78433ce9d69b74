package httprun

import (
	"net"

	logAdapter "github.com/bft-labs/httprun/internal/adapters/log"
	"github.com/bft-labs/httprun/pkg/lifecycle"
	"github.com/bft-labs/httprun/pkg/log"
)

// Re-export types from sub-packages for convenient access.
// Users can also import sub-packages directly for selective import.
type (
	// State is a lifecycle state from pkg/lifecycle.
	State = lifecycle.State

	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger

	// LogField is the structured log field type from pkg/log.
	LogField = log.Field
)

// Lifecycle states a Runner moves through.
const (
	StateCreated      = lifecycle.StateCreated
	StateBound        = lifecycle.StateBound
	StateStarting     = lifecycle.StateStarting
	StateRunning      = lifecycle.StateRunning
	StateShuttingDown = lifecycle.StateShuttingDown
	StateStopped      = lifecycle.StateStopped
)

// Option configures optional behavior of a Runner.
type Option func(*options)

// options holds the optional configuration for a Runner.
type options struct {
	settings     Settings
	logger       log.Logger
	eventHandler EventHandler
	plugins      []Plugin
	listener     net.Listener
}

// defaultOptions returns options with sensible defaults. The runner is
// silent unless WithLogger provides a logger.
func defaultOptions() options {
	return options{
		logger: logAdapter.NewNoopLogger(),
	}
}

// WithSettings sets the runner settings. Zero fields are still filled
// from the environment and defaults.
func WithSettings(settings Settings) Option {
	return func(o *options) {
		o.settings = settings
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for runner events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to attach when the runner starts.
// Plugins attach in registration order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithListener serves on l instead of binding the configured port.
// Intended for tests and embedders that manage their own sockets.
func WithListener(l net.Listener) Option {
	return func(o *options) {
		o.listener = l
	}
}
