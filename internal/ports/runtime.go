package ports

import (
	"context"
	"net"
)

// ServeRuntime drives the accept loop for a bound listener.
// The standard *http.Server satisfies this interface.
type ServeRuntime interface {
	// Serve accepts connections on the listener until Shutdown or Close
	// is called. It blocks and always returns a non-nil error; after a
	// graceful Shutdown the error is http.ErrServerClosed.
	Serve(l net.Listener) error

	// Shutdown stops accepting new connections and waits for in-flight
	// requests to complete, or for the context to expire.
	Shutdown(ctx context.Context) error

	// Close immediately closes the listener and all active connections.
	Close() error
}
