package ports

import (
	"context"
	"net"
)

// Binder produces listening sockets for the runner.
// Implementations bind TCP listeners from a port number.
type Binder interface {
	// Bind creates a listener on the given port on all interfaces.
	// Port 0 requests an ephemeral port.
	Bind(ctx context.Context, port int) (net.Listener, error)

	// BindShared creates a listener on the given port with the kernel's
	// port-sharing option set, so sibling worker processes can bind the
	// same port and have the kernel distribute connections among them.
	BindShared(ctx context.Context, port int) (net.Listener, error)
}
