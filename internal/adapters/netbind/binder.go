package netbind

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// TCPBinder implements ports.Binder using the net package.
type TCPBinder struct{}

// NewTCPBinder creates a new TCP binder.
func NewTCPBinder() *TCPBinder {
	return &TCPBinder{}
}

// Bind creates a listener on the given port on all interfaces.
func (b *TCPBinder) Bind(ctx context.Context, port int) (net.Listener, error) {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind port %d: %w", port, err)
	}
	return l, nil
}

// BindShared creates a listener with SO_REUSEPORT set so sibling worker
// processes can bind the same port and share the accept load.
func (b *TCPBinder) BindShared(ctx context.Context, port int) (net.Listener, error) {
	lc := net.ListenConfig{Control: setReusePort}
	l, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind shared port %d: %w", port, err)
	}
	return l, nil
}

// setReusePort sets SO_REUSEPORT on the socket before bind.
func setReusePort(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
