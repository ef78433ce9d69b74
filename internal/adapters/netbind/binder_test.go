package netbind

import (
	"context"
	"net"
	"testing"
)

func listenerPort(t *testing.T, l net.Listener) int {
	t.Helper()
	addr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		t.Fatalf("listener address type = %T, want *net.TCPAddr", l.Addr())
	}
	return addr.Port
}

func TestTCPBinder_Bind_EphemeralPort(t *testing.T) {
	b := NewTCPBinder()

	l, err := b.Bind(context.Background(), 0)
	if err != nil {
		t.Fatalf("Bind(0) error = %v", err)
	}
	defer l.Close()

	if port := listenerPort(t, l); port == 0 {
		t.Error("Bind(0) assigned port 0, want an ephemeral port")
	}
}

func TestTCPBinder_Bind_PortInUse(t *testing.T) {
	b := NewTCPBinder()

	l, err := b.Bind(context.Background(), 0)
	if err != nil {
		t.Fatalf("Bind(0) error = %v", err)
	}
	defer l.Close()

	// A plain second bind on the same port must fail.
	if l2, err := b.Bind(context.Background(), listenerPort(t, l)); err == nil {
		l2.Close()
		t.Error("Bind() on an occupied port succeeded, want error")
	}
}

func TestTCPBinder_BindShared_AllowsSiblings(t *testing.T) {
	b := NewTCPBinder()

	l1, err := b.BindShared(context.Background(), 0)
	if err != nil {
		t.Fatalf("BindShared(0) error = %v", err)
	}
	defer l1.Close()

	// With SO_REUSEPORT set on both sockets the second bind succeeds,
	// which is exactly what worker processes rely on.
	l2, err := b.BindShared(context.Background(), listenerPort(t, l1))
	if err != nil {
		t.Fatalf("BindShared() on shared port error = %v", err)
	}
	defer l2.Close()

	if listenerPort(t, l1) != listenerPort(t, l2) {
		t.Errorf("shared ports differ: %d and %d", listenerPort(t, l1), listenerPort(t, l2))
	}
}
