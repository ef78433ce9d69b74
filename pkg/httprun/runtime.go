package httprun

import (
	"context"
	"net"

	"github.com/bft-labs/httprun/pkg/lifecycle"
	"github.com/bft-labs/httprun/pkg/log"
)

// Runtime is the handle callbacks receive for interacting with the
// running server process.
type Runtime struct {
	ctx    context.Context
	addr   net.Addr
	lc     lifecycle.Manager
	logger log.Logger
}

func newRuntime(ctx context.Context, addr net.Addr, lc lifecycle.Manager, logger log.Logger) *Runtime {
	return &Runtime{ctx: ctx, addr: addr, lc: lc, logger: logger}
}

// Addr returns the bound listener address.
func (rt *Runtime) Addr() net.Addr {
	return rt.addr
}

// Context returns a context that is cancelled when shutdown begins.
// Background work started from callbacks should watch it.
func (rt *Runtime) Context() context.Context {
	return rt.ctx
}

// Logger returns the runner's logger.
func (rt *Runtime) Logger() log.Logger {
	return rt.logger
}

// Go runs fn in a goroutine tracked by the runner. Graceful shutdown
// waits for tracked goroutines, up to the shutdown deadline. The context
// passed to fn is cancelled when shutdown begins.
func (rt *Runtime) Go(fn func(ctx context.Context)) {
	rt.lc.AddWorker()
	go func() {
		defer rt.lc.WorkerDone()
		fn(rt.ctx)
	}()
}
