package httprun

import (
	"context"
	"time"

	"github.com/bft-labs/httprun/internal/ports"
	"github.com/bft-labs/httprun/pkg/log"
)

// drain performs graceful shutdown: stop accepting connections, run the
// shutdown callbacks sequentially, then wait for tracked goroutines.
// Every step is bounded by the shutdown deadline; when the deadline
// passes the remaining work is abandoned and the server is closed hard.
func (r *Runner) drain(application *Application, rt *Runtime, srv ports.ServeRuntime) {
	deadline := time.Now().Add(r.settings.ShutdownTimeout)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	r.logger.Info("stopping", log.Duration("timeout", r.settings.ShutdownTimeout))

	// The server drains in-flight requests while the callbacks run; both
	// share the deadline.
	var srvDone chan error
	if srv != nil {
		srvDone = make(chan error, 1)
		go func() { srvDone <- srv.Shutdown(ctx) }()
	}

	callbacks := application.Callbacks(StageOnShutdown)
	for i, cb := range callbacks {
		if !r.runShutdownCallback(ctx, i, cb, application, rt) {
			r.logger.Warn("shutdown abandoned",
				log.Int("completed", i),
				log.Int("registered", len(callbacks)))
			if srv != nil {
				_ = srv.Close()
			}
			return
		}
	}

	if err := r.lifecycle.WaitWithTimeout(time.Until(deadline)); err != nil {
		r.logger.Warn("shutdown abandoned", log.Err(err))
	}

	if srv != nil {
		select {
		case err := <-srvDone:
			if err != nil {
				r.logger.Warn("server shutdown incomplete", log.Err(err))
				_ = srv.Close()
			}
		case <-ctx.Done():
			r.logger.Warn("server shutdown incomplete", log.Err(ctx.Err()))
			_ = srv.Close()
		}
	}
}

// runShutdownCallback invokes one shutdown callback, bounded by ctx. The
// callback runs in its own goroutine so a blocking callback cannot wedge
// the drain. Reports false when the deadline expired first.
func (r *Runner) runShutdownCallback(ctx context.Context, index int, cb Callback, application *Application, rt *Runtime) bool {
	type result struct {
		d   *Deferred
		err error
	}
	resC := make(chan result, 1)
	go func() {
		d, err := cb(ctx, application, rt)
		resC <- result{d: d, err: err}
	}()

	select {
	case res := <-resC:
		if res.err != nil {
			r.logger.Error("shutdown callback failed",
				log.Int("index", index), log.Err(res.err))
			r.emitter.emitCallbackError(StageOnShutdown, index, res.err)
			return true
		}
		if res.d == nil {
			return true
		}
		// Await only work the callback actually left pending.
		select {
		case <-res.d.Done():
			if err := res.d.Err(); err != nil {
				r.logger.Error("shutdown callback failed",
					log.Int("index", index), log.Err(err))
				r.emitter.emitCallbackError(StageOnShutdown, index, err)
			}
			return true
		case <-ctx.Done():
			return false
		}
	case <-ctx.Done():
		return false
	}
}
