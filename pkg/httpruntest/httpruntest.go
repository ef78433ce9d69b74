// Package httpruntest provides a test harness for applications built on
// httprun.
//
// Start runs an application on an ephemeral loopback port with a short
// shutdown deadline, waits until it is serving, and stops it when the
// test finishes:
//
//	func TestStatusEndpoint(t *testing.T) {
//		srv := httpruntest.Start(t, newApp)
//
//		resp, err := http.Get(srv.URL + "/status")
//		...
//	}
package httpruntest

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/httprun/pkg/httprun"
)

// DefaultShutdownLimit bounds graceful shutdown in tests. It is short so
// a hanging shutdown callback fails the test quickly instead of stalling
// the suite.
const DefaultShutdownLimit = 250 * time.Millisecond

// startTimeout bounds how long Start waits for the runner to serve.
const startTimeout = 5 * time.Second

// Server is a runner started for the duration of a test.
type Server struct {
	// Runner is the running instance, for stopping it early or
	// inspecting its state.
	Runner *httprun.Runner

	// URL is the base URL of the served application, in the form
	// http://127.0.0.1:port with no trailing slash.
	URL string

	runErr   <-chan error
	stopOnce sync.Once
}

// Start runs factory's application on an ephemeral loopback port and
// blocks until it is serving. The runner uses DefaultShutdownLimit and a
// single worker; additional options are applied after these defaults and
// override them. The runner is stopped when the test finishes, and the
// test fails if it did not shut down cleanly.
func Start(t *testing.T, factory httprun.Factory, opts ...httprun.Option) *Server {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("httpruntest: listen: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })

	all := append([]httprun.Option{
		httprun.WithSettings(httprun.Settings{
			Port:            httprun.DefaultPort,
			Workers:         1,
			ShutdownTimeout: DefaultShutdownLimit,
		}),
		httprun.WithListener(l),
	}, opts...)

	runner, err := httprun.New(factory, all...)
	if err != nil {
		t.Fatalf("httpruntest: create runner: %v", err)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- runner.Run(context.Background()) }()

	srv := &Server{
		Runner: runner,
		URL:    "http://" + l.Addr().String(),
		runErr: runErr,
	}

	deadline := time.Now().Add(startTimeout)
	for runner.State() != httprun.StateRunning {
		select {
		case err := <-runErr:
			t.Fatalf("httpruntest: runner exited before serving: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			t.Fatalf("httpruntest: runner still %s after %v", runner.State(), startTimeout)
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Cleanup(func() { srv.stop(t) })
	return srv
}

// Stop shuts the runner down before the test finishes. Tests only need
// this to assert on post-shutdown state; otherwise cleanup stops the
// runner automatically.
func (s *Server) Stop(t *testing.T) {
	t.Helper()
	s.stop(t)
}

func (s *Server) stop(t *testing.T) {
	t.Helper()

	s.stopOnce.Do(func() {
		err := s.Runner.Stop()
		if err != nil && !errors.Is(err, httprun.ErrNotRunning) {
			t.Errorf("httpruntest: stop runner: %v", err)
		}

		// Stop blocks until Run returns, so the short wait here only
		// guards against a runner that was never started.
		select {
		case err := <-s.runErr:
			if err != nil {
				t.Errorf("httpruntest: runner exited with error: %v", err)
			}
		case <-time.After(2*DefaultShutdownLimit + time.Second):
			t.Errorf("httpruntest: runner did not shut down")
		}
	})
}
