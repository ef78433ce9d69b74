package httprun_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bft-labs/httprun/pkg/httprun"
)

func TestStage_String(t *testing.T) {
	tests := []struct {
		stage    httprun.Stage
		expected string
	}{
		{httprun.StageBeforeRun, "before-run"},
		{httprun.StageOnStart, "on-start"},
		{httprun.StageOnShutdown, "on-shutdown"},
		{httprun.Stage(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.stage.String(); got != tc.expected {
			t.Errorf("Stage(%d).String() = %q, want %q", tc.stage, got, tc.expected)
		}
	}
}

func TestDeferred_CompleteOnce(t *testing.T) {
	d := httprun.NewDeferred()

	if err := d.Err(); err != nil {
		t.Errorf("Err() before completion = %v, want nil", err)
	}
	select {
	case <-d.Done():
		t.Fatal("Done() closed before Complete")
	default:
	}

	first := errors.New("first")
	d.Complete(first)
	d.Complete(errors.New("second"))

	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() not closed after Complete")
	}
	if got := d.Err(); got != first {
		t.Errorf("Err() = %v, want the first completion error", got)
	}
}

func TestDeferred_CompleteNil(t *testing.T) {
	d := httprun.NewDeferred()
	d.Complete(nil)

	<-d.Done()
	if err := d.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestApplication_RegisterOrder(t *testing.T) {
	app := httprun.NewApplication(nil)

	var order []string
	record := func(name string) httprun.Callback {
		return func(ctx context.Context, app *httprun.Application, rt *httprun.Runtime) (*httprun.Deferred, error) {
			order = append(order, name)
			return nil, nil
		}
	}

	app.OnShutdown(record("a"), record("b"))
	app.Register(httprun.StageOnShutdown, record("c"))
	app.Register(httprun.StageOnShutdown, nil)

	cbs := app.Callbacks(httprun.StageOnShutdown)
	if len(cbs) != 3 {
		t.Fatalf("Callbacks() returned %d callbacks, want 3", len(cbs))
	}
	for _, cb := range cbs {
		_, _ = cb(context.Background(), app, nil)
	}
	if got := fmt.Sprint(order); got != "[a b c]" {
		t.Errorf("execution order = %v, want [a b c]", order)
	}

	if n := len(app.Callbacks(httprun.StageBeforeRun)); n != 0 {
		t.Errorf("before-run stage has %d callbacks, want 0", n)
	}
}

func TestExitCode(t *testing.T) {
	beforeRun := &httprun.CallbackError{Stage: httprun.StageBeforeRun, Index: 0, Err: errors.New("boom")}
	shutdown := &httprun.CallbackError{Stage: httprun.StageOnShutdown, Index: 1, Err: errors.New("boom")}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, httprun.ExitOK},
		{"before-run callback", beforeRun, httprun.ExitSoftware},
		{"wrapped before-run callback", fmt.Errorf("run: %w", beforeRun), httprun.ExitSoftware},
		{"shutdown callback", shutdown, httprun.ExitFailure},
		{"other", errors.New("bind failed"), httprun.ExitFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := httprun.ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestCallbackError_Unwrap(t *testing.T) {
	cause := errors.New("db closed")
	err := &httprun.CallbackError{Stage: httprun.StageOnShutdown, Index: 2, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if msg := err.Error(); msg != "httprun: on-shutdown callback 2: db closed" {
		t.Errorf("Error() = %q", msg)
	}
}

func TestModuleVersions(t *testing.T) {
	versions := httprun.ModuleVersions()

	for _, module := range []string{"httprun", "lifecycle", "log"} {
		if versions[module] == "" {
			t.Errorf("ModuleVersions() missing %q", module)
		}
	}
}
