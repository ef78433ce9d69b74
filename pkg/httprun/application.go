package httprun

import (
	"net/http"
	"sync"
)

// Factory builds the application a runner serves. It is invoked once per
// serving process, after settings are resolved.
type Factory func(settings Settings) (*Application, error)

// Application pairs an HTTP handler with the lifecycle callbacks
// registered against it.
type Application struct {
	handler http.Handler

	mu     sync.Mutex
	stages [3][]Callback
}

// NewApplication wraps handler in an Application ready for callback
// registration. A nil handler serves 404s.
func NewApplication(handler http.Handler) *Application {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	return &Application{handler: handler}
}

// Handler returns the HTTP handler the server dispatches to.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// BeforeRun registers callbacks that run synchronously before serving
// starts. Callbacks run in registration order; an error aborts startup.
func (a *Application) BeforeRun(cbs ...Callback) {
	for _, cb := range cbs {
		a.Register(StageBeforeRun, cb)
	}
}

// OnStart registers callbacks dispatched once the server is serving.
// Dispatch preserves registration order; results are not awaited.
func (a *Application) OnStart(cbs ...Callback) {
	for _, cb := range cbs {
		a.Register(StageOnStart, cb)
	}
}

// OnShutdown registers callbacks that run during graceful shutdown.
// Callbacks run sequentially in registration order, bounded by the
// shutdown deadline.
func (a *Application) OnShutdown(cbs ...Callback) {
	for _, cb := range cbs {
		a.Register(StageOnShutdown, cb)
	}
}

// Register appends cb to the list for stage. Nil callbacks are dropped.
func (a *Application) Register(stage Stage, cb Callback) {
	if cb == nil {
		return
	}
	a.mu.Lock()
	a.stages[stage] = append(a.stages[stage], cb)
	a.mu.Unlock()
}

// Callbacks returns a snapshot of the callbacks registered for stage.
func (a *Application) Callbacks(stage Stage) []Callback {
	a.mu.Lock()
	defer a.mu.Unlock()
	cbs := make([]Callback, len(a.stages[stage]))
	copy(cbs, a.stages[stage])
	return cbs
}
