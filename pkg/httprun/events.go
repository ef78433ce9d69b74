package httprun

import "github.com/bft-labs/httprun/pkg/lifecycle"

// StateChangeEvent describes a lifecycle state transition.
type StateChangeEvent struct {
	Previous lifecycle.State
	Current  lifecycle.State
	Reason   string
}

// CallbackErrorEvent describes a callback failure: a before-run error
// that aborted startup, an on-start error, or a shutdown error that was
// logged and swallowed.
type CallbackErrorEvent struct {
	Stage Stage
	Index int
	Err   error
}

// EventHandler receives runner events. Methods are called synchronously
// from runner goroutines and must not block.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnCallbackError(event CallbackErrorEvent)
}

// BaseEventHandler provides no-op defaults. Embed it to implement only
// the events of interest.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)     {}
func (BaseEventHandler) OnCallbackError(CallbackErrorEvent) {}

// eventEmitterWrapper adapts EventHandler to the lifecycle emitter
// interface.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current lifecycle.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: previous,
		Current:  current,
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) emitCallbackError(stage Stage, index int, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnCallbackError(CallbackErrorEvent{Stage: stage, Index: index, Err: err})
}
