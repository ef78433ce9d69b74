package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/httprun/pkg/log"
)

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func TestNewManager(t *testing.T) {
	l := NewManager(log.NewNoopLogger(), nil)

	if l == nil {
		t.Fatal("NewManager returned nil")
	}
	if l.State() != StateCreated {
		t.Errorf("initial state = %v, want StateCreated", l.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateCreated, "Created"},
		{StateBound, "Bound"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateShuttingDown, "ShuttingDown"},
		{StateStopped, "Stopped"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestManager_TransitionTo_ValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
	}{
		{"created to bound", StateCreated, StateBound},
		{"created to stopped", StateCreated, StateStopped},
		{"bound to starting", StateBound, StateStarting},
		{"bound to stopped", StateBound, StateStopped},
		{"starting to running", StateStarting, StateRunning},
		{"starting to shutting down", StateStarting, StateShuttingDown},
		{"starting to stopped", StateStarting, StateStopped},
		{"running to shutting down", StateRunning, StateShuttingDown},
		{"shutting down to stopped", StateShuttingDown, StateStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewManager(log.NewNoopLogger(), nil)
			l.state = tt.from

			if err := l.TransitionTo(tt.to, "test"); err != nil {
				t.Errorf("TransitionTo() error = %v, want nil", err)
			}
			if l.State() != tt.to {
				t.Errorf("state = %v after transition, want %v", l.State(), tt.to)
			}
		})
	}
}

func TestManager_TransitionTo_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
	}{
		{"created to starting", StateCreated, StateStarting},
		{"created to running", StateCreated, StateRunning},
		{"bound to running", StateBound, StateRunning},
		{"bound to shutting down", StateBound, StateShuttingDown},
		{"running to starting", StateRunning, StateStarting},
		{"running to stopped", StateRunning, StateStopped},
		{"shutting down re-entered", StateShuttingDown, StateShuttingDown},
		{"shutting down to running", StateShuttingDown, StateRunning},
		{"stopped to starting", StateStopped, StateStarting},
		{"stopped to running", StateStopped, StateRunning},
		{"stopped to bound", StateStopped, StateBound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewManager(log.NewNoopLogger(), nil)
			l.state = tt.from

			err := l.TransitionTo(tt.to, "test")

			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("TransitionTo() error = %v, want ErrInvalidTransition", err)
			}
			// State should not change on invalid transition
			if l.State() != tt.from {
				t.Errorf("state changed to %v on invalid transition, want %v", l.State(), tt.from)
			}
		})
	}
}

func TestManager_TransitionTo_EmitsEvents(t *testing.T) {
	emitter := &mockEmitter{}
	l := NewManager(log.NewNoopLogger(), emitter)

	_ = l.TransitionTo(StateBound, "bound test")
	_ = l.TransitionTo(StateStarting, "starting test")

	events := emitter.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if events[0].previous != StateCreated || events[0].current != StateBound {
		t.Errorf("event 0: got %v->%v, want Created->Bound", events[0].previous, events[0].current)
	}
	if events[1].previous != StateBound || events[1].current != StateStarting {
		t.Errorf("event 1: got %v->%v, want Bound->Starting", events[1].previous, events[1].current)
	}
	if events[0].reason != "bound test" {
		t.Errorf("event 0 reason = %q, want %q", events[0].reason, "bound test")
	}
}

func TestManager_CanStop(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateCreated, false},
		{StateBound, false},
		{StateStarting, true},
		{StateRunning, true},
		{StateShuttingDown, false},
		{StateStopped, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			l := NewManager(log.NewNoopLogger(), nil)
			l.state = tt.state

			if got := l.CanStop(); got != tt.want {
				t.Errorf("CanStop() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManager_ShuttingDownEnteredOnce(t *testing.T) {
	l := NewManager(log.NewNoopLogger(), nil)
	l.state = StateRunning

	if err := l.TransitionTo(StateShuttingDown, "signal"); err != nil {
		t.Fatalf("first transition error = %v", err)
	}
	if err := l.TransitionTo(StateShuttingDown, "signal again"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second transition error = %v, want ErrInvalidTransition", err)
	}
	if l.State() != StateShuttingDown {
		t.Errorf("state = %v, want StateShuttingDown", l.State())
	}
}

func TestManager_SetCancel_And_Cancel(t *testing.T) {
	l := NewManager(log.NewNoopLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	l.SetCancel(cancel)

	// Context should not be canceled yet
	select {
	case <-ctx.Done():
		t.Error("context should not be canceled before Cancel()")
	default:
	}

	l.Cancel()

	// Context should be canceled now
	select {
	case <-ctx.Done():
		// Expected
	default:
		t.Error("context should be canceled after Cancel()")
	}
}

func TestManager_Cancel_NilSafe(t *testing.T) {
	l := NewManager(log.NewNoopLogger(), nil)

	// Should not panic when cancel is nil
	l.Cancel()
}

func TestManager_WorkerTracking(t *testing.T) {
	l := NewManager(log.NewNoopLogger(), nil)

	for i := 0; i < 3; i++ {
		l.AddWorker()
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			l.WorkerDone()
		}
		close(done)
	}()

	if err := l.WaitWithTimeout(time.Second); err != nil {
		t.Errorf("WaitWithTimeout() error = %v, want nil", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not complete")
	}
}

func TestManager_WaitWithTimeout_Expires(t *testing.T) {
	l := NewManager(log.NewNoopLogger(), nil)

	// A worker that never finishes
	l.AddWorker()

	start := time.Now()
	err := l.WaitWithTimeout(50 * time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("WaitWithTimeout() error = %v, want ErrShutdownTimeout", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("WaitWithTimeout() took %v, want about 50ms", elapsed)
	}

	l.WorkerDone()
}
