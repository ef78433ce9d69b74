package signal

import (
	"os"
	"os/signal"
)

// Source implements ports.SignalSource using os/signal.
// The channel has capacity one: the Go signal runtime performs a
// non-blocking send, so a signal arriving while a previous one is still
// unread is dropped rather than queued. Nothing beyond that send runs in
// signal-handling context.
type Source struct {
	ch chan os.Signal
}

// NewSource creates a new signal source.
func NewSource() *Source {
	return &Source{ch: make(chan os.Signal, 1)}
}

// Subscribe starts delivery of the given signals.
func (s *Source) Subscribe(signals ...os.Signal) <-chan os.Signal {
	signal.Notify(s.ch, signals...)
	return s.ch
}

// Stop ends delivery and restores default signal handling.
func (s *Source) Stop() {
	signal.Stop(s.ch)
}
