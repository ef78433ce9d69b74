package ports

import "os"

// SignalSource delivers OS termination signals to the runner.
// Implementations must never block the sender: delivery into the returned
// channel has to be a non-blocking send so nothing runs in signal-handling
// context beyond flagging that a termination request occurred.
type SignalSource interface {
	// Subscribe starts delivery of the given signals and returns the
	// channel they arrive on. The channel has capacity one; a signal
	// arriving while a previous one is still unread is dropped.
	Subscribe(signals ...os.Signal) <-chan os.Signal

	// Stop ends delivery and releases resources. After Stop returns, no
	// further signals arrive on the subscribed channel.
	Stop()
}
