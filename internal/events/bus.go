package events

import "time"

// Kind represents the type of session-change notification.
type Kind string

const (
	KindLogin    Kind = "login"
	KindRegister Kind = "register"
	KindLogout   Kind = "logout"
)

// SessionEvent is published whenever the identity held by a session changes.
type SessionEvent struct {
	Kind     Kind
	Email    string
	Provider string
	At       time.Time
}

// Bus is a lightweight in-process pub-sub implementation backed by a buffered channel.
type Bus struct {
	ch chan SessionEvent
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan SessionEvent, buffer)}
}

// Publish attempts to enqueue the event without blocking.
// Returns true if published, false if the buffer is full or the bus is nil.
func (b *Bus) Publish(evt SessionEvent) bool {
	if b == nil {
		return false
	}
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	select {
	case b.ch <- evt:
		return true
	default:
		return false
	}
}

// Subscribe returns a read-only channel for consumers. A nil bus yields a closed channel.
func (b *Bus) Subscribe() <-chan SessionEvent {
	if b == nil {
		c := make(chan SessionEvent)
		close(c)
		return c
	}
	return b.ch
}

// Close stops delivery; consumers ranging over Subscribe return.
// It must only be called once every publisher has stopped.
func (b *Bus) Close() {
	if b != nil {
		close(b.ch)
	}
}
