package ws

import (
	"chat-hub/domain/event"
	"context"
)

// Sink is one connection's buffered outbound channel. Fan-out goroutines
// hand events over here; the connection's write pump drains them.
type Sink struct {
	events chan event.Event
}

func NewSink(bufferSize int) *Sink {
	return &Sink{events: make(chan event.Event, bufferSize)}
}

// Consume hands an event to the connection's write pump. A full buffer
// means a slow client; the event is dropped rather than blocking the
// caller's fan-out to everyone else.
func (s *Sink) Consume(ctx context.Context, e event.Event) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (s *Sink) Events() <-chan event.Event {
	return s.events
}
