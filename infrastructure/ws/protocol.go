// Package ws carries the chat event protocol over a websocket: a JSON
// envelope {"event": name, "data": payload} in both directions, one
// connection per client, a single writer goroutine per connection.
package ws

import (
	"chat-hub/domain/event"
	"encoding/json"
)

// Inbound event names.
const (
	EventJoin       = "join"
	EventChat       = "chat-message"
	EventPrivate    = "private-message"
	EventTyping     = "user-typing"
	EventStopTyping = "stop-typing"
)

// Envelope is the wire frame. Data stays raw until the event name selects
// a payload shape.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EncodeEvent frames an outbound event for the wire.
func EncodeEvent(e event.Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.Name(), Data: data})
}

type JoinPayload struct {
	Username string `json:"username" validate:"required,min=1,max=32"`
}

type ChatPayload struct {
	From      string `json:"from" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Timestamp string `json:"timestamp"`
}

type PrivatePayload struct {
	To      string `json:"to" validate:"required"`
	From    string `json:"from" validate:"required"`
	Message string `json:"message" validate:"required"`
}
