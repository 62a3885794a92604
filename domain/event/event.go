// Package event defines the outbound wire events delivered to connected
// clients. Name returns the transport event name; the value itself marshals
// as the event payload.
package event

import "encoding/json"

type Event interface {
	Name() string
}

// Roster is the full snapshot of joined usernames, sorted.
type Roster []string

func (Roster) Name() string { return "user-list" }

// ChatMessage is a broadcast delivered to every live connection.
// System notices (join/leave announcements) use From "System" and System true.
type ChatMessage struct {
	From      string `json:"from"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	System    bool   `json:"system,omitempty"`
}

func (ChatMessage) Name() string { return "chat-message" }

// PrivateMessage is delivered to the recipient connection and echoed back
// to the sender with Self set.
type PrivateMessage struct {
	From      string `json:"from"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Self      bool   `json:"self,omitempty"`
}

func (PrivateMessage) Name() string { return "private-message" }

// Typing is the ephemeral typing indicator. The wire payload is the bare
// username, matching the inbound shape.
type Typing struct {
	Username string
	Active   bool
}

func (t Typing) Name() string {
	if t.Active {
		return "user-typing"
	}
	return "stop-typing"
}

func (t Typing) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Username)
}

// MessageStatus reports the outcome of a send back to its author.
// Delivered is only set on the private path: false means the message was
// durably saved but the recipient had no live connection.
type MessageStatus struct {
	Status    string `json:"status"`
	Delivered *bool  `json:"delivered,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (MessageStatus) Name() string { return "message-status" }

const (
	StatusOK    = "ok"
	StatusError = "error"
)
