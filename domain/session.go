// Package domain contains core concepts of the chat system.
// This file defines Session entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

// ConnID identifies one live bidirectional connection, from accept to close.
type ConnID string

// Session is the live binding of a connection to a display name.
// Invariants: at most one Session per connection, at most one live
// connection per username (a later join rebinds the username to the
// newer connection, last-writer-wins).
type Session struct {
	Conn     ConnID
	Username string
}
