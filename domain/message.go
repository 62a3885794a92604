// Package domain contains core concepts of the chat system.
// This file defines the ChatMessage record and related rules.
// Messages are immutable once created and persisted exactly once.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// GlobalRoom is the single room every broadcast belongs to.
const GlobalRoom = "global"

// ChatMessage represents an immutable chat record.
// To is nil for a broadcast to the global room.
// Timestamp is the client-reported display string; it is advisory metadata
// and never used for ordering. Ordering comes from server-side insertion
// order assigned at store time.
type ChatMessage struct {
	ID        uuid.UUID
	From      string
	To        *string
	Body      string
	Timestamp string
	IsPrivate bool
	CreatedAt time.Time
}
