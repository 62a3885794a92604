package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"log/slog"
)

// Typing relays ephemeral typing indicators to everyone but the originator.
// Nothing is persisted or acknowledged; delivery is fire-and-forget.
type Typing struct {
	log      *slog.Logger
	registry *Registry
}

func NewTyping(log *slog.Logger, registry *Registry) *Typing {
	return &Typing{log: log, registry: registry}
}

func (t *Typing) Notify(ctx context.Context, origin domain.ConnID, username string, active bool) {
	fanout(ctx, t.log, t.registry.SinksExcept(origin), event.Typing{Username: username, Active: active})
}
