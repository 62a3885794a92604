package runtime

import (
	"chat-hub/domain/event"
	"context"
	"fmt"
	"log/slog"
	"time"
)

const systemUser = "System"

// Presence announces roster changes to every live connection.
// The updated roster always goes out before the join/leave notice so
// clients render both consistently.
type Presence struct {
	log      *slog.Logger
	registry *Registry
}

func NewPresence(log *slog.Logger, registry *Registry) *Presence {
	return &Presence{log: log, registry: registry}
}

func (p *Presence) AnnounceJoin(ctx context.Context, username string) {
	p.announce(ctx, fmt.Sprintf("%s has joined the chat.", username))
}

// AnnounceLeave fires only after Unregister actually freed a username;
// the lifecycle manager guards against leave notices for connections that
// never joined.
func (p *Presence) AnnounceLeave(ctx context.Context, username string) {
	p.announce(ctx, fmt.Sprintf("%s has left the chat.", username))
}

func (p *Presence) announce(ctx context.Context, notice string) {
	sinks := p.registry.Sinks()
	fanout(ctx, p.log, sinks, event.Roster(p.registry.CurrentUsers()))
	fanout(ctx, p.log, sinks, event.ChatMessage{
		From:      systemUser,
		Message:   notice,
		Timestamp: time.Now().Format("15:04:05"),
		System:    true,
	})
}
