package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/repositories"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Router dispatches an inbound chat message to its delivery path.
// The hard invariant on both paths: the durable write happens first, and no
// connection ever observes a message whose save did not succeed.
type Router struct {
	log        *slog.Logger
	registry   *Registry
	repository repositories.IMessageRepository
}

func NewRouter(log *slog.Logger, registry *Registry, repository repositories.IMessageRepository) *Router {
	return &Router{log: log, registry: registry, repository: repository}
}

// PrivateDelivery reports the outcome of a private send: the message is
// always persisted, Delivered tells whether the recipient had a live
// connection to receive it.
type PrivateDelivery struct {
	MessageID uuid.UUID
	Delivered bool
}

// RouteBroadcast persists a global-room message, then fans it out to every
// live connection including the sender. On persistence failure nothing is
// delivered and the caller gets ErrPersistenceFailed to report back.
func (r *Router) RouteBroadcast(ctx context.Context, from, body, timestamp string) error {
	if timestamp == "" {
		timestamp = time.Now().Format("15:04:05")
	}
	_, err := r.repository.Store(domain.ChatMessage{
		From:      from,
		Body:      body,
		Timestamp: timestamp,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistenceFailed, err)
	}

	fanout(ctx, r.log, r.registry.Sinks(), event.ChatMessage{
		From:      from,
		Message:   body,
		Timestamp: timestamp,
	})
	return nil
}

// RoutePrivate persists a private message, then resolves the recipient.
// An offline recipient is not an error: history stays intact and the sender
// learns the message was saved but not delivered live. When delivery
// happens, the sender's own connection gets the same payload tagged Self so
// its UI can render it without relying on ambient broadcast.
func (r *Router) RoutePrivate(ctx context.Context, sender domain.ConnID, from, to, body string) (PrivateDelivery, error) {
	timestamp := time.Now().Format("15:04:05")
	id, err := r.repository.Store(domain.ChatMessage{
		From:      from,
		To:        lo.ToPtr(to),
		Body:      body,
		Timestamp: timestamp,
		IsPrivate: true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return PrivateDelivery{}, fmt.Errorf("%w: %v", errors.ErrPersistenceFailed, err)
	}

	recipient, online := r.registry.Resolve(to)
	if !online {
		r.log.Info("Private message saved, recipient offline", "from", from, "to", to)
		return PrivateDelivery{MessageID: id}, nil
	}

	payload := event.PrivateMessage{From: from, Message: body, Timestamp: timestamp}
	if err := recipient.Consume(ctx, payload); err != nil {
		r.log.Debug("Private delivery failed", "to", to, "error", err)
	}
	if echo, ok := r.registry.SinkFor(sender); ok {
		payload.Self = true
		if err := echo.Consume(ctx, payload); err != nil {
			r.log.Debug("Private echo failed", "from", from, "error", err)
		}
	}
	return PrivateDelivery{MessageID: id, Delivered: true}, nil
}
