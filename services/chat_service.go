package services

import (
	"chat-hub/domain"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"context"
	"log/slog"
)

// IChatService is the lifecycle manager's entry point for everything that
// happens after a connection is authenticated: join, message routing, typing
// signals, leave, and the history read path.
type IChatService interface {
	Join(ctx context.Context, conn domain.ConnID, username string)
	Leave(ctx context.Context, conn domain.ConnID)
	Broadcast(ctx context.Context, from, body, timestamp string) error
	Private(ctx context.Context, conn domain.ConnID, from, to, body string) (runtime.PrivateDelivery, error)
	Typing(ctx context.Context, conn domain.ConnID, username string, active bool)
	History(room string, page, pageSize int) ([]domain.ChatMessage, error)
}

type ChatService struct {
	log        *slog.Logger
	registry   *runtime.Registry
	presence   *runtime.Presence
	router     *runtime.Router
	typing     *runtime.Typing
	repository repositories.IMessageRepository
}

func NewChatService(log *slog.Logger, registry *runtime.Registry, presence *runtime.Presence,
	router *runtime.Router, typing *runtime.Typing, repository repositories.IMessageRepository) *ChatService {
	return &ChatService{
		log:        log,
		registry:   registry,
		presence:   presence,
		router:     router,
		typing:     typing,
		repository: repository,
	}
}

// Join transitions an authenticated connection to Joined: the session is
// registered first, then the new roster and the join notice go out to
// everyone, in that order.
func (s *ChatService) Join(ctx context.Context, conn domain.ConnID, username string) {
	s.registry.Register(conn, username)
	s.presence.AnnounceJoin(ctx, username)
}

// Leave tears down the session of a closing connection. A connection that
// authenticated but never joined produces no announcement and no registry
// mutation.
func (s *ChatService) Leave(ctx context.Context, conn domain.ConnID) {
	username, ok := s.registry.Unregister(conn)
	if !ok {
		return
	}
	s.presence.AnnounceLeave(ctx, username)
}

func (s *ChatService) Broadcast(ctx context.Context, from, body, timestamp string) error {
	return s.router.RouteBroadcast(ctx, from, body, timestamp)
}

func (s *ChatService) Private(ctx context.Context, conn domain.ConnID, from, to, body string) (runtime.PrivateDelivery, error) {
	return s.router.RoutePrivate(ctx, conn, from, to, body)
}

func (s *ChatService) Typing(ctx context.Context, conn domain.ConnID, username string, active bool) {
	s.typing.Notify(ctx, conn, username, active)
}

func (s *ChatService) History(room string, page, pageSize int) ([]domain.ChatMessage, error) {
	return s.repository.ListRecent(room, page, pageSize)
}
