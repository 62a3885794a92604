package ws

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Server owns the per-connection lifecycle: authenticate-or-reject on the
// handshake, attach a sink, run the read loop until disconnect, then clean
// up. Per-connection event order is preserved because one read loop
// processes that connection's events sequentially.
type Server struct {
	log        *slog.Logger
	auth       contract.Authenticator
	registry   contract.IRegistry
	chat       services.IChatService
	upgrader   websocket.Upgrader
	validate   *validator.Validate
	bufferSize int
}

func NewServer(log *slog.Logger, auth contract.Authenticator, registry contract.IRegistry,
	chat services.IChatService, bufferSize int) *Server {
	return &Server{
		log:      log,
		auth:     auth,
		registry: registry,
		chat:     chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		validate:   validator.New(),
		bufferSize: bufferSize,
	}
}

// Handle is the websocket endpoint. Authentication happens before the
// upgrade: a rejected credential answers 401 and the connection never
// exists as far as the registry is concerned.
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	if _, err := s.auth.Authenticate(credential(r)); err != nil {
		s.log.Warn("Connection rejected", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	socket, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := domain.ConnID(uuid.NewString())
	sink := NewSink(s.bufferSize)
	s.registry.Attach(conn, sink)
	s.log.Info("Connection established", "conn", conn, "remote", r.RemoteAddr)

	done := make(chan struct{})
	go s.writePump(socket, sink, done)

	s.readLoop(r.Context(), socket, conn, sink)

	// Detach before announcing the departure so the leave fan-out skips
	// this connection, then let Leave decide whether anyone needs telling.
	s.registry.Detach(conn)
	s.chat.Leave(context.Background(), conn)
	close(done)
	_ = socket.Close()
	s.log.Info("Connection closed", "conn", conn)
}

func (s *Server) readLoop(ctx context.Context, socket *websocket.Conn, conn domain.ConnID, sink *Sink) {
	for {
		_, raw, err := socket.ReadMessage()
		if err != nil {
			s.log.Debug("Read loop ended", "conn", conn, "error", err)
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.log.Debug("Malformed envelope", "conn", conn, "error", err)
			continue
		}
		s.dispatch(ctx, conn, sink, env)
	}
}

// dispatch processes one inbound event to completion, success or explicit
// failure. Send outcomes go back to the author as a message-status event;
// a failed send never crashes the connection, let alone the process.
func (s *Server) dispatch(ctx context.Context, conn domain.ConnID, sink *Sink, env Envelope) {
	switch env.Event {
	case EventJoin:
		var p JoinPayload
		if !s.decode(conn, env, &p) {
			return
		}
		s.chat.Join(ctx, conn, p.Username)

	case EventChat:
		var p ChatPayload
		if !s.decode(conn, env, &p) {
			return
		}
		status := event.MessageStatus{Status: event.StatusOK}
		if err := s.chat.Broadcast(ctx, p.From, p.Message, p.Timestamp); err != nil {
			s.log.Error("Broadcast not delivered", "from", p.From, "error", err)
			status = event.MessageStatus{Status: event.StatusError, Error: err.Error()}
		}
		_ = sink.Consume(ctx, status)

	case EventPrivate:
		var p PrivatePayload
		if !s.decode(conn, env, &p) {
			return
		}
		delivery, err := s.chat.Private(ctx, conn, p.From, p.To, p.Message)
		status := event.MessageStatus{Status: event.StatusOK, Delivered: lo.ToPtr(delivery.Delivered)}
		if err != nil {
			s.log.Error("Private message not saved", "from", p.From, "to", p.To, "error", err)
			status = event.MessageStatus{Status: event.StatusError, Error: err.Error()}
		}
		_ = sink.Consume(ctx, status)

	case EventTyping, EventStopTyping:
		var username string
		if err := json.Unmarshal(env.Data, &username); err != nil {
			s.log.Debug("Malformed typing payload", "conn", conn, "error", err)
			return
		}
		s.chat.Typing(ctx, conn, username, env.Event == EventTyping)

	default:
		s.log.Debug("Unknown event", "conn", conn, "event", env.Event)
	}
}

func (s *Server) decode(conn domain.ConnID, env Envelope, payload any) bool {
	if err := json.Unmarshal(env.Data, payload); err != nil {
		s.log.Debug("Malformed payload", "conn", conn, "event", env.Event, "error", err)
		return false
	}
	if err := s.validate.Struct(payload); err != nil {
		s.log.Warn("Invalid payload", "conn", conn, "event", env.Event, "error", err)
		return false
	}
	return true
}

func (s *Server) writePump(socket *websocket.Conn, sink *Sink, done <-chan struct{}) {
	for {
		select {
		case <-done:
			_ = socket.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case e := <-sink.Events():
			payload, err := EncodeEvent(e)
			if err != nil {
				s.log.Error("Event encoding failed", "event", e.Name(), "error", err)
				continue
			}
			if err := socket.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

// credential extracts the handshake token: ?token= first, then a bearer
// Authorization header.
func credential(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}
