// Package httpapi exposes the non-realtime surface: account registration,
// login, and the paginated global-room history.
package httpapi

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/services"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

type API struct {
	log  *slog.Logger
	chat services.IChatService
	auth services.IAuthService
}

func NewAPI(log *slog.Logger, chat services.IChatService, auth services.IAuthService) *API {
	return &API{log: log, chat: chat, auth: auth}
}

// Routes mounts every endpoint on mux.
func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleHealth)
	mux.HandleFunc("GET /api/messages", a.handleMessages)
	mux.HandleFunc("POST /api/auth/register", a.handleRegister)
	mux.HandleFunc("POST /api/auth/login", a.handleLogin)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Chat Hub Server Running"))
}

// messageResponse mirrors the stored record shape on the read path.
type messageResponse struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        *string   `json:"to,omitempty"`
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"`
	IsPrivate bool      `json:"isPrivate"`
	CreatedAt time.Time `json:"createdAt"`
}

// handleMessages serves one chronological page of the global room's history.
// Private history retrieval is deliberately absent from this surface.
func (a *API) handleMessages(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = domain.GlobalRoom
	}
	page := queryInt(r, "page", defaultPage)
	limit := queryInt(r, "limit", defaultLimit)

	messages, err := a.chat.History(room, page, limit)
	if err != nil {
		a.log.Error("History read failed", "room", room, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	a.respondJSON(w, http.StatusOK, lo.Map(messages, func(m domain.ChatMessage, _ int) messageResponse {
		return messageResponse{
			ID:        m.ID.String(),
			From:      m.From,
			To:        m.To,
			Message:   m.Body,
			Timestamp: m.Timestamp,
			IsPrivate: m.IsPrivate,
			CreatedAt: m.CreatedAt,
		}
	}))
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	a.handleCredentials(w, r, a.auth.Register)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	a.handleCredentials(w, r, a.auth.Login)
}

func (a *API) handleCredentials(w http.ResponseWriter, r *http.Request,
	action func(username, password string) (services.Token, error)) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	token, err := action(req.Username, req.Password)
	if err != nil {
		a.log.Warn("Credential request refused", "username", req.Username, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	a.respondJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func statusFor(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrInvalidPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.log.Error("Response encoding failed", "error", err)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
