// Package runtime holds the live connection fabric: session registry,
// presence fan-out, message routing, and typing propagation. It contains no
// transport or storage specifics beyond the repository contract.
package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Registry is the single source of truth for who is online.
// It tracks every live connection's sink (attached on accept, before any
// join) and the connection-to-username session bindings on top of them.
// All state is process-lifetime only; clients rejoin after a restart.
//
// One RWMutex guards everything: register/unregister racing for the same
// username or connection serialize here, and CurrentUsers snapshots a
// consistent point-in-time view.
type Registry struct {
	mu    sync.RWMutex
	log   *slog.Logger
	sinks map[domain.ConnID]contract.EventSink
	names map[domain.ConnID]string
	conns map[string]domain.ConnID
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:   log,
		sinks: make(map[domain.ConnID]contract.EventSink),
		names: make(map[domain.ConnID]string),
		conns: make(map[string]domain.ConnID),
	}
}

// Attach records a freshly accepted connection's sink. The connection can
// receive broadcasts and typing signals from this point on, joined or not.
func (r *Registry) Attach(conn domain.ConnID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[conn] = sink
}

// Detach drops the sink of a closed connection. Session cleanup is separate,
// through Unregister.
func (r *Registry) Detach(conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, conn)
}

// Register binds username to conn. A username already bound to another live
// connection is silently rebound, last-writer-wins: the former connection
// stays attached and keeps receiving broadcasts, but private messages for
// that username route to the new connection only. Returns whether such a
// rebind happened.
func (r *Registry) Register(conn domain.ConnID, username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A second join on the same connection replaces its previous session.
	if prev, ok := r.names[conn]; ok && r.conns[prev] == conn {
		delete(r.conns, prev)
	}

	old, rebound := r.conns[username]
	rebound = rebound && old != conn
	if rebound {
		delete(r.names, old)
		r.log.Warn("Username rebound to a new connection, orphaning the old one",
			"username", username, "old_conn", old, "new_conn", conn)
	}

	r.names[conn] = username
	r.conns[username] = conn
	return rebound
}

// Unregister removes the session of conn, if any, and returns the freed
// username. A connection that never joined returns ("", false) and mutates
// nothing. If the username was meanwhile rebound to a newer connection, that
// newer binding is left intact.
func (r *Registry) Unregister(conn domain.ConnID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.names[conn]
	if !ok {
		return "", false
	}
	delete(r.names, conn)
	if r.conns[username] == conn {
		delete(r.conns, username)
	}
	return username, true
}

// Resolve returns the sink of the live connection currently bound to
// username, for private delivery.
func (r *Registry) Resolve(username string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[username]
	if !ok {
		return nil, false
	}
	sink, ok := r.sinks[conn]
	return sink, ok
}

// SinkFor returns the sink of a specific connection.
func (r *Registry) SinkFor(conn domain.ConnID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[conn]
	return sink, ok
}

// Sinks snapshots every live connection's sink, joined or not.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.sinks)
}

// SinksExcept snapshots every live sink but the given connection's.
func (r *Registry) SinksExcept(conn domain.ConnID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.sinks))
	for id, sink := range r.sinks {
		if id != conn {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// CurrentUsers snapshots the roster: the sorted set of joined usernames.
func (r *Registry) CurrentUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := lo.Keys(r.conns)
	sort.Strings(users)
	return users
}

// Count reports the number of live connections, for telemetry.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sinks)
}
