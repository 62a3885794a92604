package runtime

import (
	"chat-hub/domain/event"
	"context"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestPresence_JoinAnnouncesRosterBeforeNotice(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewRegistry(log)
	presence := NewPresence(log, registry)

	alice, bob := &captureSink{}, &captureSink{}
	registry.Attach("c1", alice)
	registry.Attach("c2", bob)
	registry.Register("c1", "alice")
	registry.Register("c2", "bob")

	presence.AnnounceJoin(context.Background(), "bob")

	// Every connection sees the roster first, then the system notice
	for _, sink := range []*captureSink{alice, bob} {
		events := sink.all()
		req.Len(events, 2)

		roster, ok := events[0].(event.Roster)
		req.True(ok)
		req.ElementsMatch([]string{"alice", "bob"}, []string(roster))

		notice, ok := events[1].(event.ChatMessage)
		req.True(ok)
		req.True(notice.System)
		req.Equal("System", notice.From)
		req.Equal("bob has joined the chat.", notice.Message)
	}
}

func TestPresence_LeaveNotice(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewRegistry(log)
	presence := NewPresence(log, registry)

	alice := &captureSink{}
	registry.Attach("c1", alice)
	registry.Register("c1", "alice")

	// bob already unregistered and detached
	presence.AnnounceLeave(context.Background(), "bob")

	events := alice.all()
	req.Len(events, 2)
	roster, ok := events[0].(event.Roster)
	req.True(ok)
	req.Equal([]string{"alice"}, []string(roster))

	notice, ok := events[1].(event.ChatMessage)
	req.True(ok)
	req.Equal("bob has left the chat.", notice.Message)
}

func TestTyping_SkipsOriginator(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewRegistry(log)
	typing := NewTyping(log, registry)

	alice, bob, carol := &captureSink{}, &captureSink{}, &captureSink{}
	registry.Attach("c1", alice)
	registry.Attach("c2", bob)
	registry.Attach("c3", carol)

	typing.Notify(context.Background(), "c1", "alice", true)
	typing.Notify(context.Background(), "c1", "alice", false)

	req.Empty(alice.all())
	for _, sink := range []*captureSink{bob, carol} {
		events := sink.all()
		req.Len(events, 2)
		req.Equal("user-typing", events[0].Name())
		req.Equal("stop-typing", events[1].Name())
		req.Equal(event.Typing{Username: "alice", Active: true}, events[0])
	}
}
