package repositories

import (
	"chat-hub/domain"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestRepository(t *testing.T) *MessageRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repository, err := NewMessageRepository(db, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func broadcast(from, body string) domain.ChatMessage {
	return domain.ChatMessage{
		From:      from,
		Body:      body,
		Timestamp: "10:00:00",
		CreatedAt: time.Now().UTC(),
	}
}

func TestMessageRepository_StoreAndListChronological(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	for _, body := range []string{"first", "second", "third"} {
		id, err := repository.Store(broadcast("alice", body))
		req.NoError(err)
		req.NotEmpty(id)
	}

	messages, err := repository.ListRecent(domain.GlobalRoom, 1, 10)
	req.NoError(err)
	req.Equal([]string{"first", "second", "third"},
		lo.Map(messages, func(m domain.ChatMessage, _ int) string { return m.Body }))
}

func TestMessageRepository_PaginationSlicesAreDisjointAndContiguous(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	for _, body := range []string{"m1", "m2", "m3", "m4", "m5"} {
		_, err := repository.Store(broadcast("alice", body))
		req.NoError(err)
	}

	bodies := func(page int) []string {
		messages, err := repository.ListRecent(domain.GlobalRoom, page, 2)
		req.NoError(err)
		return lo.Map(messages, func(m domain.ChatMessage, _ int) string { return m.Body })
	}

	// Page 1 holds the newest slice; earlier pages walk backwards in time,
	// each chronological internally.
	req.Equal([]string{"m4", "m5"}, bodies(1))
	req.Equal([]string{"m2", "m3"}, bodies(2))
	req.Equal([]string{"m1"}, bodies(3))
	req.Empty(bodies(4))
}

func TestMessageRepository_PrivateMessagesNeverListed(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	_, err := repository.Store(broadcast("alice", "public"))
	req.NoError(err)

	private := domain.ChatMessage{
		From:      "bob",
		To:        lo.ToPtr("alice"),
		Body:      "secret",
		Timestamp: "10:00:01",
		IsPrivate: true,
		CreatedAt: time.Now().UTC(),
	}
	id, err := repository.Store(private)
	req.NoError(err)
	req.NotEmpty(id) // persisted even though it will never be listed

	messages, err := repository.ListRecent(domain.GlobalRoom, 1, 10)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("public", messages[0].Body)
}

func TestMessageRepository_RoundTripKeepsFields(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	message := broadcast("alice", "hello")
	id, err := repository.Store(message)
	req.NoError(err)

	messages, err := repository.ListRecent(domain.GlobalRoom, 1, 1)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(id, messages[0].ID)
	req.Equal("alice", messages[0].From)
	req.Equal("hello", messages[0].Body)
	req.Equal("10:00:00", messages[0].Timestamp)
	req.Nil(messages[0].To)
}
