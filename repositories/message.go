//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-hub/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// IMessageRepository is the Persistence Gateway contract: a durable,
// at-least-once write path and a paginated read path over the global room.
// Store reports failure to the caller and never retries internally.
type IMessageRepository interface {
	Store(message domain.ChatMessage) (uuid.UUID, error)
	ListRecent(room string, page, pageSize int) ([]domain.ChatMessage, error)
}

type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

// diskMessage is the stored value shape, one JSON document per message.
type diskMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        *string   `json:"to,omitempty"`
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"`
	IsPrivate bool      `json:"isPrivate"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	// The sequence provides the server-assigned monotonic insertion order
	// every strict-ordering guarantee relies on. Client timestamps are
	// stored verbatim but never compared.
	seq, err := db.GetSequence([]byte("seq:msg"), 64)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log}, nil
}

// Close releases the remaining sequence lease. Must be called before the
// database is closed.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// Store persists a message in BadgerDB and returns its ID.
// Broadcast keys are "msg:{room}:{seq_padded}:{uuid}", private keys
// "pm:{seq_padded}:{uuid}". The 19-digit zero padding keeps lexicographical
// order equal to insertion order, and the UUID suffix disambiguates keys
// should a sequence ever be reused after a restart.
// Private messages live under their own prefix so room listings can never
// surface them.
func (m *MessageRepository) Store(message domain.ChatMessage) (uuid.UUID, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	n, err := m.seq.Next()
	if err != nil {
		return uuid.Nil, err
	}

	var key string
	if message.IsPrivate {
		key = fmt.Sprintf("pm:%019d:%s", n, message.ID)
	} else {
		key = fmt.Sprintf("msg:%s:%019d:%s", domain.GlobalRoom, n, message.ID)
	}

	bytes, err := json.Marshal(fromChatMessage(message))
	if err != nil {
		return uuid.Nil, err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return message.ID, nil
}

// ListRecent returns one page of the room's history in chronological order.
// Pages are counted from the newest message backwards (page 1 holds the most
// recent pageSize messages), matching skip/limit pagination over a
// newest-first sort. Only broadcast messages are stored under the room
// prefix, so private messages never appear here.
func (m *MessageRepository) ListRecent(room string, page, pageSize int) ([]domain.ChatMessage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return nil, nil
	}
	skip := (page - 1) * pageSize

	var stored []diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", room))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past every possible sequence number for this prefix, then
		// walk backwards from the newest entry.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		skipped := 0
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if skipped < skip {
				skipped++
				continue
			}
			if len(stored) == pageSize {
				break
			}
			var dm diskMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &dm)
			})
			if err != nil {
				return err
			}
			stored = append(stored, dm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Collected newest-first; the caller expects chronological order.
	lo.Reverse(stored)

	messages := make([]domain.ChatMessage, 0, len(stored))
	for _, dm := range stored {
		message, err := toChatMessage(dm)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func fromChatMessage(message domain.ChatMessage) diskMessage {
	return diskMessage{
		ID:        message.ID.String(),
		From:      message.From,
		To:        message.To,
		Message:   message.Body,
		Timestamp: message.Timestamp,
		IsPrivate: message.IsPrivate,
		CreatedAt: message.CreatedAt,
	}
}

func toChatMessage(dm diskMessage) (domain.ChatMessage, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return domain.ChatMessage{
		ID:        parsedID,
		From:      dm.From,
		To:        dm.To,
		Body:      dm.Message,
		Timestamp: dm.Timestamp,
		IsPrivate: dm.IsPrivate,
		CreatedAt: dm.CreatedAt,
	}, nil
}
