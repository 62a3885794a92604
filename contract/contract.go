//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"reflect"
)

// EventSink is one connection's outbound delivery channel.
// Consume must not block beyond ctx; a full or gone sink drops the event
// rather than stalling fan-out to the other connections.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IRegistry is the single source of truth for who is online.
// It owns the connection-to-username binding and the live sink directory;
// every other component reads it and mutates only through join/leave.
type IRegistry interface {
	Attach(conn domain.ConnID, sink EventSink)
	Detach(conn domain.ConnID)
	Register(conn domain.ConnID, username string) (rebound bool)
	Unregister(conn domain.ConnID) (string, bool)
	Resolve(username string) (EventSink, bool)
	SinkFor(conn domain.ConnID) (EventSink, bool)
	Sinks() []EventSink
	SinksExcept(conn domain.ConnID) []EventSink
	CurrentUsers() []string
	Count() int
}

// Authenticator gates a connection before it may join.
// It is called once per connection with the handshake credential.
type Authenticator interface {
	Authenticate(token string) (username string, err error)
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
