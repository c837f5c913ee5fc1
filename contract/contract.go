//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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

// EventSink receives the events of one live session.
// Consume must not block beyond ctx.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the conversation -> live sessions mapping.
type IRegistry interface {
	Register(sessionID domain.SessionID, userID domain.UserID, sink EventSink)
	Join(sessionID domain.SessionID, conversationID domain.ConversationID) bool
	Disconnect(sessionID domain.SessionID)
	GetSinksForConversation(conversationID domain.ConversationID) []EventSink
}

// IBroadcaster is the write side of the delivery hub.
type IBroadcaster interface {
	Broadcast(ctx context.Context, e event.DomainEvent) error
}

// IdentityVerifier validates a bearer credential and extracts its subject.
type IdentityVerifier interface {
	Verify(token string) (domain.UserID, error)
}
