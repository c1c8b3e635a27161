//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"tutor-chat/domain"
	"tutor-chat/domain/event"
)

// EventSink is the live-connection side of delivery: one sink per
// connected user, fed by the dispatcher.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks which users currently hold a live connection.
// The last registration for a user wins, which lets a reconnect
// replace a stale handle. UnregisterSink removes only the given handle,
// so a stale connection tearing down cannot wipe a fresh registration;
// Unregister removes whatever is registered (explicit logout).
type IRegistry interface {
	Register(userID string, sink EventSink)
	Unregister(userID string)
	UnregisterSink(userID string, sink EventSink)
	Lookup(userID string) (EventSink, bool)
	Clear()
}

// IDispatcher pushes an event to its receiver if a connection exists.
// An offline receiver is a normal condition, not an error.
type IDispatcher interface {
	Push(ctx context.Context, e event.DomainEvent)
}

// ProfileResolver is the reference-expansion collaborator: it inlines a
// projection of a user's display fields. A miss is not an error; callers
// degrade to the bare identifier.
type ProfileResolver interface {
	Resolve(userID string) (domain.Profile, bool)
}

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

type WorkerName string

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

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}
