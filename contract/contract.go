//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
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

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// EventPublisher is the single entry point for lifecycle outcomes leaving the core.
type EventPublisher interface {
	Publish(e event.DomainEvent)
}

// IPlayerDirectory resolves players by name and exposes their live state.
type IPlayerDirectory interface {
	ResolveByQuery(query string) domain.Match
	LiveState(id domain.ActorID) (domain.ActorState, bool)
	Online() []domain.ActorState
}

// Teleporter applies a relocation to world state.
type Teleporter interface {
	Teleport(id domain.ActorID, position domain.Vec3, orientation domain.Orientation) error
}

// IMessenger delivers text to players. Both calls are best effort and
// silently do nothing when the player is offline.
type IMessenger interface {
	Notify(id domain.ActorID, text string)
	NotifyError(id domain.ActorID, text string)
}

type EventBus interface {
	Subscribe(buffer int) (<-chan event.ConnectionEvent, func())
}

type Timer interface {
	Stop() bool
}

// Ticker delivers a tick on C every period until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	NewTicker(d time.Duration) Ticker
}

// PositionTracker receives presence changes for position telemetry.
type PositionTracker interface {
	Track(actor domain.ActorState)
	MarkOffline(id domain.ActorID)
}

// NotificationSink is one live connection of a player.
type NotificationSink interface {
	Deliver(n domain.Notification) bool
}
