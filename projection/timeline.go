// Package projection builds local timelines from observed events.
// Handles ordering and projections.
// Does not emit events or interact with players directly.
package projection

import (
	"context"
	"sync"
	"time"
	"tpa-lab/domain"
	"tpa-lab/domain/event"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Stage string

const (
	StageSubmitted Stage = "submitted"
	StageReplaced  Stage = "replaced"
	StageExpired   Stage = "expired"
	StageDenied    Stage = "denied"
	StageCanceled  Stage = "canceled"
	StageAccepted  Stage = "accepted"
	StageCommitted Stage = "committed"
	StageAborted   Stage = "aborted"
	StageFailed    Stage = "failed"
)

// Entry is one step of a request lifecycle.
type Entry struct {
	RequestID   uuid.UUID      `json:"request_id"`
	Kind        string         `json:"kind"`
	RequesterID domain.ActorID `json:"requester_id"`
	TargetID    domain.ActorID `json:"target_id"`
	Stage       Stage          `json:"stage"`
	Detail      string         `json:"detail,omitempty"`
	At          time.Time      `json:"at"`
}

// Timeline keeps the most recent lifecycle entries in arrival order.
type Timeline struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
}

// NewTimeline keeps at most capacity entries, 0 means unbounded.
func NewTimeline(capacity int) *Timeline {
	return &Timeline{capacity: capacity}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	entry, ok := fromEvent(e)
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
	if t.capacity > 0 && len(t.entries) > t.capacity {
		t.entries = append([]Entry(nil), t.entries[len(t.entries)-t.capacity:]...)
	}
	return nil
}

func (t *Timeline) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Entry(nil), t.entries...)
}

// ForActor returns the entries where the actor is either party.
func (t *Timeline) ForActor(id domain.ActorID) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lo.Filter(t.entries, func(e Entry, _ int) bool {
		return e.RequesterID == id || e.TargetID == id
	})
}

func fromEvent(e event.DomainEvent) (Entry, bool) {
	switch evt := e.(type) {
	case event.RequestSubmitted:
		return entry(evt.Request, StageSubmitted, "", evt.At), true
	case event.RequestReplaced:
		return entry(evt.Previous, StageReplaced, evt.By.ID.String(), evt.At), true
	case event.RequestExpired:
		return entry(evt.Request, StageExpired, "", evt.At), true
	case event.RequestDenied:
		return entry(evt.Request, StageDenied, "", evt.At), true
	case event.RequestCanceled:
		return entry(evt.Request, StageCanceled, cancelDetail(evt.Reason), evt.At), true
	case event.RequestAccepted:
		return entry(evt.Request, StageAccepted, "", evt.At), true
	case event.TeleportCommitted:
		return entry(evt.Request, StageCommitted, "", evt.At), true
	case event.TeleportAborted:
		return entry(evt.Request, StageAborted, evt.Reason.String(), evt.At), true
	case event.TeleportFailed:
		return entry(evt.Request, StageFailed, evt.Err, evt.At), true
	default:
		return Entry{}, false
	}
}

func entry(r domain.Request, stage Stage, detail string, at time.Time) Entry {
	return Entry{
		RequestID:   r.ID,
		Kind:        r.Kind.String(),
		RequesterID: r.RequesterID,
		TargetID:    r.TargetID,
		Stage:       stage,
		Detail:      detail,
		At:          at,
	}
}

func cancelDetail(reason event.CancelReason) string {
	switch reason {
	case event.CanceledByRequester:
		return "requester"
	case event.CanceledByDisconnect:
		return "disconnect"
	case event.CanceledByShutdown:
		return "shutdown"
	case event.CanceledRequesterOffline:
		return "requester_offline"
	default:
		return ""
	}
}
