// Package domain contains core concepts of the teleport system.
// This file defines teleport requests and their resolution rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Kind int

const (
	// KindToTarget moves the requester to the target.
	KindToTarget Kind = iota
	// KindSummon moves the target to the requester.
	KindSummon
)

func (k Kind) String() string {
	switch k {
	case KindToTarget:
		return "to_target"
	case KindSummon:
		return "summon"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, bool) {
	switch s {
	case "", "to_target", "tpa":
		return KindToTarget, true
	case "summon", "tpahere":
		return KindSummon, true
	default:
		return 0, false
	}
}

type Resolution int

const (
	Pending Resolution = iota
	Accepted
	Denied
	Canceled
	Expired
)

func (r Resolution) String() string {
	switch r {
	case Pending:
		return "pending"
	case Accepted:
		return "accepted"
	case Denied:
		return "denied"
	case Canceled:
		return "canceled"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Request is a pending consent-based relocation proposal.
// The canonical copy lives in the request registry; everybody else holds a RequestHandle.
type Request struct {
	ID                uuid.UUID
	RequesterID       ActorID
	RequesterName     string
	TargetID          ActorID
	TargetName        string
	Kind              Kind
	RequesterPosition Vec3
	CreatedAt         time.Time
	Timeout           time.Duration
	Active            bool
	Resolution        Resolution
}

func NewRequest(requester, target ActorState, kind Kind, timeout time.Duration, now time.Time) Request {
	return Request{
		ID:                uuid.New(),
		RequesterID:       requester.ID,
		RequesterName:     requester.Name(),
		TargetID:          target.ID,
		TargetName:        target.Name(),
		Kind:              kind,
		RequesterPosition: requester.Position,
		CreatedAt:         now,
		Timeout:           timeout,
		Active:            true,
		Resolution:        Pending,
	}
}

// RequestHandle is the opaque reference to a request held outside the registry.
type RequestHandle struct {
	ID          uuid.UUID
	TargetID    ActorID
	RequesterID ActorID
}

func (r Request) Handle() RequestHandle {
	return RequestHandle{ID: r.ID, TargetID: r.TargetID, RequesterID: r.RequesterID}
}

// Roles returns the actor who physically relocates and the actor whose position is the destination.
func (r Request) Roles() (mover, anchor ActorID) {
	if r.Kind == KindSummon {
		return r.TargetID, r.RequesterID
	}
	return r.RequesterID, r.TargetID
}

// Involves reports whether the actor is either party of the request.
func (r Request) Involves(id ActorID) bool {
	return r.RequesterID == id || r.TargetID == id
}

// SecondsRemaining rounds up the time left before expiry, 0 once inactive or elapsed.
func (r Request) SecondsRemaining(now time.Time) int {
	if !r.Active {
		return 0
	}
	remaining := r.Timeout - now.Sub(r.CreatedAt)
	if remaining <= 0 {
		return 0
	}
	return CeilSeconds(remaining)
}

func CeilSeconds(d time.Duration) int {
	s := int(d / time.Second)
	if d%time.Second != 0 {
		s++
	}
	return s
}
