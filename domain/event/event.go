package event

import (
	"time"
	"tpa-lab/domain"

	"github.com/google/uuid"
)

// DomainEvent is a typed outcome of the request lifecycle.
// Only the winner of a resolution publishes one, so sinks never see duplicates.
type DomainEvent interface {
	RequestID() uuid.UUID
}

type RequestSubmitted struct {
	Request domain.Request
	At      time.Time
}

func (e RequestSubmitted) RequestID() uuid.UUID { return e.Request.ID }

// RequestReplaced is published when a newer request for the same target evicts Previous.
type RequestReplaced struct {
	Previous domain.Request
	By       domain.Request
	At       time.Time
}

func (e RequestReplaced) RequestID() uuid.UUID { return e.Previous.ID }

type RequestExpired struct {
	Request domain.Request
	At      time.Time
}

func (e RequestExpired) RequestID() uuid.UUID { return e.Request.ID }

type RequestDenied struct {
	Request domain.Request
	At      time.Time
}

func (e RequestDenied) RequestID() uuid.UUID { return e.Request.ID }

type CancelReason int

const (
	CanceledByRequester CancelReason = iota
	CanceledByDisconnect
	CanceledByShutdown
	CanceledRequesterOffline
)

type RequestCanceled struct {
	Request domain.Request
	Reason  CancelReason
	// Leaver is the actor who disconnected when Reason is CanceledByDisconnect.
	Leaver domain.ActorID
	At     time.Time
}

func (e RequestCanceled) RequestID() uuid.UUID { return e.Request.ID }

type RequestAccepted struct {
	Request    domain.Request
	Mover      domain.ActorID
	MoverName  string
	Anchor     domain.ActorID
	AnchorName string
	Delay      time.Duration
	At         time.Time
}

func (e RequestAccepted) RequestID() uuid.UUID { return e.Request.ID }

type TeleportCommitted struct {
	Request    domain.Request
	Mover      domain.ActorID
	MoverName  string
	Anchor     domain.ActorID
	AnchorName string
	Position   domain.Vec3
	At         time.Time
}

func (e TeleportCommitted) RequestID() uuid.UUID { return e.Request.ID }

type AbortReason int

const (
	AbortMoved AbortReason = iota
	AbortOffline
	AbortCanceled
)

func (r AbortReason) String() string {
	switch r {
	case AbortMoved:
		return "moved"
	case AbortOffline:
		return "offline"
	case AbortCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

type TeleportAborted struct {
	Request    domain.Request
	Reason     AbortReason
	Mover      domain.ActorID
	MoverName  string
	Anchor     domain.ActorID
	AnchorName string
	// Missing is the actor no longer reachable when Reason is AbortOffline.
	Missing domain.ActorID
	At      time.Time
}

func (e TeleportAborted) RequestID() uuid.UUID { return e.Request.ID }

type TeleportFailed struct {
	Request   domain.Request
	Mover     domain.ActorID
	MoverName string
	Err       string
	At        time.Time
}

func (e TeleportFailed) RequestID() uuid.UUID { return e.Request.ID }

type ConnectionKind int

const (
	Connected ConnectionKind = iota
	Disconnected
)

// ConnectionEvent is emitted by the event bus when a player joins or leaves.
type ConnectionEvent struct {
	Kind  ConnectionKind
	Actor domain.ActorState
	At    time.Time
}
