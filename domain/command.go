package domain

import "time"

// SubmitOutcome is returned to the requester once a request is registered.
type SubmitOutcome struct {
	Request  Request
	Replaced *Request // request evicted from the same target, if any
}

// AcceptOutcome describes the teleport that has just been scheduled.
type AcceptOutcome struct {
	Request Request
	Mover   ActorID
	Anchor  ActorID
	Delay   time.Duration
}

// DenyOutcome carries the request that has been denied.
type DenyOutcome struct {
	Request Request
}

type CancelScope int

const (
	// CancelPending removed a request still waiting for an answer.
	CancelPending CancelScope = iota
	// CancelInFlight flagged an accepted teleport still counting down.
	CancelInFlight
)

type CancelOutcome struct {
	Scope   CancelScope
	Request Request
}

// PendingView is a read-only view of a pending request used by status queries.
type PendingView struct {
	Request           Request
	CounterpartName   string
	CounterpartOnline bool
	SecondsRemaining  int
}

// StatusOutcome answers "what is going on for me" for one actor.
type StatusOutcome struct {
	Outgoing          *PendingView
	Incoming          *PendingView
	TeleportInFlight  bool
	OnCooldown        bool
	CooldownRemaining int
}
