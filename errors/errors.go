package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrInvalidPayload = fmt.Errorf("invalid payload")

	ErrSelfTargetNotAllowed = fmt.Errorf("cannot send a request to yourself")
	ErrAmbiguousMatch       = fmt.Errorf("multiple players matched")
	ErrPlayerNotFound       = fmt.Errorf("player not found")
	ErrOnCooldown           = fmt.Errorf("on cooldown")
	ErrNoPendingRequest     = fmt.Errorf("no pending request")
	ErrNoOutgoingRequest    = fmt.Errorf("no outgoing request")
	ErrRequesterOffline     = fmt.Errorf("requester offline")
	ErrDestinationOffline   = fmt.Errorf("destination offline")
	ErrTeleportFailed       = fmt.Errorf("teleport failed")

	ErrUnauthorized   = fmt.Errorf("unauthorized")
	ErrForbidden      = fmt.Errorf("forbidden")
	ErrInvalidRequest = fmt.Errorf("invalid request")
)

// CooldownError carries the number of seconds left before the actor may teleport again.
type CooldownError struct {
	Remaining int
}

func (e CooldownError) Error() string {
	return fmt.Sprintf("%s: %ds", ErrOnCooldown, e.Remaining)
}

func (e CooldownError) Unwrap() error { return ErrOnCooldown }

// AmbiguousMatchError lists a preview of the players matching a query.
type AmbiguousMatchError struct {
	Preview   []string
	Truncated bool
}

func (e AmbiguousMatchError) Error() string {
	s := fmt.Sprintf("%s: %s", ErrAmbiguousMatch, strings.Join(e.Preview, ", "))
	if e.Truncated {
		s += "..."
	}
	return s
}

func (e AmbiguousMatchError) Unwrap() error { return ErrAmbiguousMatch }

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// PlayerNotFoundError keeps the query that matched nobody. An empty query means none was given.
type PlayerNotFoundError struct {
	Query string
}

func (e PlayerNotFoundError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("%s: empty query", ErrPlayerNotFound)
	}
	return fmt.Sprintf("%s: %q", ErrPlayerNotFound, e.Query)
}

func (e PlayerNotFoundError) Unwrap() error { return ErrPlayerNotFound }
