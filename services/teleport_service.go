//go:generate go run go.uber.org/mock/mockgen -source=teleport_service.go -destination=../mocks/mock_teleport_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
	"tpa-lab/errors"
	"tpa-lab/runtime"
)

// ITeleportService is the command surface used by the transport layer.
type ITeleportService interface {
	SubmitRequest(ctx context.Context, requester domain.ActorID, query string, kind domain.Kind) (domain.SubmitOutcome, error)
	AcceptPending(ctx context.Context, actor domain.ActorID) (domain.AcceptOutcome, error)
	DenyPending(ctx context.Context, actor domain.ActorID) (domain.DenyOutcome, error)
	CancelOutgoing(ctx context.Context, actor domain.ActorID) (domain.CancelOutcome, error)
	QueryStatus(ctx context.Context, actor domain.ActorID) (domain.StatusOutcome, error)
}

type TeleportService struct {
	log            *slog.Logger
	clock          contract.Clock
	directory      contract.IPlayerDirectory
	registry       *runtime.RequestRegistry
	scheduler      *runtime.ExpiryScheduler
	executor       *runtime.TeleportExecutor
	cooldowns      *runtime.CooldownTracker
	publisher      contract.EventPublisher
	requestTimeout time.Duration
	teleportDelay  time.Duration
}

func NewTeleportService(log *slog.Logger, clock contract.Clock, directory contract.IPlayerDirectory,
	registry *runtime.RequestRegistry, scheduler *runtime.ExpiryScheduler,
	executor *runtime.TeleportExecutor, cooldowns *runtime.CooldownTracker,
	publisher contract.EventPublisher, requestTimeout, teleportDelay time.Duration) *TeleportService {
	return &TeleportService{
		log:            log,
		clock:          clock,
		directory:      directory,
		registry:       registry,
		scheduler:      scheduler,
		executor:       executor,
		cooldowns:      cooldowns,
		publisher:      publisher,
		requestTimeout: requestTimeout,
		teleportDelay:  teleportDelay,
	}
}

// SubmitRequest registers a new request from requester to the single player matching query.
// A request already pending for that player is replaced.
func (s *TeleportService) SubmitRequest(_ context.Context, requesterID domain.ActorID,
	query string, kind domain.Kind) (domain.SubmitOutcome, error) {
	requester, ok := s.directory.LiveState(requesterID)
	if !ok {
		return domain.SubmitOutcome{}, errors.ErrRequesterOffline
	}
	if onCooldown, remaining := s.cooldowns.Check(requesterID); onCooldown {
		return domain.SubmitOutcome{}, errors.CooldownError{Remaining: remaining}
	}

	target, err := s.resolveTarget(query)
	if err != nil {
		return domain.SubmitOutcome{}, err
	}

	now := s.clock.Now()
	req := domain.NewRequest(requester, target, kind, s.requestTimeout, now)
	previous, ok := s.registry.Submit(req)
	if !ok {
		return domain.SubmitOutcome{}, errors.ErrSelfTargetNotAllowed
	}
	s.scheduler.Arm(req.Handle(), req.Timeout)

	if previous != nil {
		s.publisher.Publish(event.RequestReplaced{Previous: *previous, By: req, At: now})
	}
	s.publisher.Publish(event.RequestSubmitted{Request: req, At: now})
	s.log.Debug("Request submitted", "request_id", req.ID,
		"requester_id", req.RequesterID, "target_id", req.TargetID, "kind", req.Kind.String())

	return domain.SubmitOutcome{Request: req, Replaced: previous}, nil
}

func (s *TeleportService) resolveTarget(query string) (domain.ActorState, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.ActorState{}, errors.PlayerNotFoundError{}
	}
	match := s.directory.ResolveByQuery(query)
	switch match.Kind {
	case domain.MatchFound:
		return match.Actor, nil
	case domain.MatchAmbiguous:
		return domain.ActorState{}, errors.AmbiguousMatchError{
			Preview:   match.Preview,
			Truncated: match.Total > len(match.Preview),
		}
	default:
		return domain.ActorState{}, errors.PlayerNotFoundError{Query: query}
	}
}

// AcceptPending accepts the request pending for actor and starts the delayed teleport.
func (s *TeleportService) AcceptPending(ctx context.Context, actor domain.ActorID) (domain.AcceptOutcome, error) {
	pending, ok := s.registry.Get(actor)
	if !ok {
		return domain.AcceptOutcome{}, errors.ErrNoPendingRequest
	}
	if _, online := s.directory.LiveState(pending.RequesterID); !online {
		if removed, won := s.registry.ResolveHandle(pending.Handle(), domain.Canceled); won {
			s.publisher.Publish(event.RequestCanceled{
				Request: removed,
				Reason:  event.CanceledRequesterOffline,
				Leaver:  removed.RequesterID,
				At:      s.clock.Now(),
			})
		}
		return domain.AcceptOutcome{}, errors.ErrRequesterOffline
	}

	task, err := s.executor.Start(ctx, pending.Handle())
	if err != nil {
		return domain.AcceptOutcome{}, err
	}
	req := task.Request()
	mover, anchor := req.Roles()
	return domain.AcceptOutcome{Request: req, Mover: mover, Anchor: anchor, Delay: s.teleportDelay}, nil
}

func (s *TeleportService) DenyPending(_ context.Context, actor domain.ActorID) (domain.DenyOutcome, error) {
	req, ok := s.registry.Resolve(actor, domain.Denied)
	if !ok {
		return domain.DenyOutcome{}, errors.ErrNoPendingRequest
	}
	s.publisher.Publish(event.RequestDenied{Request: req, At: s.clock.Now()})
	return domain.DenyOutcome{Request: req}, nil
}

// CancelOutgoing cancels the request sent by actor, or its teleport once accepted.
func (s *TeleportService) CancelOutgoing(_ context.Context, actor domain.ActorID) (domain.CancelOutcome, error) {
	if _, pending, ok := s.registry.FindByRequester(actor); ok {
		if req, won := s.registry.ResolveHandle(pending.Handle(), domain.Canceled); won {
			s.publisher.Publish(event.RequestCanceled{
				Request: req,
				Reason:  event.CanceledByRequester,
				At:      s.clock.Now(),
			})
			return domain.CancelOutcome{Scope: domain.CancelPending, Request: req}, nil
		}
	}
	if flagged := s.registry.CancelTeleports(actor, event.AbortCanceled); len(flagged) > 0 {
		return domain.CancelOutcome{Scope: domain.CancelInFlight, Request: flagged[0]}, nil
	}
	return domain.CancelOutcome{}, errors.ErrNoOutgoingRequest
}

func (s *TeleportService) QueryStatus(_ context.Context, actor domain.ActorID) (domain.StatusOutcome, error) {
	now := s.clock.Now()
	var status domain.StatusOutcome

	if _, outgoing, ok := s.registry.FindByRequester(actor); ok {
		status.Outgoing = s.view(outgoing, outgoing.TargetID, now)
	}
	if incoming, ok := s.registry.Get(actor); ok {
		status.Incoming = s.view(incoming, incoming.RequesterID, now)
	}
	status.TeleportInFlight = s.registry.InFlight(actor)
	status.OnCooldown, status.CooldownRemaining = s.cooldowns.Check(actor)
	return status, nil
}

func (s *TeleportService) view(req domain.Request, counterpart domain.ActorID, now time.Time) *domain.PendingView {
	v := &domain.PendingView{Request: req, SecondsRemaining: req.SecondsRemaining(now)}
	if state, online := s.directory.LiveState(counterpart); online {
		v.CounterpartName = state.Name()
		v.CounterpartOnline = true
	}
	return v
}
