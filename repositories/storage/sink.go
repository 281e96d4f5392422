package storage

import (
	"context"
	"log/slog"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
	"tpa-lab/repositories"
)

// PositionSink stores the landing position of the mover after a committed teleport.
type PositionSink struct {
	repository repositories.IPositionRepository
	directory  contract.IPlayerDirectory
	log        *slog.Logger
}

func NewPositionSink(repository repositories.IPositionRepository, directory contract.IPlayerDirectory, log *slog.Logger) PositionSink {
	return PositionSink{repository: repository, directory: directory, log: log}
}

func (s PositionSink) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.TeleportCommitted)
	if !ok {
		return nil
	}
	mover, online := s.directory.LiveState(evt.Mover)
	if !online {
		mover = domain.ActorState{ID: evt.Mover, DisplayName: evt.MoverName, Position: evt.Position}
	}
	return s.repository.UpsertPlayers([]repositories.PlayerPosition{
		repositories.NewPlayerPosition(mover, evt.At),
	})
}

// Tracker keeps the position store in line with presence changes.
// Storage errors are logged, presence handling never fails because of them.
type Tracker struct {
	repository repositories.IPositionRepository
	clock      contract.Clock
	log        *slog.Logger
}

func NewTracker(repository repositories.IPositionRepository, clock contract.Clock, log *slog.Logger) *Tracker {
	return &Tracker{repository: repository, clock: clock, log: log}
}

func (t *Tracker) Track(actor domain.ActorState) {
	err := t.repository.UpsertPlayers([]repositories.PlayerPosition{
		repositories.NewPlayerPosition(actor, t.clock.Now()),
	})
	if err != nil {
		t.log.Warn("Unable to store player position", "actor_id", actor.ID, "error", err)
	}
}

func (t *Tracker) MarkOffline(id domain.ActorID) {
	if err := t.repository.MarkOffline(id, t.clock.Now()); err != nil {
		t.log.Warn("Unable to mark player offline", "actor_id", id, "error", err)
	}
}
