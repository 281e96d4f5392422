package workers

import (
	"context"
	"log/slog"
	"time"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/repositories"

	"github.com/samber/lo"
)

type PositionSnapshotConfig struct {
	MapName    string
	LevelSize  int
	Interval   time.Duration
	StaleAfter time.Duration
}

// PositionSnapshotWorker periodically copies every online player position to the store
// and flags players that stopped reporting.
type PositionSnapshotWorker struct {
	log        *slog.Logger
	cfg        PositionSnapshotConfig
	clock      contract.Clock
	directory  contract.IPlayerDirectory
	repository repositories.IPositionRepository
}

func NewPositionSnapshotWorker(
	log *slog.Logger,
	cfg PositionSnapshotConfig,
	clock contract.Clock,
	directory contract.IPlayerDirectory,
	repository repositories.IPositionRepository,
) *PositionSnapshotWorker {
	return &PositionSnapshotWorker{log: log, cfg: cfg, clock: clock, directory: directory, repository: repository}
}

func (w *PositionSnapshotWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Snapshot(); err != nil {
				w.log.Warn("Position snapshot failed", "error", err)
			}
		}
	}
}

// Snapshot runs a single sync pass.
func (w *PositionSnapshotWorker) Snapshot() error {
	now := w.clock.Now()
	if err := w.repository.UpsertMetadata(repositories.NewMapMetadata(w.cfg.MapName, w.cfg.LevelSize, now)); err != nil {
		return err
	}
	online := w.directory.Online()
	if len(online) > 0 {
		positions := lo.Map(online, func(a domain.ActorState, _ int) repositories.PlayerPosition {
			return repositories.NewPlayerPosition(a, now)
		})
		if err := w.repository.UpsertPlayers(positions); err != nil {
			return err
		}
	}
	if w.cfg.StaleAfter <= 0 {
		return nil
	}
	stale, err := w.repository.MarkStale(now.Add(-w.cfg.StaleAfter))
	if err != nil {
		return err
	}
	if stale > 0 {
		w.log.Debug("Players flagged offline", "count", stale)
	}
	return nil
}
