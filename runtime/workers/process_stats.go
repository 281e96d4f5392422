package workers

import (
	"context"
	"log/slog"
	"os"
	"time"
	"tpa-lab/domain"
	"tpa-lab/domain/event"

	"github.com/shirou/gopsutil/process"
)

// ProcessStatsWorker samples the footprint of the server process.
type ProcessStatsWorker struct {
	log       *slog.Logger
	telemetry chan<- event.Event
	interval  time.Duration
}

func NewProcessStatsWorker(log *slog.Logger, telemetry chan<- event.Event, interval time.Duration) *ProcessStatsWorker {
	return &ProcessStatsWorker{log: log, telemetry: telemetry, interval: interval}
}

func (w *ProcessStatsWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			select {
			case w.telemetry <- event.Event{Type: event.ProcessStatsType, CreatedAt: time.Now().UTC(), Payload: stats}:
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		}
	}
}

func selfStats(p *process.Process) (event.ProcessStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return event.ProcessStats{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return event.ProcessStats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return event.ProcessStats{}, err
	}
	return event.ProcessStats{PID: p.Pid, Status: string(domain.ToProcessStatus(status)), Cpu: cpuPercent, RSS: memInfo.RSS}, nil
}
