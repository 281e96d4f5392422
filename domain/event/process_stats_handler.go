package event

import (
	"log/slog"
	"tpa-lab/errors"
)

// ProcessStatsHandler logs the host process footprint reported by the stats worker.
type ProcessStatsHandler struct {
	log *slog.Logger
}

func NewProcessStatsHandler(log *slog.Logger) *ProcessStatsHandler {
	return &ProcessStatsHandler{log: log}
}

func (h *ProcessStatsHandler) Handle(event Event) {
	switch event.Type {
	case ProcessStatsType:
		payload, ok := event.Payload.(ProcessStats)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug("telemetry: process stats",
			"pid", payload.PID,
			"status", payload.Status,
			"cpu_percent", payload.Cpu,
			"rss_bytes", payload.RSS,
		)
	}
}
