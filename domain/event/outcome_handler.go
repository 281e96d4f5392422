package event

import (
	"log/slog"
	"tpa-lab/errors"
)

// OutcomeHandler counts how requests and teleports end.
// Keys look like "REQUEST_OUTCOME:denied" or "TELEPORT_OUTCOME:committed".
type OutcomeHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewOutcomeHandler(log *slog.Logger, counter *Counter) *OutcomeHandler {
	return &OutcomeHandler{log: log, counter: counter}
}

func (h *OutcomeHandler) Handle(event Event) {
	switch event.Type {
	case TeleportOutcomeType:
		payload, ok := event.Payload.(TeleportOutcome)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(string(TeleportOutcomeType) + ":" + payload.Outcome)
	case RequestOutcomeType:
		payload, ok := event.Payload.(RequestOutcome)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(string(RequestOutcomeType) + ":" + payload.Resolution)
	}
}
