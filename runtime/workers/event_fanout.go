package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"tpa-lab/contract"
	"tpa-lab/domain/event"
)

// EventFanout broadcasts domain events to multiple in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
// Each sink gets at most sinkTimeout per event.
type EventFanout struct {
	log          *slog.Logger
	sinks        []contract.EventSink
	domainEvents <-chan event.DomainEvent
	telemetry    chan<- event.Event
	sinkTimeout  time.Duration
}

func NewEventFanout(log *slog.Logger, sinks []contract.EventSink,
	domainEvents <-chan event.DomainEvent, telemetry chan<- event.Event,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:          log,
		sinks:        sinks,
		domainEvents: domainEvents,
		telemetry:    telemetry,
		sinkTimeout:  sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.domainEvents:
			w.Fanout(ctx, evt)
			if technical, ok := toTechnicalEvent(evt); ok {
				select {
				case w.telemetry <- technical:
				default:
					w.log.Debug("Observability telemetry event lost")
				}
			}
		case <-ctx.Done():
			w.log.Debug("Context done, stopping domainEvent send")
			return nil
		}
	}
}

// Fanout One sink for each event
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn(fmt.Sprintf("Sink %T failed to consume %T", sink, evt), "error", err)
		}
		cancel()
	}
}

func toTechnicalEvent(evt event.DomainEvent) (event.Event, bool) {
	var payload any
	var typ event.Type
	switch e := evt.(type) {
	case event.RequestExpired:
		typ, payload = event.RequestOutcomeType, event.RequestOutcome{Resolution: e.Request.Resolution.String()}
	case event.RequestDenied:
		typ, payload = event.RequestOutcomeType, event.RequestOutcome{Resolution: e.Request.Resolution.String()}
	case event.RequestCanceled:
		typ, payload = event.RequestOutcomeType, event.RequestOutcome{Resolution: e.Request.Resolution.String()}
	case event.RequestReplaced:
		typ, payload = event.RequestOutcomeType, event.RequestOutcome{Resolution: e.Previous.Resolution.String()}
	case event.RequestAccepted:
		typ, payload = event.RequestOutcomeType, event.RequestOutcome{Resolution: e.Request.Resolution.String()}
	case event.TeleportCommitted:
		typ, payload = event.TeleportOutcomeType, event.TeleportOutcome{Outcome: "committed"}
	case event.TeleportAborted:
		typ, payload = event.TeleportOutcomeType, event.TeleportOutcome{Outcome: e.Reason.String()}
	case event.TeleportFailed:
		typ, payload = event.TeleportOutcomeType, event.TeleportOutcome{Outcome: "failed"}
	default:
		return event.Event{}, false
	}
	return event.Event{Type: typ, CreatedAt: time.Now().UTC(), Payload: payload}, true
}
