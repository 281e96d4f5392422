package runtime

import (
	"fmt"
	"log/slog"
	"time"
	"tpa-lab/contract"
	"tpa-lab/domain/event"
)

// EventChannel publishes domain events into the buffered channel read by the fanout worker.
// A full channel drops the event and reports it on telemetry.
type EventChannel struct {
	log       *slog.Logger
	ch        chan event.DomainEvent
	telemetry chan<- event.Event
}

var _ contract.EventPublisher = (*EventChannel)(nil)

// NewEventChannel builds the publisher. telemetry may be nil.
func NewEventChannel(log *slog.Logger, bufferSize int, telemetry chan<- event.Event) *EventChannel {
	return &EventChannel{log: log, ch: make(chan event.DomainEvent, bufferSize), telemetry: telemetry}
}

func (p *EventChannel) Publish(e event.DomainEvent) {
	select {
	case p.ch <- e:
		return
	default:
	}

	name := fmt.Sprintf("%T", e)
	p.log.Warn("Domain event channel full, dropping "+name, "request_id", e.RequestID())
	if p.telemetry == nil {
		return
	}
	select {
	case p.telemetry <- event.Event{
		Type:      event.DomainEventDroppedType,
		CreatedAt: time.Now().UTC(),
		Payload:   event.DomainEventDropped{Event: name},
	}:
	default:
		p.log.Warn("Telemetry channel full, dropped event not reported", "event", name)
	}
}

func (p *EventChannel) Events() <-chan event.DomainEvent { return p.ch }
