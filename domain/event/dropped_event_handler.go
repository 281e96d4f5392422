package event

import (
	"fmt"
	"log/slog"
	"tpa-lab/errors"
)

// DroppedEventHandler counts domain events the publisher had to drop.
// Keys look like "DOMAIN_EVENT_DROPPED:event.RequestExpired".
type DroppedEventHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewDroppedEventHandler(log *slog.Logger, counter *Counter) *DroppedEventHandler {
	return &DroppedEventHandler{log: log, counter: counter}
}

func (h *DroppedEventHandler) Handle(event Event) {
	if event.Type != DomainEventDroppedType {
		return
	}
	payload, ok := event.Payload.(DomainEventDropped)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error())
		return
	}
	key := string(DomainEventDroppedType) + ":" + payload.Event
	h.counter.Increment(key)
	h.log.Warn(fmt.Sprintf("Domain event %s dropped, total: %d", payload.Event, h.counter.Get(key)))
}
