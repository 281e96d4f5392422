package workers

import (
	"context"
	"log/slog"
	"tpa-lab/contract"
	"tpa-lab/domain/event"
)

// ConnectionHandler is what the listener feeds connection events into.
type ConnectionHandler interface {
	Handle(e event.ConnectionEvent)
}

// ConnectionListener subscribes to the world event bus and forwards presence changes.
// The subscription is renewed on every restart.
type ConnectionListener struct {
	log     *slog.Logger
	bus     contract.EventBus
	handler ConnectionHandler
	buffer  int
}

func NewConnectionListener(log *slog.Logger, bus contract.EventBus, handler ConnectionHandler, buffer int) *ConnectionListener {
	return &ConnectionListener{log: log, bus: bus, handler: handler, buffer: buffer}
}

func (w *ConnectionListener) Run(ctx context.Context) error {
	events, unsubscribe := w.bus.Subscribe(w.buffer)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				w.log.Debug("Event bus subscription closed")
				return nil
			}
			w.handler.Handle(evt)
		}
	}
}
