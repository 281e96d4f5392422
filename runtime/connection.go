package runtime

import (
	"log/slog"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
)

// ConnectionHandler reacts to players joining and leaving the world.
type ConnectionHandler struct {
	log       *slog.Logger
	clock     contract.Clock
	registry  *RequestRegistry
	cooldowns *CooldownTracker
	tracker   contract.PositionTracker
	publisher contract.EventPublisher
}

func NewConnectionHandler(log *slog.Logger, clock contract.Clock, registry *RequestRegistry,
	cooldowns *CooldownTracker, tracker contract.PositionTracker,
	publisher contract.EventPublisher) *ConnectionHandler {
	return &ConnectionHandler{
		log:       log,
		clock:     clock,
		registry:  registry,
		cooldowns: cooldowns,
		tracker:   tracker,
		publisher: publisher,
	}
}

func (h *ConnectionHandler) Handle(e event.ConnectionEvent) {
	switch e.Kind {
	case event.Connected:
		h.OnConnect(e.Actor)
	case event.Disconnected:
		h.OnDisconnect(e.Actor)
	}
}

func (h *ConnectionHandler) OnConnect(actor domain.ActorState) {
	h.log.Debug("Player connected", "actor_id", actor.ID, "name", actor.Name())
	h.tracker.Track(actor)
}

// OnDisconnect cancels every request referencing the actor, flags its in-flight teleports
// and prunes its cooldown.
func (h *ConnectionHandler) OnDisconnect(actor domain.ActorState) {
	now := h.clock.Now()
	canceled := h.registry.ResolveInvolving(actor.ID, domain.Canceled)
	for _, req := range canceled {
		h.publisher.Publish(event.RequestCanceled{
			Request: req,
			Reason:  event.CanceledByDisconnect,
			Leaver:  actor.ID,
			At:      now,
		})
	}
	aborted := h.registry.AbortTeleportsInvolving(actor.ID, event.AbortOffline)
	h.cooldowns.Prune(actor.ID)
	h.tracker.MarkOffline(actor.ID)

	h.log.Debug("Player disconnected", "actor_id", actor.ID,
		"canceled_requests", len(canceled), "aborted_teleports", aborted)
}
