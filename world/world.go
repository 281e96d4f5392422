// Package world is the in-memory shared world hosting connected players.
// It serves as player directory, teleporter and connection event bus for the runtime.
package world

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
	"tpa-lab/errors"

	"github.com/samber/lo"
)

const matchPreviewSize = 5

type World struct {
	mu          sync.RWMutex
	log         *slog.Logger
	clock       contract.Clock
	nextID      atomic.Uint64
	actors      map[domain.ActorID]domain.ActorState
	subscribers map[int]*subscription
	nextSub     int
}

var (
	_ contract.IPlayerDirectory = (*World)(nil)
	_ contract.Teleporter       = (*World)(nil)
	_ contract.EventBus         = (*World)(nil)
)

func New(log *slog.Logger, clock contract.Clock) *World {
	return &World{
		log:         log,
		clock:       clock,
		actors:      make(map[domain.ActorID]domain.ActorState),
		subscribers: make(map[int]*subscription),
	}
}

// Join spawns a player and assigns it a fresh id.
func (w *World) Join(state domain.ActorState) domain.ActorState {
	state.ID = domain.ActorID(w.nextID.Add(1))

	w.mu.Lock()
	w.actors[state.ID] = state
	w.mu.Unlock()

	w.log.Info("Player joined", "actor_id", state.ID, "name", state.Name())
	w.broadcast(event.ConnectionEvent{Kind: event.Connected, Actor: state, At: w.clock.Now()})
	return state
}

func (w *World) Leave(id domain.ActorID) bool {
	w.mu.Lock()
	state, ok := w.actors[id]
	delete(w.actors, id)
	w.mu.Unlock()
	if !ok {
		return false
	}

	w.log.Info("Player left", "actor_id", id, "name", state.Name())
	w.broadcast(event.ConnectionEvent{Kind: event.Disconnected, Actor: state, At: w.clock.Now()})
	return true
}

func (w *World) Move(id domain.ActorID, position domain.Vec3, orientation domain.Orientation) (domain.ActorState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	state, ok := w.actors[id]
	if !ok {
		return domain.ActorState{}, errors.ErrPlayerNotFound
	}
	state.Position = position
	state.Orientation = orientation
	w.actors[id] = state
	return state, nil
}

func (w *World) Teleport(id domain.ActorID, position domain.Vec3, orientation domain.Orientation) error {
	if _, err := w.Move(id, position, orientation); err != nil {
		return fmt.Errorf("teleport player %s: %w", id, err)
	}
	return nil
}

func (w *World) LiveState(id domain.ActorID) (domain.ActorState, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	state, ok := w.actors[id]
	return state, ok
}

// Online lists connected players in join order.
func (w *World) Online() []domain.ActorState {
	w.mu.RLock()
	res := lo.Values(w.actors)
	w.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// ResolveByQuery matches players whose display or character name contains query, ignoring case.
func (w *World) ResolveByQuery(query string) domain.Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return domain.Match{Kind: domain.MatchNone}
	}
	matches := lo.Filter(w.Online(), func(a domain.ActorState, _ int) bool {
		return strings.Contains(strings.ToLower(a.DisplayName), query) ||
			strings.Contains(strings.ToLower(a.CharacterName), query)
	})

	switch len(matches) {
	case 0:
		return domain.Match{Kind: domain.MatchNone}
	case 1:
		return domain.Match{Kind: domain.MatchFound, Actor: matches[0]}
	default:
		preview := lo.Map(matches[:min(len(matches), matchPreviewSize)], func(a domain.ActorState, _ int) string {
			return a.DisplayName
		})
		return domain.Match{Kind: domain.MatchAmbiguous, Preview: preview, Total: len(matches)}
	}
}

// Subscribe registers a listener for connection events.
// Events are queued per listener and never dropped, so a slow listener still sees every
// disconnect. buffer sizes the returned channel, not the queue behind it.
func (w *World) Subscribe(buffer int) (<-chan event.ConnectionEvent, func()) {
	sub := newSubscription(buffer)

	w.mu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subscribers[id] = sub
	w.mu.Unlock()

	go sub.pump()

	var once sync.Once
	return sub.out, func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subscribers, id)
			w.mu.Unlock()
			close(sub.done)
		})
	}
}

func (w *World) broadcast(e event.ConnectionEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, sub := range w.subscribers {
		sub.push(e)
	}
}

// subscription queues events for one listener. pump moves them to out in order
// and closes out once the listener unsubscribes.
type subscription struct {
	mu    sync.Mutex
	queue []event.ConnectionEvent
	wake  chan struct{}
	done  chan struct{}
	out   chan event.ConnectionEvent
}

func newSubscription(buffer int) *subscription {
	return &subscription{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan event.ConnectionEvent, buffer),
	}
}

func (s *subscription) push(e event.ConnectionEvent) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		e := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- e:
		case <-s.done:
			return
		}
	}
}
