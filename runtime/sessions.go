package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"tpa-lab/contract"
	"tpa-lab/domain"

	"github.com/google/uuid"
)

type Set map[contract.NotificationSink]struct{}

// Sessions maps every connected player to its live notification sinks.
// A player may hold several connections; each of them receives every notification.
type Sessions struct {
	mu       sync.RWMutex
	log      *slog.Logger
	clock    contract.Clock
	sessions map[domain.ActorID]Set
}

var _ contract.IMessenger = (*Sessions)(nil)

func NewSessions(log *slog.Logger, clock contract.Clock) *Sessions {
	return &Sessions{
		log:      log,
		clock:    clock,
		sessions: make(map[domain.ActorID]Set),
	}
}

func (s *Sessions) Subscribe(id domain.ActorID, sink contract.NotificationSink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		s.sessions[id] = make(Set)
	}
	s.sessions[id][sink] = struct{}{}
}

// Unsubscribe removes one connection and drops the player entry once it has none left.
func (s *Sessions) Unsubscribe(id domain.ActorID, sink contract.NotificationSink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sinks, ok := s.sessions[id]; ok {
		delete(sinks, sink)
		if len(sinks) == 0 {
			delete(s.sessions, id)
		}
	}
}

func (s *Sessions) Connected(id domain.ActorID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[id]) > 0
}

func (s *Sessions) Notify(id domain.ActorID, text string) {
	s.deliver(id, domain.SeverityInfo, text)
}

func (s *Sessions) NotifyError(id domain.ActorID, text string) {
	s.deliver(id, domain.SeverityError, text)
}

func (s *Sessions) deliver(id domain.ActorID, severity domain.Severity, text string) {
	s.mu.RLock()
	sinks := make([]contract.NotificationSink, 0, len(s.sessions[id]))
	for sink := range s.sessions[id] {
		sinks = append(sinks, sink)
	}
	s.mu.RUnlock()

	n := domain.Notification{
		ID:        uuid.New(),
		ActorID:   id,
		Severity:  severity,
		Text:      text,
		CreatedAt: s.clock.Now(),
	}
	for _, sink := range sinks {
		if !sink.Deliver(n) {
			s.log.Warn(fmt.Sprintf("Notification dropped for player %s", id))
		}
	}
}
