package sink

import (
	"sync"
	"tpa-lab/domain"
)

// PlayerSink buffers the notifications of one player connection.
// The websocket handler drains Notifications; a full buffer drops new lines.
type PlayerSink struct {
	mu            sync.Mutex
	closed        bool
	notifications chan domain.Notification
}

func NewPlayerSink(bufferSize int) *PlayerSink {
	return &PlayerSink{notifications: make(chan domain.Notification, bufferSize)}
}

func (s *PlayerSink) Deliver(n domain.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.notifications <- n:
		return true
	default:
		return false
	}
}

func (s *PlayerSink) Notifications() <-chan domain.Notification {
	return s.notifications
}

func (s *PlayerSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.notifications)
	}
}
