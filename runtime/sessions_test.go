package runtime

import (
	"log/slog"
	"testing"
	"tpa-lab/domain"

	"github.com/stretchr/testify/require"
)

type bufferedSink struct {
	ch chan domain.Notification
}

func newBufferedSink(size int) *bufferedSink {
	return &bufferedSink{ch: make(chan domain.Notification, size)}
}

func (s *bufferedSink) Deliver(n domain.Notification) bool {
	select {
	case s.ch <- n:
		return true
	default:
		return false
	}
}

func TestSessions_Notify_Reaches_Every_Connection(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(slog.New(slog.DiscardHandler), newFakeClock())
	phone, desktop := newBufferedSink(1), newBufferedSink(1)

	// Given alice is connected twice
	sessions.Subscribe(alice.ID, phone)
	sessions.Subscribe(alice.ID, desktop)

	// When she is notified
	sessions.NotifyError(alice.ID, "TPA request expired.")

	// Then both connections receive the same notification
	a, b := <-phone.ch, <-desktop.ch
	req.Equal(a, b)
	req.Equal(domain.SeverityError, a.Severity)
	req.Equal("TPA request expired.", a.Text)
	req.Equal(alice.ID, a.ActorID)
}

func TestSessions_Offline_Player_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(slog.New(slog.DiscardHandler), newFakeClock())
	sink := newBufferedSink(1)

	sessions.Subscribe(alice.ID, sink)
	sessions.Unsubscribe(alice.ID, sink)
	req.False(sessions.Connected(alice.ID))

	sessions.Notify(alice.ID, "hello")
	sessions.Notify(bob.ID, "hello")

	req.Empty(sink.ch)
	req.Empty(sessions.sessions)
}

func TestSessions_Full_Sink_Drops(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(slog.New(slog.DiscardHandler), newFakeClock())
	sink := newBufferedSink(1)
	sessions.Subscribe(bob.ID, sink)

	sessions.Notify(bob.ID, "first")
	sessions.Notify(bob.ID, "second")

	req.Len(sink.ch, 1)
	req.Equal("first", (<-sink.ch).Text)
}
