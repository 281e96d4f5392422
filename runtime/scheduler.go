package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
)

type timerState int

const (
	timerArmed timerState = iota
	timerDisarmed
	timerFired
)

// ExpiryTimer is the one-shot deadline of a single request.
// It leaves the armed state exactly once, either disarmed or fired.
type ExpiryTimer struct {
	mu     sync.Mutex
	state  timerState
	timer  contract.Timer
	Handle domain.RequestHandle
}

// Disarm cancels the deadline. Once it returns true the callback never resolves anything.
// Disarming a fired or already disarmed timer is a no-op returning false.
func (t *ExpiryTimer) Disarm() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != timerArmed {
		return false
	}
	t.state = timerDisarmed
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}

func (t *ExpiryTimer) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == timerFired
}

func (t *ExpiryTimer) fire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != timerArmed {
		return false
	}
	t.state = timerFired
	return true
}

type ExpiryScheduler struct {
	log       *slog.Logger
	clock     contract.Clock
	registry  *RequestRegistry
	publisher contract.EventPublisher
}

func NewExpiryScheduler(log *slog.Logger, clock contract.Clock,
	registry *RequestRegistry, publisher contract.EventPublisher) *ExpiryScheduler {
	return &ExpiryScheduler{
		log:       log,
		clock:     clock,
		registry:  registry,
		publisher: publisher,
	}
}

// Arm schedules the expiry of the request behind h and binds the timer to it in the registry.
// If the request is already gone the returned timer is disarmed.
func (s *ExpiryScheduler) Arm(h domain.RequestHandle, d time.Duration) *ExpiryTimer {
	t := &ExpiryTimer{Handle: h}
	t.mu.Lock()
	t.timer = s.clock.AfterFunc(d, func() { s.expire(t) })
	t.mu.Unlock()

	if !s.registry.AttachTimer(h, t) {
		t.Disarm()
	}
	return t
}

func (s *ExpiryScheduler) Disarm(t *ExpiryTimer) bool {
	return t.Disarm()
}

func (s *ExpiryScheduler) expire(t *ExpiryTimer) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Expiry callback panicked",
				"request_id", t.Handle.ID, "panic", fmt.Sprint(r))
		}
	}()
	if !t.fire() {
		return
	}
	req, ok := s.registry.ResolveHandle(t.Handle, domain.Expired)
	if !ok {
		return
	}
	s.log.Debug("Request expired", "request_id", req.ID,
		"requester_id", req.RequesterID, "target_id", req.TargetID)
	s.publisher.Publish(event.RequestExpired{Request: req, At: s.clock.Now()})
}
