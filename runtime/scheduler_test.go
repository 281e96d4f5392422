package runtime

import (
	"log/slog"
	"testing"
	"time"
	"tpa-lab/domain"
	"tpa-lab/domain/event"

	"github.com/stretchr/testify/require"
)

func newScheduler(clock *fakeClock, registry *RequestRegistry, publisher *recordingPublisher) *ExpiryScheduler {
	return NewExpiryScheduler(slog.New(slog.DiscardHandler), clock, registry, publisher)
}

func TestExpiryScheduler_Fires_Once(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	registry := NewRequestRegistry()
	publisher := &recordingPublisher{}
	scheduler := newScheduler(clock, registry, publisher)

	// Given alice sent a request to bob with a 60s timeout
	request := domain.NewRequest(alice, bob, domain.KindToTarget, 60*time.Second, clock.Now())
	registry.Submit(request)
	timer := scheduler.Arm(request.Handle(), request.Timeout)

	// When the deadline passes, then again much later
	clock.Advance(59 * time.Second)
	req.Empty(publisher.Events())
	clock.Advance(time.Second)
	clock.Advance(time.Hour)

	// Then the request expired exactly once
	events := publisher.Events()
	req.Len(events, 1)
	expired, ok := events[0].(event.RequestExpired)
	req.True(ok)
	req.Equal(request.ID, expired.Request.ID)
	req.Equal(domain.Expired, expired.Request.Resolution)
	req.True(timer.Fired())
	_, pending := registry.Get(bob.ID)
	req.False(pending)

	// And disarming after firing is a no-op
	req.False(scheduler.Disarm(timer))
}

func TestExpiryScheduler_Disarm_Before_Fire(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	registry := NewRequestRegistry()
	publisher := &recordingPublisher{}
	scheduler := newScheduler(clock, registry, publisher)

	request := domain.NewRequest(alice, bob, domain.KindToTarget, 60*time.Second, clock.Now())
	registry.Submit(request)
	timer := scheduler.Arm(request.Handle(), request.Timeout)

	// When the timer is disarmed before its deadline
	req.True(scheduler.Disarm(timer))
	clock.Advance(2 * time.Minute)

	// Then it never fires and the request is still pending
	req.Empty(publisher.Events())
	req.False(timer.Fired())
	_, pending := registry.Get(bob.ID)
	req.True(pending)
}

func TestExpiryScheduler_Resolved_Request_Does_Not_Expire(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	registry := NewRequestRegistry()
	publisher := &recordingPublisher{}
	scheduler := newScheduler(clock, registry, publisher)

	request := domain.NewRequest(alice, bob, domain.KindToTarget, 60*time.Second, clock.Now())
	registry.Submit(request)
	timer := scheduler.Arm(request.Handle(), request.Timeout)

	// When bob denies, the registry disarms the timer
	_, ok := registry.Resolve(bob.ID, domain.Denied)
	req.True(ok)
	clock.Advance(2 * time.Minute)

	req.Empty(publisher.Events())
	req.False(timer.Fired())
}

func TestExpiryScheduler_Superseded_Request_Has_No_Duplicate_Expiry(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	registry := NewRequestRegistry()
	publisher := &recordingPublisher{}
	scheduler := newScheduler(clock, registry, publisher)

	// Given alice submits to bob twice with different kinds before bob answers
	first := domain.NewRequest(alice, bob, domain.KindToTarget, 60*time.Second, clock.Now())
	registry.Submit(first)
	scheduler.Arm(first.Handle(), first.Timeout)

	clock.Advance(10 * time.Second)
	second := domain.NewRequest(alice, bob, domain.KindSummon, 60*time.Second, clock.Now())
	previous, _ := registry.Submit(second)
	scheduler.Arm(second.Handle(), second.Timeout)
	req.Equal(first.ID, previous.ID)

	// When both deadlines pass
	clock.Advance(2 * time.Minute)

	// Then only the second request expires
	events := publisher.Events()
	req.Equal(1, countOf[event.RequestExpired](events))
	req.Equal(second.ID, events[0].RequestID())
}

func TestExpiryScheduler_Arm_Unknown_Request_Is_Disarmed(t *testing.T) {
	req := require.New(t)
	clock := newFakeClock()
	publisher := &recordingPublisher{}
	scheduler := newScheduler(clock, NewRequestRegistry(), publisher)

	request := domain.NewRequest(alice, bob, domain.KindToTarget, time.Second, clock.Now())
	timer := scheduler.Arm(request.Handle(), request.Timeout)
	clock.Advance(time.Minute)

	req.False(timer.Fired())
	req.Empty(publisher.Events())
}
