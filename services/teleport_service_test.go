package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
	"tpa-lab/errors"
	"tpa-lab/mocks"
	"tpa-lab/runtime"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	alice = domain.ActorState{ID: 1, DisplayName: "Alice", Position: domain.Vec3{X: 1, Y: 2, Z: 3}}
	bob   = domain.ActorState{ID: 2, DisplayName: "Bob", Position: domain.Vec3{X: 40, Y: 2, Z: -8}}
	carol = domain.ActorState{ID: 3, DisplayName: "Carol"}
)

type eventLog struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (l *eventLog) record(e event.DomainEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []event.DomainEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]event.DomainEvent(nil), l.events...)
}

type serviceFixture struct {
	online     map[domain.ActorID]domain.ActorState
	onlineMu   sync.Mutex
	directory  *mocks.MockIPlayerDirectory
	teleporter *mocks.MockTeleporter
	registry   *runtime.RequestRegistry
	cooldowns  *runtime.CooldownTracker
	events     *eventLog
	service    *TeleportService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	ctrl := gomock.NewController(t)
	log := slog.New(slog.DiscardHandler)
	clock := runtime.SystemClock{}
	publisher := mocks.NewMockEventPublisher(ctrl)

	f := &serviceFixture{
		online:     map[domain.ActorID]domain.ActorState{alice.ID: alice, bob.ID: bob, carol.ID: carol},
		directory:  mocks.NewMockIPlayerDirectory(ctrl),
		teleporter: mocks.NewMockTeleporter(ctrl),
		registry:   runtime.NewRequestRegistry(),
		cooldowns:  runtime.NewCooldownTracker(clock),
		events:     &eventLog{},
	}
	publisher.EXPECT().Publish(gomock.Any()).Do(f.events.record).AnyTimes()
	f.directory.EXPECT().LiveState(gomock.Any()).DoAndReturn(func(id domain.ActorID) (domain.ActorState, bool) {
		f.onlineMu.Lock()
		defer f.onlineMu.Unlock()
		a, ok := f.online[id]
		return a, ok
	}).AnyTimes()

	scheduler := runtime.NewExpiryScheduler(log, clock, f.registry, publisher)
	executor := runtime.NewTeleportExecutor(log, runtime.ExecutorConfig{
		DelaySeconds:         3,
		Tick:                 5 * time.Millisecond,
		Cooldown:             15 * time.Second,
		CancelOnMove:         true,
		CancelOnMoveDistance: 0.8,
	}, clock, f.registry, f.directory, f.teleporter, f.cooldowns, publisher)
	f.service = NewTeleportService(log, clock, f.directory, f.registry, scheduler, executor,
		f.cooldowns, publisher, 60*time.Second, 3*time.Second)
	return f
}

func (f *serviceFixture) resolves(query string, match domain.Match) {
	f.directory.EXPECT().ResolveByQuery(query).Return(match).AnyTimes()
}

func (f *serviceFixture) leave(id domain.ActorID) {
	f.onlineMu.Lock()
	defer f.onlineMu.Unlock()
	delete(f.online, id)
}

func waitFor[T event.DomainEvent](t *testing.T, l *eventLog) T {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, e := range l.all() {
			if typed, ok := e.(T); ok {
				return typed
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	var zero T
	t.Fatalf("event %T never published", zero)
	return zero
}

func TestTeleportService_SubmitRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("should register the request and arm its expiry", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.resolves("bo", domain.Match{Kind: domain.MatchFound, Actor: bob})

		outcome, err := f.service.SubmitRequest(ctx, alice.ID, " bo ", domain.KindToTarget)

		req.NoError(err)
		req.Nil(outcome.Replaced)
		req.Equal(bob.ID, outcome.Request.TargetID)
		req.Equal("Alice", outcome.Request.RequesterName)
		req.Equal(60*time.Second, outcome.Request.Timeout)
		pending, ok := f.registry.Get(bob.ID)
		req.True(ok)
		req.Equal(outcome.Request.ID, pending.ID)
		req.Len(f.events.all(), 1)
		req.IsType(event.RequestSubmitted{}, f.events.all()[0])
	})

	t.Run("should refuse while on cooldown", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.cooldowns.Start(alice.ID, 10*time.Second)

		_, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindToTarget)

		req.ErrorIs(err, errors.ErrOnCooldown)
		var cooldown errors.CooldownError
		req.True(errors.As(err, &cooldown))
		req.Equal(10, cooldown.Remaining)
		req.Empty(f.registry.Pending())
	})

	t.Run("should list candidates on ambiguous query", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.resolves("a", domain.Match{
			Kind:    domain.MatchAmbiguous,
			Preview: []string{"Alice", "Carol", "Dana", "Eva", "Fay"},
			Total:   6,
		})

		_, err := f.service.SubmitRequest(ctx, bob.ID, "a", domain.KindToTarget)

		var ambiguous errors.AmbiguousMatchError
		req.True(errors.As(err, &ambiguous))
		req.True(ambiguous.Truncated)
		req.Len(ambiguous.Preview, 5)
	})

	t.Run("should fail when nobody matches", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.resolves("zed", domain.Match{Kind: domain.MatchNone})

		_, err := f.service.SubmitRequest(ctx, alice.ID, "zed", domain.KindToTarget)
		req.ErrorIs(err, errors.ErrPlayerNotFound)

		_, err = f.service.SubmitRequest(ctx, alice.ID, "   ", domain.KindToTarget)
		req.ErrorIs(err, errors.ErrPlayerNotFound)
	})

	t.Run("should refuse self target", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.resolves("alice", domain.Match{Kind: domain.MatchFound, Actor: alice})

		_, err := f.service.SubmitRequest(ctx, alice.ID, "alice", domain.KindSummon)

		req.ErrorIs(err, errors.ErrSelfTargetNotAllowed)
		req.Empty(f.registry.Pending())
		req.Empty(f.events.all())
	})

	t.Run("should refuse offline requester", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.leave(alice.ID)

		_, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindToTarget)

		req.ErrorIs(err, errors.ErrRequesterOffline)
	})

	t.Run("second submission replaces the first exactly once", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.resolves("bob", domain.Match{Kind: domain.MatchFound, Actor: bob})

		first, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindToTarget)
		req.NoError(err)
		second, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindSummon)
		req.NoError(err)

		req.NotNil(second.Replaced)
		req.Equal(first.Request.ID, second.Replaced.ID)
		req.Len(f.registry.Pending(), 1)

		replaced := 0
		for _, e := range f.events.all() {
			if r, ok := e.(event.RequestReplaced); ok {
				replaced++
				req.Equal(first.Request.ID, r.Previous.ID)
				req.Equal(domain.Canceled, r.Previous.Resolution)
			}
		}
		req.Equal(1, replaced)
	})
}

func TestTeleportService_AcceptPending(t *testing.T) {
	ctx := context.Background()

	t.Run("should fail without pending request", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)

		_, err := f.service.AcceptPending(ctx, bob.ID)

		req.ErrorIs(err, errors.ErrNoPendingRequest)
	})

	t.Run("should drop the request when requester went offline", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.resolves("bob", domain.Match{Kind: domain.MatchFound, Actor: bob})
		_, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindToTarget)
		req.NoError(err)
		f.leave(alice.ID)

		_, err = f.service.AcceptPending(ctx, bob.ID)

		req.ErrorIs(err, errors.ErrRequesterOffline)
		req.Empty(f.registry.Pending())
		canceled := waitFor[event.RequestCanceled](t, f.events)
		req.Equal(event.CanceledRequesterOffline, canceled.Reason)
	})

	t.Run("should teleport the requester after the delay", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.resolves("bob", domain.Match{Kind: domain.MatchFound, Actor: bob})
		f.teleporter.EXPECT().Teleport(alice.ID, bob.Position, bob.Orientation).Return(nil)

		_, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindToTarget)
		req.NoError(err)
		outcome, err := f.service.AcceptPending(ctx, bob.ID)

		req.NoError(err)
		req.Equal(alice.ID, outcome.Mover)
		req.Equal(bob.ID, outcome.Anchor)
		req.Equal(3*time.Second, outcome.Delay)

		committed := waitFor[event.TeleportCommitted](t, f.events)
		req.Equal(alice.ID, committed.Mover)
		onCooldown, _ := f.cooldowns.Check(alice.ID)
		req.True(onCooldown)
	})
}

func TestTeleportService_DenyPending(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newServiceFixture(t)
	f.resolves("bob", domain.Match{Kind: domain.MatchFound, Actor: bob})
	_, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindToTarget)
	req.NoError(err)

	outcome, err := f.service.DenyPending(ctx, bob.ID)
	req.NoError(err)
	req.Equal(domain.Denied, outcome.Request.Resolution)
	req.IsType(event.RequestDenied{}, f.events.all()[1])

	_, err = f.service.DenyPending(ctx, bob.ID)
	req.ErrorIs(err, errors.ErrNoPendingRequest)
}

func TestTeleportService_CancelOutgoing(t *testing.T) {
	ctx := context.Background()

	t.Run("should cancel the pending request", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.resolves("bob", domain.Match{Kind: domain.MatchFound, Actor: bob})
		_, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindToTarget)
		req.NoError(err)

		outcome, err := f.service.CancelOutgoing(ctx, alice.ID)

		req.NoError(err)
		req.Equal(domain.CancelPending, outcome.Scope)
		req.Empty(f.registry.Pending())
		canceled := waitFor[event.RequestCanceled](t, f.events)
		req.Equal(event.CanceledByRequester, canceled.Reason)

		_, err = f.service.CancelOutgoing(ctx, alice.ID)
		req.ErrorIs(err, errors.ErrNoOutgoingRequest)
	})

	t.Run("should stop an accepted teleport", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.resolves("bob", domain.Match{Kind: domain.MatchFound, Actor: bob})
		f.teleporter.EXPECT().Teleport(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		_, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindToTarget)
		req.NoError(err)
		_, err = f.service.AcceptPending(ctx, bob.ID)
		req.NoError(err)

		outcome, err := f.service.CancelOutgoing(ctx, alice.ID)

		req.NoError(err)
		req.Equal(domain.CancelInFlight, outcome.Scope)
		aborted := waitFor[event.TeleportAborted](t, f.events)
		req.Equal(event.AbortCanceled, aborted.Reason)
	})
}

func TestTeleportService_QueryStatus(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newServiceFixture(t)
	f.resolves("bob", domain.Match{Kind: domain.MatchFound, Actor: bob})
	f.resolves("alice", domain.Match{Kind: domain.MatchFound, Actor: alice})

	// Given alice asked bob and carol asked alice
	_, err := f.service.SubmitRequest(ctx, alice.ID, "bob", domain.KindToTarget)
	req.NoError(err)
	_, err = f.service.SubmitRequest(ctx, carol.ID, "alice", domain.KindSummon)
	req.NoError(err)
	f.leave(bob.ID)

	status, err := f.service.QueryStatus(ctx, alice.ID)

	req.NoError(err)
	req.NotNil(status.Outgoing)
	req.False(status.Outgoing.CounterpartOnline)
	req.InDelta(60, status.Outgoing.SecondsRemaining, 1)
	req.NotNil(status.Incoming)
	req.Equal("Carol", status.Incoming.CounterpartName)
	req.False(status.TeleportInFlight)
	req.False(status.OnCooldown)
}
