package runtime

import (
	"sync"
	"time"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeTicker hands each tick over to the reader. A stopped ticker swallows pending ticks.
type fakeTicker struct {
	period  time.Duration
	next    time.Time
	c       chan time.Time
	stop    chan struct{}
	stopped sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.stopped.Do(func() { close(t.stop) })
}

func (t *fakeTicker) deliver(at time.Time) bool {
	select {
	case t.c <- at:
		return true
	case <-t.stop:
		return false
	}
}

// fakeClock only moves when Advance is called. Due callbacks run synchronously
// and Advance blocks until every due tick has been received.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) contract.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) NewTicker(d time.Duration) contract.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{period: d, next: c.now.Add(d), c: make(chan time.Time), stop: make(chan struct{})}
	c.tickers = append(c.tickers, t)
	return t
}

type tick struct {
	ticker *fakeTicker
	at     time.Time
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	var ticks []tick
	for _, t := range c.tickers {
		for !t.next.After(c.now) {
			ticks = append(ticks, tick{ticker: t, at: t.next})
			t.next = t.next.Add(t.period)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	for _, t := range ticks {
		t.ticker.deliver(t.at)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *recordingPublisher) Publish(e event.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []event.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.DomainEvent(nil), p.events...)
}

func countOf[T event.DomainEvent](events []event.DomainEvent) int {
	n := 0
	for _, e := range events {
		if _, ok := e.(T); ok {
			n++
		}
	}
	return n
}

// stubDirectory is a mutable world: players come and go, and a scripted move
// kicks in after a given number of live state reads.
type stubDirectory struct {
	mu     sync.Mutex
	actors map[domain.ActorID]domain.ActorState
	reads  map[domain.ActorID]int
	moves  map[domain.ActorID]scriptedMove
}

type scriptedMove struct {
	afterReads int
	to         domain.Vec3
}

func newStubDirectory(actors ...domain.ActorState) *stubDirectory {
	d := &stubDirectory{
		actors: make(map[domain.ActorID]domain.ActorState),
		reads:  make(map[domain.ActorID]int),
		moves:  make(map[domain.ActorID]scriptedMove),
	}
	for _, a := range actors {
		d.actors[a.ID] = a
	}
	return d
}

func (d *stubDirectory) ResolveByQuery(string) domain.Match {
	return domain.Match{Kind: domain.MatchNone}
}

func (d *stubDirectory) LiveState(id domain.ActorID) (domain.ActorState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads[id]++
	a, ok := d.actors[id]
	if !ok {
		return domain.ActorState{}, false
	}
	if m, scripted := d.moves[id]; scripted && d.reads[id] > m.afterReads {
		a.Position = m.to
		d.actors[id] = a
	}
	return a, true
}

func (d *stubDirectory) Online() []domain.ActorState {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]domain.ActorState, 0, len(d.actors))
	for _, a := range d.actors {
		res = append(res, a)
	}
	return res
}

func (d *stubDirectory) Leave(id domain.ActorID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.actors, id)
}

func (d *stubDirectory) MoveAfter(id domain.ActorID, reads int, to domain.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.moves[id] = scriptedMove{afterReads: reads, to: to}
}

func actor(id domain.ActorID, name string, pos domain.Vec3) domain.ActorState {
	return domain.ActorState{ID: id, DisplayName: name, Position: pos}
}

var (
	alice = actor(1, "Alice", domain.Vec3{X: 10, Y: 64, Z: 10})
	bob   = actor(2, "Bob", domain.Vec3{X: -50, Y: 70, Z: 3})
	carol = actor(3, "Carol", domain.Vec3{X: 0, Y: 0, Z: 0})
)
