package runtime

import (
	"sync"
	"sync/atomic"
	"tpa-lab/domain"
	"tpa-lab/domain/event"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Disarmer is the part of an armed expiry timer the registry needs.
type Disarmer interface {
	Disarm() bool
}

type pendingEntry struct {
	request domain.Request
	timer   Disarmer
}

// Ticket tracks an accepted request while its teleport is in flight.
// The cancellation flag is set at most once and polled by the teleport loop at every tick.
type Ticket struct {
	Request domain.Request
	reason  atomic.Int32
}

const notCanceled = -1

func newTicket(r domain.Request) *Ticket {
	t := &Ticket{Request: r}
	t.reason.Store(notCanceled)
	return t
}

// Cancel flags the ticket. Only the first reason is kept.
func (t *Ticket) Cancel(reason event.AbortReason) bool {
	return t.reason.CompareAndSwap(notCanceled, int32(reason))
}

func (t *Ticket) Canceled() (event.AbortReason, bool) {
	r := t.reason.Load()
	if r == notCanceled {
		return 0, false
	}
	return event.AbortReason(r), true
}

// RequestRegistry owns the canonical copy of every active request, keyed by target.
// Every resolution goes through resolve, so exactly one resolver wins a request.
type RequestRegistry struct {
	mu       sync.Mutex
	pending  map[domain.ActorID]*pendingEntry // map target -> active request
	inflight map[uuid.UUID]*Ticket
}

func NewRequestRegistry() *RequestRegistry {
	return &RequestRegistry{
		pending:  make(map[domain.ActorID]*pendingEntry),
		inflight: make(map[uuid.UUID]*Ticket),
	}
}

// Submit makes req the sole active request for its target.
// A request already active for that target is marked canceled, its timer disarmed, and returned.
// It returns false, storing nothing, when the requester targets itself.
func (r *RequestRegistry) Submit(req domain.Request) (*domain.Request, bool) {
	if req.RequesterID == req.TargetID {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var previous *domain.Request
	if entry, ok := r.pending[req.TargetID]; ok {
		prev := r.removeLocked(req.TargetID, entry, domain.Canceled)
		previous = &prev
	}
	req.Active = true
	req.Resolution = domain.Pending
	r.pending[req.TargetID] = &pendingEntry{request: req}
	return previous, true
}

// AttachTimer binds an expiry timer to the request behind h.
// It returns false when the request is already gone, in which case the caller disarms the timer.
func (r *RequestRegistry) AttachTimer(h domain.RequestHandle, timer Disarmer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.pending[h.TargetID]
	if !ok || entry.request.ID != h.ID {
		return false
	}
	entry.timer = timer
	return true
}

func (r *RequestRegistry) Get(target domain.ActorID) (domain.Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.pending[target]
	if !ok {
		return domain.Request{}, false
	}
	return entry.request, true
}

// FindByRequester scans active requests for one sent by requester.
// When a requester has several outgoing requests, the most recent wins.
func (r *RequestRegistry) FindByRequester(requester domain.ActorID) (domain.ActorID, domain.Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *domain.Request
	for _, entry := range r.pending {
		if entry.request.RequesterID != requester {
			continue
		}
		if found == nil || entry.request.CreatedAt.After(found.CreatedAt) {
			found = &entry.request
		}
	}
	if found == nil {
		return 0, domain.Request{}, false
	}
	return found.TargetID, *found, true
}

// Resolve moves the active request of target out of Pending and removes it.
// It returns false when another resolver already won.
func (r *RequestRegistry) Resolve(target domain.ActorID, resolution domain.Resolution) (domain.Request, bool) {
	return r.resolve(target, uuid.Nil, resolution)
}

// ResolveHandle is Resolve restricted to the exact request behind h,
// so a stale handle never resolves a newer request for the same target.
func (r *RequestRegistry) ResolveHandle(h domain.RequestHandle, resolution domain.Resolution) (domain.Request, bool) {
	return r.resolve(h.TargetID, h.ID, resolution)
}

func (r *RequestRegistry) resolve(target domain.ActorID, id uuid.UUID, resolution domain.Resolution) (domain.Request, bool) {
	if resolution == domain.Pending {
		return domain.Request{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.pending[target]
	if !ok || (id != uuid.Nil && entry.request.ID != id) {
		return domain.Request{}, false
	}
	return r.removeLocked(target, entry, resolution), true
}

func (r *RequestRegistry) removeLocked(target domain.ActorID, entry *pendingEntry, resolution domain.Resolution) domain.Request {
	delete(r.pending, target)
	if entry.timer != nil {
		entry.timer.Disarm()
	}
	entry.request.Active = false
	entry.request.Resolution = resolution
	return entry.request
}

// Accept resolves the request behind h as accepted and registers its in-flight ticket
// in the same critical section. A newer request for the same target is left untouched.
func (r *RequestRegistry) Accept(h domain.RequestHandle) (*Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.pending[h.TargetID]
	if !ok || entry.request.ID != h.ID {
		return nil, false
	}
	req := r.removeLocked(h.TargetID, entry, domain.Accepted)
	ticket := newTicket(req)
	r.inflight[req.ID] = ticket
	return ticket, true
}

func (r *RequestRegistry) EndTeleport(t *Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, t.Request.ID)
}

// CancelTeleports flags every in-flight teleport started by requester.
func (r *RequestRegistry) CancelTeleports(requester domain.ActorID, reason event.AbortReason) []domain.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	var canceled []domain.Request
	for _, t := range r.inflight {
		if t.Request.RequesterID == requester && t.Cancel(reason) {
			canceled = append(canceled, t.Request)
		}
	}
	return canceled
}

// AbortTeleportsInvolving flags every in-flight teleport where actor is either party.
func (r *RequestRegistry) AbortTeleportsInvolving(actor domain.ActorID, reason event.AbortReason) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.inflight {
		if t.Request.Involves(actor) && t.Cancel(reason) {
			n++
		}
	}
	return n
}

// ResolveInvolving resolves every active request where actor is requester or target.
func (r *RequestRegistry) ResolveInvolving(actor domain.ActorID, resolution domain.Resolution) []domain.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	var resolved []domain.Request
	for target, entry := range r.pending {
		if entry.request.Involves(actor) {
			resolved = append(resolved, r.removeLocked(target, entry, resolution))
		}
	}
	return resolved
}

func (r *RequestRegistry) InFlight(actor domain.ActorID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.SomeBy(lo.Values(r.inflight), func(t *Ticket) bool {
		return t.Request.Involves(actor)
	})
}

func (r *RequestRegistry) Pending() []domain.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.Map(lo.Values(r.pending), func(e *pendingEntry, _ int) domain.Request {
		return e.request
	})
}

// Shutdown cancels every active request and flags every in-flight teleport.
func (r *RequestRegistry) Shutdown() ([]domain.Request, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var canceled []domain.Request
	for target, entry := range r.pending {
		canceled = append(canceled, r.removeLocked(target, entry, domain.Canceled))
	}
	aborted := 0
	for _, t := range r.inflight {
		if t.Cancel(event.AbortCanceled) {
			aborted++
		}
	}
	return canceled, aborted
}
