package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
	"tpa-lab/errors"
)

type TaskResult int

const (
	Committed TaskResult = iota
	CancelledMoved
	CancelledOffline
	// Canceled covers a cancel command and shutdown.
	Canceled
	Failed
)

func (r TaskResult) String() string {
	switch r {
	case Committed:
		return "committed"
	case CancelledMoved:
		return "cancelled_moved"
	case CancelledOffline:
		return "cancelled_offline"
	case Canceled:
		return "canceled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func resultFromAbort(r event.AbortReason) TaskResult {
	switch r {
	case event.AbortMoved:
		return CancelledMoved
	case event.AbortOffline:
		return CancelledOffline
	default:
		return Canceled
	}
}

// Task is the future of one accepted request.
type Task struct {
	ticket *Ticket
	done   chan struct{}
	result TaskResult
	err    error
}

func (t *Task) Request() domain.Request { return t.ticket.Request }

func (t *Task) Done() <-chan struct{} { return t.done }

// Result must only be read once Done is closed.
func (t *Task) Result() (TaskResult, error) {
	return t.result, t.err
}

func (t *Task) Wait(ctx context.Context) (TaskResult, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Cancel flags the teleport. The loop notices it at its next tick or before committing.
func (t *Task) Cancel() bool {
	return t.ticket.Cancel(event.AbortCanceled)
}

type ExecutorConfig struct {
	DelaySeconds         int
	Tick                 time.Duration
	Cooldown             time.Duration
	CancelOnMove         bool
	CancelOnMoveDistance float64
}

// TeleportExecutor drives accepted requests through the delayed teleport.
type TeleportExecutor struct {
	log        *slog.Logger
	cfg        ExecutorConfig
	clock      contract.Clock
	registry   *RequestRegistry
	directory  contract.IPlayerDirectory
	teleporter contract.Teleporter
	cooldowns  *CooldownTracker
	publisher  contract.EventPublisher
	wg         sync.WaitGroup
}

func NewTeleportExecutor(log *slog.Logger, cfg ExecutorConfig, clock contract.Clock,
	registry *RequestRegistry, directory contract.IPlayerDirectory, teleporter contract.Teleporter,
	cooldowns *CooldownTracker, publisher contract.EventPublisher) *TeleportExecutor {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	return &TeleportExecutor{
		log:        log,
		cfg:        cfg,
		clock:      clock,
		registry:   registry,
		directory:  directory,
		teleporter: teleporter,
		cooldowns:  cooldowns,
		publisher:  publisher,
	}
}

type party struct {
	id   domain.ActorID
	name string
}

// Start accepts the request behind h and launches its teleport.
// Losing the resolution race, or h no longer being the active request of its target,
// returns ErrNoPendingRequest without any side effect.
func (e *TeleportExecutor) Start(ctx context.Context, h domain.RequestHandle) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ticket, ok := e.registry.Accept(h)
	if !ok {
		return nil, errors.ErrNoPendingRequest
	}
	req := ticket.Request
	moverID, anchorID := req.Roles()
	mover, anchor := party{id: moverID}, party{id: anchorID}
	if req.Kind == domain.KindSummon {
		mover.name, anchor.name = req.TargetName, req.RequesterName
	} else {
		mover.name, anchor.name = req.RequesterName, req.TargetName
	}

	task := &Task{ticket: ticket, done: make(chan struct{})}
	e.publisher.Publish(event.RequestAccepted{
		Request:    req,
		Mover:      mover.id,
		MoverName:  mover.name,
		Anchor:     anchor.id,
		AnchorName: anchor.name,
		Delay:      time.Duration(e.cfg.DelaySeconds) * time.Second,
		At:         e.clock.Now(),
	})

	snapshot, online := e.directory.LiveState(mover.id)
	ticker := e.clock.NewTicker(e.cfg.Tick)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(task.done)
		defer e.registry.EndTeleport(ticket)
		defer ticker.Stop()
		if !online {
			e.abort(task, mover, anchor, event.AbortOffline)
			return
		}
		e.run(task, ticker, mover, anchor, snapshot.Position)
	}()
	return task, nil
}

// Drain waits for every running teleport to finish.
func (e *TeleportExecutor) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *TeleportExecutor) run(task *Task, ticker contract.Ticker, mover, anchor party, snapshot domain.Vec3) {
	defer func() {
		if r := recover(); r != nil {
			e.fail(task, mover, fmt.Errorf("%w: %v", errors.ErrTeleportFailed, r))
		}
	}()

	for i := 0; i < e.cfg.DelaySeconds; i++ {
		<-ticker.C()
		if reason, stop := e.check(task, mover, anchor, snapshot); stop {
			e.abort(task, mover, anchor, reason)
			return
		}
	}
	e.commit(task, mover, anchor)
}

// check runs the per-tick cancellation rules: cancel flag, reachability, then movement.
func (e *TeleportExecutor) check(task *Task, mover, anchor party, snapshot domain.Vec3) (event.AbortReason, bool) {
	if reason, ok := task.ticket.Canceled(); ok {
		return reason, true
	}
	moverState, okMover := e.directory.LiveState(mover.id)
	if _, okAnchor := e.directory.LiveState(anchor.id); !okMover || !okAnchor {
		return event.AbortOffline, true
	}
	if e.cfg.CancelOnMove && moverState.Position.Distance(snapshot) > e.cfg.CancelOnMoveDistance {
		return event.AbortMoved, true
	}
	return 0, false
}

func (e *TeleportExecutor) commit(task *Task, mover, anchor party) {
	if reason, ok := task.ticket.Canceled(); ok {
		e.abort(task, mover, anchor, reason)
		return
	}
	_, okMover := e.directory.LiveState(mover.id)
	anchorState, okAnchor := e.directory.LiveState(anchor.id)
	if !okMover || !okAnchor {
		e.abort(task, mover, anchor, event.AbortOffline)
		return
	}

	if err := e.teleport(mover.id, anchorState); err != nil {
		e.fail(task, mover, err)
		return
	}

	req := task.ticket.Request
	e.cooldowns.Start(req.RequesterID, e.cfg.Cooldown)
	task.result = Committed
	e.log.Info("Teleport committed", "request_id", req.ID,
		"mover_id", mover.id, "anchor_id", anchor.id)
	e.publisher.Publish(event.TeleportCommitted{
		Request:    req,
		Mover:      mover.id,
		MoverName:  mover.name,
		Anchor:     anchor.id,
		AnchorName: anchor.name,
		Position:   anchorState.Position,
		At:         e.clock.Now(),
	})
}

func (e *TeleportExecutor) teleport(mover domain.ActorID, anchor domain.ActorState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrTeleportFailed, r)
		}
	}()
	if err := e.teleporter.Teleport(mover, anchor.Position, anchor.Orientation); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrTeleportFailed, err)
	}
	return nil
}

func (e *TeleportExecutor) abort(task *Task, mover, anchor party, reason event.AbortReason) {
	req := task.ticket.Request
	var missing domain.ActorID
	if reason == event.AbortOffline {
		if _, ok := e.directory.LiveState(mover.id); !ok {
			missing = mover.id
		} else {
			missing = anchor.id
			task.err = errors.ErrDestinationOffline
		}
	}
	task.result = resultFromAbort(reason)
	e.log.Info("Teleport aborted", "request_id", req.ID, "reason", reason.String())
	e.publisher.Publish(event.TeleportAborted{
		Request:    req,
		Reason:     reason,
		Mover:      mover.id,
		MoverName:  mover.name,
		Anchor:     anchor.id,
		AnchorName: anchor.name,
		Missing:    missing,
		At:         e.clock.Now(),
	})
}

func (e *TeleportExecutor) fail(task *Task, mover party, err error) {
	req := task.ticket.Request
	task.result = Failed
	task.err = err
	e.log.Error("Teleport failed", "request_id", req.ID, "mover_id", mover.id, "error", err)
	e.publisher.Publish(event.TeleportFailed{
		Request:   req,
		Mover:     mover.id,
		MoverName: mover.name,
		Err:       err.Error(),
		At:        e.clock.Now(),
	})
}
