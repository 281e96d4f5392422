// Package runtime handles request lifecycles, event propagation and timers.
// It orchestrates the system without containing transport or presentation logic.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"tpa-lab/contract"
	"tpa-lab/domain/event"
	"tpa-lab/repositories"
	"tpa-lab/runtime/workers"
)

type OrchestratorConfig struct {
	Executor             ExecutorConfig
	EventBufferSize      int
	ConnectionBufferSize int
	SinkTimeout          time.Duration
	StatsInterval        time.Duration
	Snapshot             workers.PositionSnapshotConfig
}

// Orchestrator owns the request lifecycle core and the supervised workers around it.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	cfg            OrchestratorConfig
	clock          contract.Clock
	supervisor     contract.ISupervisor
	bus            contract.EventBus
	directory      contract.IPlayerDirectory
	positions      repositories.IPositionRepository
	telemetry      chan event.Event
	handlers       []event.Handler
	permanentSinks []contract.EventSink

	registry    *RequestRegistry
	cooldowns   *CooldownTracker
	events      *EventChannel
	scheduler   *ExpiryScheduler
	executor    *TeleportExecutor
	connections *ConnectionHandler
}

// NewOrchestrator builds the lifecycle core. positions may be nil, which disables
// the periodic position snapshot.
func NewOrchestrator(
	log *slog.Logger,
	cfg OrchestratorConfig,
	clock contract.Clock,
	supervisor contract.ISupervisor,
	telemetry chan event.Event,
	bus contract.EventBus,
	directory contract.IPlayerDirectory,
	teleporter contract.Teleporter,
	tracker contract.PositionTracker,
	positions repositories.IPositionRepository,
) *Orchestrator {
	registry := NewRequestRegistry()
	cooldowns := NewCooldownTracker(clock)
	events := NewEventChannel(log, cfg.EventBufferSize, telemetry)
	return &Orchestrator{
		log:         log,
		cfg:         cfg,
		clock:       clock,
		supervisor:  supervisor,
		bus:         bus,
		directory:   directory,
		positions:   positions,
		telemetry:   telemetry,
		registry:    registry,
		cooldowns:   cooldowns,
		events:      events,
		scheduler:   NewExpiryScheduler(log, clock, registry, events),
		executor:    NewTeleportExecutor(log, cfg.Executor, clock, registry, directory, teleporter, cooldowns, events),
		connections: NewConnectionHandler(log, clock, registry, cooldowns, tracker, events),
	}
}

func (o *Orchestrator) Registry() *RequestRegistry         { return o.registry }
func (o *Orchestrator) Cooldowns() *CooldownTracker        { return o.cooldowns }
func (o *Orchestrator) Scheduler() *ExpiryScheduler        { return o.scheduler }
func (o *Orchestrator) Executor() *TeleportExecutor        { return o.executor }
func (o *Orchestrator) Publisher() contract.EventPublisher { return o.events }

// Add registers sinks receiving every domain event. Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// AddHandlers registers technical event handlers. Must be called before Start.
func (o *Orchestrator) AddHandlers(handlers ...event.Handler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers = append(o.handlers, handlers...)
}

// Start registers every worker to the supervisor and blocks until it stops.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	o.supervisor.Add(
		workers.NewEventFanout(o.log, o.permanentSinks, o.events.Events(), o.telemetry, o.cfg.SinkTimeout),
		workers.NewTelemetryWorker(o.log, o.telemetry, o.handlers),
		workers.NewConnectionListener(o.log, o.bus, o.connections, o.cfg.ConnectionBufferSize),
	)
	if o.cfg.StatsInterval > 0 {
		o.supervisor.Add(workers.NewProcessStatsWorker(o.log, o.telemetry, o.cfg.StatsInterval))
	}
	if o.positions != nil && o.cfg.Snapshot.Interval > 0 {
		o.supervisor.Add(workers.NewPositionSnapshotWorker(o.log, o.cfg.Snapshot, o.clock, o.directory, o.positions))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels every pending request, aborts in-flight teleports and clears cooldowns,
// then waits for teleport tasks before stopping the workers.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.log.Info("Requesting orchestrator shutdown")

	canceled, aborted := o.registry.Shutdown()
	now := o.clock.Now()
	for _, r := range canceled {
		o.events.Publish(event.RequestCanceled{Request: r, Reason: event.CanceledByShutdown, At: now})
	}
	o.cooldowns.Clear()
	o.log.Info("Teleport requests cleared", "canceled", len(canceled), "aborted", aborted)

	err := o.executor.Drain(ctx)
	if err != nil {
		o.log.Warn("Teleport tasks still running at shutdown", "error", err)
	}
	o.supervisor.Stop()
	return err
}
