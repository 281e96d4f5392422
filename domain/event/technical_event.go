package event

import (
	"sync"
	"time"
)

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	TeleportOutcomeType     Type = "TELEPORT_OUTCOME"
	RequestOutcomeType      Type = "REQUEST_OUTCOME"
	ProcessStatsType        Type = "PROCESS_STATS"
	DomainEventDroppedType  Type = "DOMAIN_EVENT_DROPPED"
)

// Event is a technical event consumed by telemetry handlers.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type TeleportOutcome struct {
	Outcome string
}

type RequestOutcome struct {
	Resolution string
}

// DomainEventDropped reports a domain event lost because the fanout channel was full.
type DomainEventDropped struct {
	Event string
}

type ProcessStats struct {
	PID    int32
	Status string
	Cpu    float64
	RSS    uint64
}

// Counter counts technical events by key.
type Counter struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]uint64)}
}

func (c *Counter) Increment(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
}

func (c *Counter) Get(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key]
}

func (c *Counter) Snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make(map[string]uint64, len(c.counts))
	for k, v := range c.counts {
		res[k] = v
	}
	return res
}
