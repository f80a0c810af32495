package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-dispatch/webhook"
)

// Stats represents the current state of the delivery system.
type Stats struct {
	// Deliveries holds the counters of the in-process collector
	Deliveries Snapshot `json:"deliveries"`

	// Queue is the delivery backlog, nil when the queue cannot report it
	Queue *webhook.QueueDepth `json:"queue,omitempty"`

	// Workers maps pool name to list of active workers
	Workers map[string][]WorkerInfo `json:"workers,omitempty"`

	// Timestamp when stats were collected
	Timestamp time.Time `json:"timestamp"`
}

// WorkerInfo represents information about an active worker.
type WorkerInfo struct {
	// WorkerID is a unique identifier for the worker
	WorkerID string `json:"worker_id"`

	// Pool is the worker pool this worker belongs to
	Pool string `json:"pool"`

	// Status is the current status of the worker (e.g., "idle", "processing")
	Status string `json:"status"`

	// LastHeartbeat is the timestamp of the last heartbeat
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Reporter defines the interface for collecting stats from the delivery system.
type Reporter interface {
	// Collect gathers current stats from the system
	Collect(ctx context.Context) (Stats, error)
}

// WorkerSource returns information about active workers per pool
type WorkerSource interface {
	GetActiveWorkers(ctx context.Context) (map[string][]WorkerInfo, error)
}

// Aggregator combines the delivery counters with the optional queue and worker sources
type Aggregator struct {
	Deliveries *Collector
	Queue      webhook.DepthReporter
	Workers    WorkerSource
}

// Collect implements Reporter
func (a *Aggregator) Collect(ctx context.Context) (Stats, error) {
	stats := Stats{Timestamp: time.Now().UTC()}
	if a.Deliveries != nil {
		stats.Deliveries = a.Deliveries.Snapshot()
	}

	if a.Queue != nil {
		depth, err := a.Queue.Depth(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("getting queue depth: %w", err)
		}
		stats.Queue = &depth
	}

	if a.Workers != nil {
		workers, err := a.Workers.GetActiveWorkers(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("getting active workers: %w", err)
		}
		stats.Workers = workers
	}

	return stats, nil
}
