package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// HeartbeatKeyPrefix prefixes every worker heartbeat key: worker:heartbeat:{pool}:{worker}
	HeartbeatKeyPrefix = "worker:heartbeat"

	heartbeatTTL = 60 * time.Second
)

// WorkerHeartbeat represents the heartbeat data for a worker
type WorkerHeartbeat struct {
	WorkerID      string    `json:"worker_id"`
	Pool          string    `json:"pool"`
	Status        string    `json:"status"` // "idle", "processing"
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// SetWorkerHeartbeat stores or updates a worker's heartbeat in Redis
// The heartbeat key has a TTL of 60 seconds - if a worker doesn't send a heartbeat
// within that time, it's considered inactive
func (r *Repository) SetWorkerHeartbeat(ctx context.Context, workerID, pool, status string) error {
	key := fmt.Sprintf("%s:%s:%s", HeartbeatKeyPrefix, pool, workerID)

	heartbeat := WorkerHeartbeat{
		WorkerID:      workerID,
		Pool:          pool,
		Status:        status,
		LastHeartbeat: time.Now().UTC(),
	}

	data, err := json.Marshal(heartbeat)
	if err != nil {
		return fmt.Errorf("marshaling heartbeat: %w", err)
	}

	// Workers send heartbeats every 30 seconds by default
	err = r.client.Set(ctx, key, data, heartbeatTTL).Err()
	if err != nil {
		return fmt.Errorf("setting heartbeat: %w", err)
	}

	return nil
}
