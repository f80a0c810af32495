package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	redisstore "github.com/marcelsud/webhook-dispatch/webhook/redis"
	"github.com/redis/go-redis/v9"
)

// RedisCollector reads worker heartbeats published by delivery pools
type RedisCollector struct {
	client *redis.Client
}

// NewRedisCollector creates a new Redis metrics collector
func NewRedisCollector(client *redis.Client) *RedisCollector {
	return &RedisCollector{
		client: client,
	}
}

// GetActiveWorkers implements WorkerSource; workers are grouped by pool and sorted by id
func (c *RedisCollector) GetActiveWorkers(ctx context.Context) (map[string][]WorkerInfo, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, redisstore.HeartbeatKeyPrefix+":*", 1000).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning worker heartbeat keys: %w", err)
	}

	workers := make(map[string][]WorkerInfo)
	if len(keys) == 0 {
		return workers, nil
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading worker heartbeats: %w", err)
	}

	for _, v := range values {
		// nil when the key expired between SCAN and MGET
		raw, ok := v.(string)
		if !ok {
			continue
		}

		var info WorkerInfo
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			continue
		}
		workers[info.Pool] = append(workers[info.Pool], info)
	}

	for pool := range workers {
		sort.Slice(workers[pool], func(i, j int) bool {
			return workers[pool][i].WorkerID < workers[pool][j].WorkerID
		})
	}

	return workers, nil
}
