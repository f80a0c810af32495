//go:build integration

package metrics_test

import (
	"context"
	"strings"
	"testing"

	"github.com/marcelsud/webhook-dispatch/metrics"
	redisstore "github.com/marcelsud/webhook-dispatch/webhook/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisCollector_GetActiveWorkers_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainersredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := redisstore.NewClient(strings.TrimPrefix(addr, "redis://"), "", 0)
	require.NoError(t, err)
	defer client.Close()

	repo := redisstore.NewRepository(client)
	require.NoError(t, repo.SetWorkerHeartbeat(ctx, "delivery-0", "delivery", "idle"))
	require.NoError(t, repo.SetWorkerHeartbeat(ctx, "delivery-1", "delivery", "processing"))
	require.NoError(t, repo.SetWorkerHeartbeat(ctx, "replay-0", "replay", "idle"))

	workers, err := metrics.NewRedisCollector(client).GetActiveWorkers(ctx)

	require.NoError(t, err)
	assert.Len(t, workers["delivery"], 2)
	assert.Len(t, workers["replay"], 1)
	assert.Equal(t, "replay-0", workers["replay"][0].WorkerID)
}
