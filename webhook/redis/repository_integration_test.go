//go:build integration

package redis_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/marcelsud/webhook-dispatch/webhook/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SaveGet_Integration(t *testing.T) {
	ctx := context.Background()
	redisContainer, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	repo := CreateTestRepository(t, redisContainer.Addr)
	defer repo.Close(ctx)

	t.Run("store and retrieve subscription", func(t *testing.T) {
		sub := webhook.NewTestSubscription(t, 1, "schedule.updated", "game.started")

		require.NoError(t, repo.Save(ctx, sub))

		retrieved, err := repo.Get(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, retrieved.ID)
		assert.Equal(t, sub.URL, retrieved.URL)
		assert.Equal(t, sub.Events, retrieved.Events)
		assert.Equal(t, sub.Secret, retrieved.Secret)
		assert.True(t, retrieved.Active)
		assert.Equal(t, sub.Description, retrieved.Description)
		assert.Equal(t, "scheduling", retrieved.Metadata["team"])
		assert.True(t, sub.CreatedAt.Equal(retrieved.CreatedAt))
		assert.True(t, retrieved.LastTriggered.IsZero())
		assert.True(t, KeyExists(t, repo.GetClient(), "subscription:"+sub.ID))
	})

	t.Run("error - get non-existent subscription", func(t *testing.T) {
		_, err := repo.Get(ctx, "non-existent-id")

		require.Error(t, err)
		assert.True(t, webhook.IsNotFound(err))
	})
}

func TestRepository_Update_Integration(t *testing.T) {
	ctx := context.Background()
	redisContainer, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	repo := CreateTestRepository(t, redisContainer.Addr)
	defer repo.Close(ctx)

	t.Run("update writes patched fields but keeps counters", func(t *testing.T) {
		sub := webhook.NewTestSubscription(t, 1)
		require.NoError(t, repo.Save(ctx, sub))
		_, err := repo.RecordOutcome(ctx, sub.ID, false, time.Now())
		require.NoError(t, err)

		url := "https://hooks.example.com/moved"
		inactive := false
		updated, err := repo.Update(ctx, sub.ID, webhook.Patch{URL: &url, Active: &inactive}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, url, updated.URL)
		assert.Equal(t, sub.Secret, updated.Secret)

		retrieved, err := repo.Get(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, url, retrieved.URL)
		assert.False(t, retrieved.Active)
		assert.Equal(t, sub.Events, retrieved.Events)
		assert.Equal(t, int64(1), retrieved.DeliveryCount)
		assert.Equal(t, int64(1), retrieved.FailureCount)
	})

	t.Run("update without active keeps a concurrent deactivation", func(t *testing.T) {
		sub := webhook.NewTestSubscription(t, 3)
		require.NoError(t, repo.Save(ctx, sub))
		changed, err := repo.Deactivate(ctx, sub.ID, time.Now())
		require.NoError(t, err)
		require.True(t, changed)

		description := "renamed"
		updated, err := repo.Update(ctx, sub.ID, webhook.Patch{Description: &description}, time.Now())
		require.NoError(t, err)
		assert.False(t, updated.Active)
		assert.Equal(t, description, updated.Description)
	})

	t.Run("error - update non-existent subscription", func(t *testing.T) {
		description := "x"
		_, err := repo.Update(ctx, "missing-id", webhook.Patch{Description: &description}, time.Now())

		assert.True(t, webhook.IsNotFound(err))
	})
}

func TestRepository_DeleteList_Integration(t *testing.T) {
	ctx := context.Background()
	redisContainer, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	repo := CreateTestRepository(t, redisContainer.Addr)
	defer repo.Close(ctx)

	base := time.Now().UTC().Truncate(time.Millisecond)
	var ids []string
	for i := 0; i < 3; i++ {
		sub := webhook.NewTestSubscription(t, i, "schedule.updated")
		sub.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if i == 2 {
			sub.Events = []string{"game.started"}
			sub.Active = false
		}
		require.NoError(t, repo.Save(ctx, sub))
		ids = append(ids, sub.ID)
	}

	t.Run("list is ordered by creation time", func(t *testing.T) {
		subs, err := repo.List(ctx, webhook.ListFilter{})
		require.NoError(t, err)
		require.Len(t, subs, 3)
		for i, sub := range subs {
			assert.Equal(t, ids[i], sub.ID)
		}
	})

	t.Run("list applies the filter", func(t *testing.T) {
		active := true
		subs, err := repo.List(ctx, webhook.ListFilter{Active: &active, Event: "schedule.updated"})
		require.NoError(t, err)
		assert.Len(t, subs, 2)
	})

	t.Run("delete removes hash and index entry", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, ids[0]))

		subs, err := repo.List(ctx, webhook.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, subs, 2)
		assert.False(t, KeyExists(t, repo.GetClient(), "subscription:"+ids[0]))
	})

	t.Run("error - delete twice", func(t *testing.T) {
		err := repo.Delete(ctx, ids[0])
		assert.True(t, webhook.IsNotFound(err))
	})
}

func TestRepository_RecordOutcome_Integration(t *testing.T) {
	ctx := context.Background()
	redisContainer, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	repo := CreateTestRepository(t, redisContainer.Addr)
	defer repo.Close(ctx)

	t.Run("failures accumulate and success resets", func(t *testing.T) {
		sub := webhook.NewTestSubscription(t, 1)
		require.NoError(t, repo.Save(ctx, sub))

		at := time.Now().UTC()
		for i := 1; i <= 3; i++ {
			updated, err := repo.RecordOutcome(ctx, sub.ID, false, at)
			require.NoError(t, err)
			assert.Equal(t, int64(i), updated.FailureCount)
		}

		updated, err := repo.RecordOutcome(ctx, sub.ID, true, at)
		require.NoError(t, err)
		assert.Equal(t, int64(4), updated.DeliveryCount)
		assert.Zero(t, updated.FailureCount)
		assert.True(t, at.Equal(updated.LastTriggered))
		assert.Equal(t, sub.URL, updated.URL)
	})

	t.Run("concurrent outcomes are not lost", func(t *testing.T) {
		sub := webhook.NewTestSubscription(t, 2)
		require.NoError(t, repo.Save(ctx, sub))

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.RecordOutcome(ctx, sub.ID, false, time.Now())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		retrieved, err := repo.Get(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), retrieved.DeliveryCount)
		assert.Equal(t, int64(50), retrieved.FailureCount)
	})

	t.Run("error - deleted subscription is not recreated", func(t *testing.T) {
		_, err := repo.RecordOutcome(ctx, "non-existent-id", false, time.Now())

		assert.True(t, webhook.IsNotFound(err))
		assert.False(t, KeyExists(t, repo.GetClient(), "subscription:non-existent-id"))
	})
}

func TestRepository_Deactivate_Integration(t *testing.T) {
	ctx := context.Background()
	redisContainer, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	repo := CreateTestRepository(t, redisContainer.Addr)
	defer repo.Close(ctx)

	t.Run("only one concurrent caller flips the flag", func(t *testing.T) {
		sub := webhook.NewTestSubscription(t, 1)
		require.NoError(t, repo.Save(ctx, sub))

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			flipped int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				changed, err := repo.Deactivate(ctx, sub.ID, time.Now())
				assert.NoError(t, err)
				if changed {
					mu.Lock()
					flipped++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, flipped)
		retrieved, err := repo.Get(ctx, sub.ID)
		require.NoError(t, err)
		assert.False(t, retrieved.Active)
	})

	t.Run("error - unknown subscription", func(t *testing.T) {
		_, err := repo.Deactivate(ctx, "non-existent-id", time.Now())
		assert.True(t, webhook.IsNotFound(err))
	})
}

func TestRepository_Heartbeat_Integration(t *testing.T) {
	ctx := context.Background()
	redisContainer, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	repo := CreateTestRepository(t, redisContainer.Addr)
	defer repo.Close(ctx)

	t.Run("heartbeat is stored with a TTL", func(t *testing.T) {
		require.NoError(t, repo.SetWorkerHeartbeat(ctx, "delivery-0", "delivery", "idle"))
		require.NoError(t, repo.SetWorkerHeartbeat(ctx, "delivery-0", "delivery", "processing"))

		key := "worker:heartbeat:delivery:delivery-0"
		ttl := GetKeyTTL(t, repo.GetClient(), key)
		assert.Greater(t, ttl, int64(0))
		assert.LessOrEqual(t, ttl, int64(60))

		raw, err := repo.GetClient().Get(ctx, key).Result()
		require.NoError(t, err)
		var heartbeat redis.WorkerHeartbeat
		require.NoError(t, json.Unmarshal([]byte(raw), &heartbeat))
		assert.Equal(t, "delivery", heartbeat.Pool)
		assert.Equal(t, "processing", heartbeat.Status)
		assert.False(t, heartbeat.LastHeartbeat.IsZero())
	})
}
