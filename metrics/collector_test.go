package metrics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/webhook-dispatch/metrics"
	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("counts attempts by outcome", func(t *testing.T) {
		c := metrics.NewCollector()

		c.Notify(ctx, webhook.Notification{Kind: webhook.DeliverySucceeded, URL: "https://a.test", Duration: 10 * time.Millisecond})
		c.Notify(ctx, webhook.Notification{Kind: webhook.DeliveryFailed, URL: "https://a.test", Duration: 30 * time.Millisecond, WillRetry: true})
		c.Notify(ctx, webhook.Notification{Kind: webhook.DeliveryFailed, URL: "https://b.test", Duration: 20 * time.Millisecond, Terminal: true})
		c.Notify(ctx, webhook.Notification{Kind: webhook.WebhookDisabled, WebhookID: "w2"})

		s := c.Snapshot()
		assert.Equal(t, int64(3), s.Sent)
		assert.Equal(t, int64(1), s.Delivered)
		assert.Equal(t, int64(2), s.Failed)
		assert.Equal(t, int64(1), s.Retries)
		assert.Equal(t, int64(1), s.Exhausted)
		assert.Equal(t, int64(1), s.Disabled)
		assert.Equal(t, 20*time.Millisecond, s.AverageResponseTime)
		assert.InDelta(t, 20.0, s.AverageResponseTimeMS, 0.001)

		assert.Equal(t, metrics.EndpointStats{
			Delivered:             1,
			Failed:                1,
			AverageResponseTime:   20 * time.Millisecond,
			AverageResponseTimeMS: 20,
		}, s.Endpoints["https://a.test"])
		assert.Equal(t, int64(1), s.Endpoints["https://b.test"].Failed)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		c := metrics.NewCollector()
		c.Notify(ctx, webhook.Notification{Kind: webhook.DeliverySucceeded, URL: "https://a.test"})

		s := c.Snapshot()
		delete(s.Endpoints, "https://a.test")
		s.Delivered = 100

		again := c.Snapshot()
		assert.Equal(t, int64(1), again.Delivered)
		assert.Contains(t, again.Endpoints, "https://a.test")
	})

	t.Run("empty collector", func(t *testing.T) {
		s := metrics.NewCollector().Snapshot()

		assert.Zero(t, s.Sent)
		assert.Zero(t, s.AverageResponseTime)
		assert.NotNil(t, s.Endpoints)
	})

	t.Run("concurrent notifications", func(t *testing.T) {
		c := metrics.NewCollector()
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Notify(ctx, webhook.Notification{Kind: webhook.DeliverySucceeded, URL: "https://a.test", Duration: time.Millisecond})
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(100), c.Snapshot().Delivered)
	})
}
