package delivery_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marcelsud/webhook-dispatch/delivery"
	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTester_Test(t *testing.T) {
	ctx := context.Background()

	t.Run("success - synthetic event reaches the endpoint", func(t *testing.T) {
		f := newFixture(t)
		var envelope map[string]any
		var eventHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &envelope)
			eventHeader = r.Header.Get(delivery.HeaderEvent)
			_, _ = w.Write([]byte("pong"))
		}))
		defer server.Close()
		f.save(t, activeSub("w1", server.URL, "schedule.updated"))

		tester := delivery.NewTester(f.repo, delivery.NewSender(server.Client(), time.Second))
		result, err := tester.Test(ctx, "w1")

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, "pong", result.ResponseBody)
		assert.Equal(t, "w1", result.WebhookID)
		assert.NotEmpty(t, result.EventID)
		assert.NotEmpty(t, result.DeliveryID)
		assert.Empty(t, result.Error)

		assert.Equal(t, webhook.TestEventType, eventHeader)
		assert.Equal(t, webhook.TestEventType, envelope["type"])
		assert.Equal(t, true, envelope["metadata"].(map[string]any)["test"])
	})

	t.Run("failures are reported in the result", func(t *testing.T) {
		f := newFixture(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()
		f.save(t, activeSub("w1", server.URL, "schedule.updated"))

		result, err := delivery.NewTester(f.repo, delivery.NewSender(server.Client(), time.Second)).Test(ctx, "w1")

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
		assert.Equal(t, "delivery failed: unexpected status 401", result.Error)
	})

	t.Run("counters are untouched and inactive subscriptions can be tested", func(t *testing.T) {
		f := newFixture(t)
		sub := activeSub("w1", "https://example.test/hook", "schedule.updated")
		sub.Active = false
		f.save(t, sub)

		result, err := delivery.NewTester(f.repo, delivery.NewSender(unreachableClient(), time.Second)).Test(ctx, "w1")

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "connection refused")

		stored := f.get(t, "w1")
		assert.Zero(t, stored.DeliveryCount)
		assert.Zero(t, stored.FailureCount)
		assert.True(t, stored.LastTriggered.IsZero())
	})

	t.Run("error - unknown subscription", func(t *testing.T) {
		f := newFixture(t)

		_, err := delivery.NewTester(f.repo, delivery.NewSender(nil, time.Second)).Test(ctx, "missing")

		require.Error(t, err)
		assert.True(t, webhook.IsNotFound(err))
	})
}
