package delivery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marcelsud/webhook-dispatch/delivery"
	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/marcelsud/webhook-dispatch/webhook/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailurePolicy_Evaluate(t *testing.T) {
	ctx := context.Background()
	failing := func(count int64) webhook.Subscription {
		sub := activeSub("w1", "https://example.test/hook", "schedule.updated")
		sub.FailureCount = count
		return sub
	}

	t.Run("below threshold - nothing happens", func(t *testing.T) {
		registry := mocks.NewUseCase(t)
		rec := newRecorder()
		policy := delivery.NewFailurePolicy(registry, 10, rec, zerolog.Nop())

		disabled, err := policy.Evaluate(ctx, failing(9))

		require.NoError(t, err)
		assert.False(t, disabled)
		registry.AssertNotCalled(t, "Deactivate")
		assert.Empty(t, rec.all(webhook.WebhookDisabled))
	})

	t.Run("at threshold - deactivates and notifies once", func(t *testing.T) {
		registry := mocks.NewUseCase(t)
		registry.On("Deactivate", ctx, "w1").Return(true, nil).Once()
		rec := newRecorder()
		policy := delivery.NewFailurePolicy(registry, 10, rec, zerolog.Nop())

		disabled, err := policy.Evaluate(ctx, failing(10))

		require.NoError(t, err)
		assert.True(t, disabled)
		notes := rec.all(webhook.WebhookDisabled)
		require.Len(t, notes, 1)
		assert.Equal(t, "w1", notes[0].WebhookID)
		assert.Equal(t, int64(10), notes[0].FailureCount)
		assert.Equal(t, "10 consecutive delivery failures (threshold 10)", notes[0].Reason)
		assert.False(t, notes[0].Timestamp.IsZero())
	})

	t.Run("already inactive - no second notification", func(t *testing.T) {
		registry := mocks.NewUseCase(t)
		registry.On("Deactivate", ctx, "w1").Return(false, nil).Once()
		rec := newRecorder()
		policy := delivery.NewFailurePolicy(registry, 10, rec, zerolog.Nop())

		disabled, err := policy.Evaluate(ctx, failing(14))

		require.NoError(t, err)
		assert.False(t, disabled)
		assert.Empty(t, rec.all(webhook.WebhookDisabled))
	})

	t.Run("threshold zero disables the policy", func(t *testing.T) {
		registry := mocks.NewUseCase(t)
		policy := delivery.NewFailurePolicy(registry, 0, nil, zerolog.Nop())

		disabled, err := policy.Evaluate(ctx, failing(1000))

		require.NoError(t, err)
		assert.False(t, disabled)
	})

	t.Run("error - registry failure", func(t *testing.T) {
		registry := mocks.NewUseCase(t)
		registry.On("Deactivate", ctx, "w1").Return(false, errors.New("connection refused")).Once()
		rec := newRecorder()
		policy := delivery.NewFailurePolicy(registry, 10, rec, zerolog.Nop())

		_, err := policy.Evaluate(ctx, failing(10))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "deactivating subscription")
		assert.Empty(t, rec.all(webhook.WebhookDisabled))
	})
}
