package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/rs/zerolog"
)

// DefaultDisableThreshold is the consecutive failure count that disables a subscription
const DefaultDisableThreshold = 10

// Deactivator turns a subscription off, reporting whether the call changed it
type Deactivator interface {
	Deactivate(ctx context.Context, id string) (bool, error)
}

// FailurePolicy disables subscriptions whose endpoint keeps failing
type FailurePolicy struct {
	registry  Deactivator
	observer  webhook.Observer
	threshold int64
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFailurePolicy creates the policy; a threshold <= 0 never disables anything
func NewFailurePolicy(registry Deactivator, threshold int, observer webhook.Observer, logger zerolog.Logger) *FailurePolicy {
	if observer == nil {
		observer = webhook.Observers{}
	}
	return &FailurePolicy{
		registry:  registry,
		observer:  observer,
		threshold: int64(threshold),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

/* Evaluate runs after a terminal failure with the freshly recorded subscription
 * Only the call that actually flips Active emits webhook.disabled
 */
func (p *FailurePolicy) Evaluate(ctx context.Context, sub webhook.Subscription) (bool, error) {
	if p.threshold <= 0 || sub.FailureCount < p.threshold {
		return false, nil
	}

	changed, err := p.registry.Deactivate(ctx, sub.ID)
	if err != nil {
		return false, fmt.Errorf("deactivating subscription: %w", err)
	}
	if !changed {
		return false, nil
	}

	reason := fmt.Sprintf("%d consecutive delivery failures (threshold %d)", sub.FailureCount, p.threshold)
	p.logger.Warn().
		Str("webhook_id", sub.ID).
		Str("url", sub.URL).
		Int64("failure_count", sub.FailureCount).
		Msg("subscription disabled: " + reason)

	p.observer.Notify(ctx, webhook.Notification{
		Kind:         webhook.WebhookDisabled,
		WebhookID:    sub.ID,
		URL:          sub.URL,
		Reason:       reason,
		FailureCount: sub.FailureCount,
		Timestamp:    p.now(),
	})
	return true, nil
}
