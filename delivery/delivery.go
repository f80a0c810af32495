// Package delivery fans events out to subscriptions and delivers them over HTTP.
package delivery

import (
	"context"

	"github.com/marcelsud/webhook-dispatch/webhook"
)

// EventTrigger accepts domain events for asynchronous delivery
type EventTrigger interface {
	Trigger(ctx context.Context, eventType string, data any, metadata map[string]any) (TriggerResult, error)
}

// WebhookTester sends a synthetic event straight to one subscription
type WebhookTester interface {
	Test(ctx context.Context, id string) (TestResult, error)
}

// Registry is the part of the subscription registry the delivery path relies on
type Registry interface {
	Get(ctx context.Context, id string) (webhook.Subscription, error)
	RecordOutcome(ctx context.Context, id string, success bool) (webhook.Subscription, error)
	Deactivate(ctx context.Context, id string) (bool, error)
}

// Deliverer performs a single signed HTTP delivery
type Deliverer interface {
	Send(ctx context.Context, sub webhook.Subscription, job webhook.Job) (Result, error)
}

// HeartbeatSink records worker liveness
type HeartbeatSink interface {
	SetWorkerHeartbeat(ctx context.Context, workerID, pool, status string) error
}
