package webhook

import (
	"context"
	"time"
)

// NotificationKind identifies what happened to a delivery or subscription
type NotificationKind int

const (
	DeliverySucceeded NotificationKind = iota + 1
	DeliveryFailed
	WebhookDisabled
)

// String returns the notification name as seen by observers
func (k NotificationKind) String() string {
	switch k {
	case DeliverySucceeded:
		return "delivery.success"
	case DeliveryFailed:
		return "delivery.failure"
	case WebhookDisabled:
		return "webhook.disabled"
	default:
		return "unknown"
	}
}

/* Notification is emitted by the worker pool and the failure policy
 * Delivery fields are empty for WebhookDisabled
 */
type Notification struct {
	Kind       NotificationKind
	WebhookID  string
	URL        string
	JobID      string
	EventID    string
	EventType  string
	Attempt    int
	StatusCode int
	Duration   time.Duration
	Err        error

	// WillRetry is set on failures that scheduled another attempt
	WillRetry  bool
	RetryDelay time.Duration
	// Terminal is set on failures that exhausted every attempt
	Terminal bool

	Reason       string
	FailureCount int64
	Timestamp    time.Time
}

// Observer receives notifications; implementations must not block for long
type Observer interface {
	Notify(ctx context.Context, n Notification)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(ctx context.Context, n Notification)

// Notify calls f(ctx, n)
func (f ObserverFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// Observers fans a notification out to every observer in order
type Observers []Observer

// Notify implements Observer
func (o Observers) Notify(ctx context.Context, n Notification) {
	for _, obs := range o {
		if obs != nil {
			obs.Notify(ctx, n)
		}
	}
}
