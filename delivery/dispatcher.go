package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/rs/zerolog"
)

// TriggerResult reports the fan-out of one event
type TriggerResult struct {
	EventID         string   `json:"event_id"`
	SubscriberCount int      `json:"subscriber_count"`
	Failed          []string `json:"failed,omitempty"`
}

// Dispatcher turns events into one delivery job per interested subscription
type Dispatcher struct {
	subs   webhook.Reader
	queue  webhook.Enqueuer
	vocab  webhook.Vocabulary
	logger zerolog.Logger
	now    func() time.Time
}

// NewDispatcher creates a dispatcher over the registry and the delivery queue
func NewDispatcher(subs webhook.Reader, queue webhook.Enqueuer, vocab webhook.Vocabulary, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		subs:   subs,
		queue:  queue,
		vocab:  vocab,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

/* Trigger enqueues the event for every active subscription listening to eventType
 * It returns once the jobs are queued; an enqueue failure for one subscriber is
 * logged and listed in Failed without affecting the others
 */
func (d *Dispatcher) Trigger(ctx context.Context, eventType string, data any, metadata map[string]any) (TriggerResult, error) {
	if !d.vocab.Contains(eventType) {
		return TriggerResult{}, &webhook.UnknownEventTypeError{Type: eventType}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return TriggerResult{}, webhook.NewValidationError("data", err.Error())
	}

	event := webhook.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: d.now(),
		Data:      raw,
		Metadata:  maps.Clone(metadata),
	}

	active := true
	subs, err := d.subs.List(ctx, webhook.ListFilter{Active: &active, Event: eventType})
	if err != nil {
		return TriggerResult{}, fmt.Errorf("resolving subscribers: %w", err)
	}

	result := TriggerResult{EventID: event.ID, SubscriberCount: len(subs)}
	for _, sub := range subs {
		job := webhook.Job{
			ID:        uuid.NewString(),
			WebhookID: sub.ID,
			Event:     event,
			Attempt:   1,
			QueuedAt:  event.Timestamp,
		}
		if err := d.queue.Enqueue(ctx, job); err != nil {
			d.logger.Error().Err(err).
				Str("event_id", event.ID).
				Str("webhook_id", sub.ID).
				Msg("enqueueing delivery job")
			result.Failed = append(result.Failed, sub.ID)
		}
	}

	d.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", eventType).
		Int("subscribers", result.SubscriberCount).
		Int("failed", len(result.Failed)).
		Msg("event dispatched")
	return result, nil
}
