package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-dispatch/webhook"
)

// TestResult is the raw outcome of an operator test delivery
type TestResult struct {
	WebhookID    string `json:"webhook_id"`
	URL          string `json:"url"`
	EventID      string `json:"event_id"`
	DeliveryID   string `json:"delivery_id"`
	Success      bool   `json:"success"`
	StatusCode   int    `json:"status_code,omitempty"`
	DurationMS   int64  `json:"duration_ms"`
	ResponseBody string `json:"response_body,omitempty"`
	Error        string `json:"error,omitempty"`
}

/* Tester sends test.webhook synchronously, bypassing the queue
 * It never records outcomes or emits notifications, and works on inactive subscriptions
 */
type Tester struct {
	subs   webhook.Reader
	sender Deliverer
	now    func() time.Time
}

// NewTester creates a tester over the registry and a sender
func NewTester(subs webhook.Reader, sender Deliverer) *Tester {
	return &Tester{
		subs:   subs,
		sender: sender,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Test delivers a synthetic event; a failed delivery is reported in the result, not as an error
func (t *Tester) Test(ctx context.Context, id string) (TestResult, error) {
	sub, err := t.subs.Get(ctx, id)
	if err != nil {
		return TestResult{}, fmt.Errorf("loading subscription: %w", err)
	}

	now := t.now()
	data, err := json.Marshal(map[string]any{
		"message":    "This is a test webhook",
		"webhook_id": sub.ID,
	})
	if err != nil {
		return TestResult{}, fmt.Errorf("encoding test data: %w", err)
	}

	job := webhook.Job{
		ID:        uuid.NewString(),
		WebhookID: sub.ID,
		Event: webhook.Event{
			ID:        uuid.NewString(),
			Type:      webhook.TestEventType,
			Timestamp: now,
			Data:      data,
			Metadata:  map[string]any{"test": true},
		},
		Attempt:  1,
		QueuedAt: now,
	}

	res, sendErr := t.sender.Send(ctx, sub, job)
	result := TestResult{
		WebhookID:    sub.ID,
		URL:          sub.URL,
		EventID:      job.Event.ID,
		DeliveryID:   job.ID,
		Success:      sendErr == nil,
		StatusCode:   res.StatusCode,
		DurationMS:   res.Duration.Milliseconds(),
		ResponseBody: res.Body,
	}
	if sendErr != nil {
		result.Error = sendErr.Error()
		var de *webhook.DeliveryError
		if errors.As(sendErr, &de) && de.Timeout() {
			result.Error = "request timed out"
		}
	}
	return result, nil
}
