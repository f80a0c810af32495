package webhook

import (
	"encoding/json"
	"time"
)

// TestEventType is the synthetic event sent by the operator test path
const TestEventType = "test.webhook"

/* Event is an immutable, typed occurrence in the domain
 * It is never stored on its own, only embedded in the jobs it spawns
 */
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
}

/* Job is one delivery attempt of an event to a subscription
 * The ID is shared by every attempt of the same retry chain
 */
type Job struct {
	ID        string    `json:"id"`
	WebhookID string    `json:"webhook_id"`
	Event     Event     `json:"event"`
	Attempt   int       `json:"attempt"`
	QueuedAt  time.Time `json:"queued_at"`

	// Receipt is the queue handle used to acknowledge the job
	Receipt string `json:"-"`
}

// Next returns the job for the following attempt of the chain
func (j Job) Next(now time.Time) Job {
	return Job{
		ID:        j.ID,
		WebhookID: j.WebhookID,
		Event:     j.Event,
		Attempt:   j.Attempt + 1,
		QueuedAt:  now,
	}
}
