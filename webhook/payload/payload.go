package payload

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-dispatch/eventtypes"
	"github.com/marcelsud/webhook-dispatch/webhook"
)

// WebhookRef identifies the receiving subscription inside the envelope metadata
type WebhookRef struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Envelope is the JSON body POSTed to subscribers
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Metadata  map[string]any  `json:"metadata"`
}

/* New builds the envelope of an event for one subscription
 * Caller metadata is copied and extended with a "webhook" entry
 */
func New(event webhook.Event, sub webhook.Subscription) Envelope {
	metadata := make(map[string]any, len(event.Metadata)+1)
	for k, v := range event.Metadata {
		metadata[k] = v
	}
	metadata["webhook"] = WebhookRef{ID: sub.ID, Description: sub.Description}

	data := event.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	return Envelope{
		ID:        event.ID,
		Type:      event.Type,
		Timestamp: event.Timestamp.UTC(),
		Data:      data,
		Metadata:  metadata,
	}
}

// Validate validates the envelope structure
func (e Envelope) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}

	if err := eventtypes.ValidateName(e.Type); err != nil {
		return fmt.Errorf("invalid type: %w", err)
	}

	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	if len(e.Data) == 0 {
		return fmt.Errorf("data is required")
	}

	// Validate that data is valid JSON
	if !json.Valid(e.Data) {
		return fmt.Errorf("data must be valid JSON")
	}

	return nil
}

// MarshalJSON returns the JSON encoding of the envelope
func (e Envelope) MarshalJSON() ([]byte, error) {
	type Alias Envelope
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: FormatTimestamp(e.Timestamp),
		Alias:     (*Alias)(&e),
	})
}

// UnmarshalJSON parses the JSON-encoded data and stores the result
func (e *Envelope) UnmarshalJSON(data []byte) error {
	type Alias Envelope
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("unmarshaling envelope: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339Nano, aux.Timestamp)
	if err != nil {
		return fmt.Errorf("parsing timestamp: %w", err)
	}
	e.Timestamp = timestamp

	return nil
}

/* Bytes returns the canonical encoding of the envelope
 * Minified, map keys sorted; these exact bytes are signed and sent
 */
func (e Envelope) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// Parse parses a received body into an Envelope
func Parse(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshaling envelope: %w", err)
	}

	if err := env.Validate(); err != nil {
		return Envelope{}, fmt.Errorf("validating envelope: %w", err)
	}

	return env, nil
}

// FormatTimestamp renders timestamps the way they appear on the wire
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
