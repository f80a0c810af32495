//go:build integration

package webhook

import (
	"fmt"
	"testing"
	"time"
)

// GenerateID generates a unique subscription ID for testing
func GenerateID(t *testing.T, index int) string {
	t.Helper()
	return fmt.Sprintf("test-sub-%d-%d", index, time.Now().UnixNano())
}

// NewTestSubscription builds an active subscription ready to be saved by a backend
func NewTestSubscription(t *testing.T, index int, events ...string) Subscription {
	t.Helper()
	if len(events) == 0 {
		events = []string{"schedule.updated"}
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	return Subscription{
		ID:          GenerateID(t, index),
		URL:         fmt.Sprintf("https://hooks.example.com/%d", index),
		Events:      events,
		Secret:      "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw",
		Active:      true,
		Description: fmt.Sprintf("integration subscriber %d", index),
		Metadata:    map[string]string{"team": "scheduling"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
