package webhook

import (
	"slices"
	"time"
)

/* Subscription represents an external endpoint registered to receive events
 * Uses value semantics as it represents data, not behavior
 */
type Subscription struct {
	ID            string
	URL           string
	Events        []string
	Secret        string
	Active        bool
	Description   string
	Metadata      map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeliveryCount int64
	FailureCount  int64
	LastTriggered time.Time
}

// Wants reports whether the subscription listens to the given event type
func (s Subscription) Wants(eventType string) bool {
	return slices.Contains(s.Events, eventType)
}

/* Patch carries a partial update of a subscription
 * nil fields are left untouched
 */
type Patch struct {
	URL         *string
	Events      []string
	Secret      *string
	Active      *bool
	Description *string
	Metadata    map[string]string
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.URL == nil && p.Events == nil && p.Secret == nil &&
		p.Active == nil && p.Description == nil && p.Metadata == nil
}

// Apply merges the patch into a copy of the subscription
func (p Patch) Apply(s Subscription) Subscription {
	if p.URL != nil {
		s.URL = *p.URL
	}
	if p.Events != nil {
		s.Events = normalizeEvents(p.Events)
	}
	if p.Secret != nil {
		s.Secret = *p.Secret
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Metadata != nil {
		s.Metadata = p.Metadata
	}
	return s
}

// ListFilter narrows List results; zero value matches everything
type ListFilter struct {
	Active *bool
	Event  string
}

// Match reports whether the subscription passes the filter
func (f ListFilter) Match(s Subscription) bool {
	if f.Active != nil && s.Active != *f.Active {
		return false
	}
	if f.Event != "" && !s.Wants(f.Event) {
		return false
	}
	return true
}

// SortSubscriptions orders subscriptions by creation time, then id
func SortSubscriptions(subs []Subscription) {
	slices.SortFunc(subs, func(a, b Subscription) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

func normalizeEvents(events []string) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
