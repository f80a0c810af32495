package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/marcelsud/webhook-dispatch/webhook"
)

// Repository is an in-process subscription registry guarded by a single mutex
type Repository struct {
	mu   sync.Mutex
	subs map[string]webhook.Subscription
}

// NewRepository creates an empty in-memory registry
func NewRepository() *Repository {
	return &Repository{subs: make(map[string]webhook.Subscription)}
}

// Save stores the whole record, replacing any previous one
func (r *Repository) Save(ctx context.Context, sub webhook.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs[sub.ID] = clone(sub)
	return nil
}

// Update applies the patch to the stored record under the lock
func (r *Repository) Update(ctx context.Context, id string, patch webhook.Patch, at time.Time) (webhook.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.subs[id]
	if !ok {
		return webhook.Subscription{}, &webhook.NotFoundError{ID: id}
	}

	current = clone(patch.Apply(current))
	current.UpdatedAt = at
	r.subs[id] = current
	return clone(current), nil
}

// Delete removes a subscription
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[id]; !ok {
		return &webhook.NotFoundError{ID: id}
	}
	delete(r.subs, id)
	return nil
}

// Get returns a copy of the stored subscription
func (r *Repository) Get(ctx context.Context, id string) (webhook.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return webhook.Subscription{}, &webhook.NotFoundError{ID: id}
	}
	return clone(sub), nil
}

// List returns the subscriptions matching the filter ordered by creation time
func (r *Repository) List(ctx context.Context, filter webhook.ListFilter) ([]webhook.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := make([]webhook.Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		if filter.Match(sub) {
			subs = append(subs, clone(sub))
		}
	}
	webhook.SortSubscriptions(subs)
	return subs, nil
}

// RecordOutcome updates the delivery counters under the lock
func (r *Repository) RecordOutcome(ctx context.Context, id string, success bool, at time.Time) (webhook.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return webhook.Subscription{}, &webhook.NotFoundError{ID: id}
	}

	sub.DeliveryCount++
	if success {
		sub.FailureCount = 0
	} else {
		sub.FailureCount++
	}
	sub.LastTriggered = at
	r.subs[id] = sub
	return clone(sub), nil
}

// Deactivate flips Active from true to false; reports whether it changed
func (r *Repository) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return false, &webhook.NotFoundError{ID: id}
	}
	if !sub.Active {
		return false, nil
	}

	sub.Active = false
	sub.UpdatedAt = at
	r.subs[id] = sub
	return true, nil
}

// Close is a no-op
func (r *Repository) Close(ctx context.Context) error {
	return nil
}

func clone(s webhook.Subscription) webhook.Subscription {
	s.Events = slices.Clone(s.Events)
	s.Metadata = maps.Clone(s.Metadata)
	return s
}
