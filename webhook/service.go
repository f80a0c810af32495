package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-dispatch/webhook/signature"
)

/* Service represents the subscription registry business logic
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the business operations for subscription management
type UseCase interface {
	Register(ctx context.Context, sub Subscription) (Subscription, error)
	Update(ctx context.Context, id string, patch Patch) (Subscription, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Subscription, error)
	List(ctx context.Context, filter ListFilter) ([]Subscription, error)
	RecordOutcome(ctx context.Context, id string, success bool) (Subscription, error)
	Deactivate(ctx context.Context, id string) (bool, error)
}

type Service struct {
	Repo  Repository
	Vocab Vocabulary
	now   func() time.Time
}

// NewService creates a new subscription service with dependency injection
func NewService(repo Repository, vocab Vocabulary) *Service {
	return &Service{
		Repo:  repo,
		Vocab: vocab,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Register validates and stores a subscription, generating its id and secret when absent
// The returned record carries the secret; callers must hand it over only once
func (s *Service) Register(ctx context.Context, sub Subscription) (Subscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Secret == "" {
		secret, err := signature.GenerateSecret(signature.DefaultSecretBytes)
		if err != nil {
			return Subscription{}, fmt.Errorf("generating secret: %w", err)
		}
		sub.Secret = secret.String()
	}
	sub.Events = normalizeEvents(sub.Events)

	if err := validateSubscription(sub, s.Vocab); err != nil {
		return Subscription{}, err
	}

	now := s.now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	sub.DeliveryCount = 0
	sub.FailureCount = 0
	sub.LastTriggered = time.Time{}

	if err := s.Repo.Save(ctx, sub); err != nil {
		return Subscription{}, fmt.Errorf("storing subscription: %w", err)
	}
	return sub, nil
}

// Update validates a partial update against the current record and persists only the patched fields
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Subscription, error) {
	if patch.IsEmpty() {
		return Subscription{}, NewValidationError("patch", "no fields to update")
	}
	if patch.Events != nil {
		patch.Events = normalizeEvents(patch.Events)
	}

	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Subscription{}, fmt.Errorf("loading subscription: %w", err)
	}
	if err := validateSubscription(patch.Apply(current), s.Vocab); err != nil {
		return Subscription{}, err
	}

	// Active set concurrently by the failure policy survives unless the patch names it
	updated, err := s.Repo.Update(ctx, id, patch, s.now())
	if err != nil {
		return Subscription{}, fmt.Errorf("updating subscription: %w", err)
	}
	return updated, nil
}

// Delete removes a subscription; jobs already queued for it are dropped by the workers
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}
	return nil
}

// Get returns a subscription by id
func (s *Service) Get(ctx context.Context, id string) (Subscription, error) {
	sub, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Subscription{}, fmt.Errorf("getting subscription: %w", err)
	}
	return sub, nil
}

// List returns the subscriptions matching the filter
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Subscription, error) {
	if filter.Event != "" && !s.Vocab.Contains(filter.Event) {
		return nil, &UnknownEventTypeError{Type: filter.Event}
	}
	subs, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return subs, nil
}

// RecordOutcome counts a delivery attempt against the subscription
func (s *Service) RecordOutcome(ctx context.Context, id string, success bool) (Subscription, error) {
	sub, err := s.Repo.RecordOutcome(ctx, id, success, s.now())
	if err != nil {
		return Subscription{}, fmt.Errorf("recording outcome: %w", err)
	}
	return sub, nil
}

// Deactivate turns an active subscription off; reports whether this call changed it
func (s *Service) Deactivate(ctx context.Context, id string) (bool, error) {
	changed, err := s.Repo.Deactivate(ctx, id, s.now())
	if err != nil {
		return false, fmt.Errorf("deactivating subscription: %w", err)
	}
	return changed, nil
}
