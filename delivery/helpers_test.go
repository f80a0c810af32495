package delivery_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/webhook-dispatch/delivery"
	"github.com/marcelsud/webhook-dispatch/eventtypes"
	"github.com/marcelsud/webhook-dispatch/retry"
	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/marcelsud/webhook-dispatch/webhook/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

// recorder collects notifications and lets tests wait for specific ones
type recorder struct {
	mu    sync.Mutex
	items []webhook.Notification
	ch    chan webhook.Notification
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan webhook.Notification, 256)}
}

func (r *recorder) Notify(ctx context.Context, n webhook.Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
	r.ch <- n
}

func (r *recorder) wait(t *testing.T, match func(webhook.Notification) bool) webhook.Notification {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case n := <-r.ch:
			if match(n) {
				return n
			}
		case <-deadline:
			t.Fatal("timed out waiting for notification")
			return webhook.Notification{}
		}
	}
}

func (r *recorder) all(kind webhook.NotificationKind) []webhook.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []webhook.Notification
	for _, n := range r.items {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func isKind(kind webhook.NotificationKind) func(webhook.Notification) bool {
	return func(n webhook.Notification) bool { return n.Kind == kind }
}

func isTerminal(n webhook.Notification) bool {
	return n.Kind == webhook.DeliveryFailed && n.Terminal
}

type senderFunc func(ctx context.Context, sub webhook.Subscription, job webhook.Job) (delivery.Result, error)

func (f senderFunc) Send(ctx context.Context, sub webhook.Subscription, job webhook.Job) (delivery.Result, error) {
	return f(ctx, sub, job)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// unreachableClient fails every request at the transport level
func unreachableClient() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})}
}

func fastRetry(maxRetries int) retry.Strategy {
	return retry.Strategy{
		MaxRetries:      maxRetries,
		BaseDelay:       5 * time.Millisecond,
		MaxDelay:        time.Second,
		ExponentialBase: 2.0,
	}
}

type fixture struct {
	repo       *memory.Repository
	queue      *memory.Queue
	service    *webhook.Service
	dispatcher *delivery.Dispatcher
	rec        *recorder
}

func newFixture(t *testing.T) *fixture {
	catalog := eventtypes.Default()
	repo := memory.NewRepository()
	queue := memory.NewQueue()
	t.Cleanup(func() { _ = queue.Close(context.Background()) })

	return &fixture{
		repo:       repo,
		queue:      queue,
		service:    webhook.NewService(repo, catalog),
		dispatcher: delivery.NewDispatcher(repo, queue, catalog, zerolog.Nop()),
		rec:        newRecorder(),
	}
}

func (f *fixture) save(t *testing.T, sub webhook.Subscription) {
	t.Helper()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
		sub.UpdatedAt = sub.CreatedAt
	}
	require.NoError(t, f.repo.Save(context.Background(), sub))
}

func (f *fixture) get(t *testing.T, id string) webhook.Subscription {
	t.Helper()
	sub, err := f.repo.Get(context.Background(), id)
	require.NoError(t, err)
	return sub
}

func (f *fixture) startPool(t *testing.T, sender delivery.Deliverer, strategy retry.Strategy, threshold, workers int, opts ...delivery.PoolOption) *delivery.Pool {
	t.Helper()
	policy := delivery.NewFailurePolicy(f.service, threshold, f.rec, zerolog.Nop())
	opts = append([]delivery.PoolOption{delivery.WithObserver(f.rec)}, opts...)
	pool := delivery.NewPool(f.service, f.queue, sender, policy,
		delivery.PoolConfig{Name: "test", WorkerCount: workers, Retry: strategy},
		zerolog.Nop(), opts...)
	pool.Start()
	t.Cleanup(pool.Stop)
	return pool
}

func (f *fixture) drained(t *testing.T) bool {
	depth, err := f.queue.Depth(context.Background())
	require.NoError(t, err)
	return depth == webhook.QueueDepth{}
}

func activeSub(id, url string, events ...string) webhook.Subscription {
	return webhook.Subscription{
		ID:     id,
		URL:    url,
		Events: events,
		Secret: "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw",
		Active: true,
	}
}
