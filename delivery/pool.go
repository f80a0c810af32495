package delivery

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/marcelsud/webhook-dispatch/retry"
	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/rs/zerolog"
)

const (
	WorkerIdle       = "idle"
	WorkerProcessing = "processing"

	DefaultWorkerCount       = 4
	DefaultHeartbeatInterval = 30 * time.Second

	dequeueErrorBackoff = time.Second
)

// PoolConfig holds the worker pool settings
type PoolConfig struct {
	// Name identifies the pool in heartbeats and logs
	Name        string
	WorkerCount int
	Retry       retry.Strategy
}

// PoolOption configures optional pool collaborators
type PoolOption func(*Pool)

// WithObserver sets the notification observer
func WithObserver(observer webhook.Observer) PoolOption {
	return func(p *Pool) {
		p.observer = observer
	}
}

// WithHeartbeats publishes worker status to sink every interval
func WithHeartbeats(sink HeartbeatSink, interval time.Duration) PoolOption {
	return func(p *Pool) {
		p.heartbeats = sink
		if interval > 0 {
			p.heartbeatInterval = interval
		}
	}
}

/* Pool is a bounded set of workers draining the delivery queue
 * Each job is delivered at most once per dequeue; failures are rescheduled
 * through the queue, never retried in place
 */
type Pool struct {
	registry Registry
	queue    webhook.Queue
	sender   Deliverer
	policy   *FailurePolicy
	cfg      PoolConfig
	logger   zerolog.Logger

	observer          webhook.Observer
	heartbeats        HeartbeatSink
	heartbeatInterval time.Duration

	mu       sync.Mutex
	statuses map[string]string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	now    func() time.Time
}

// NewPool creates a worker pool; call Start to begin processing
func NewPool(registry Registry, queue webhook.Queue, sender Deliverer, policy *FailurePolicy, cfg PoolConfig, logger zerolog.Logger, opts ...PoolOption) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.Name == "" {
		cfg.Name = "delivery"
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		registry:          registry,
		queue:             queue,
		sender:            sender,
		policy:            policy,
		cfg:               cfg,
		logger:            logger.With().Str("pool", cfg.Name).Logger(),
		observer:          webhook.Observers{},
		heartbeatInterval: DefaultHeartbeatInterval,
		statuses:          make(map[string]string),
		ctx:               ctx,
		cancel:            cancel,
		now:               func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers
func (p *Pool) Start() {
	p.logger.Info().
		Int("workers", p.cfg.WorkerCount).
		Str("retry", p.cfg.Retry.String()).
		Msg("starting delivery workers")

	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(fmt.Sprintf("%s-%d", p.cfg.Name, i))
	}

	if p.heartbeats != nil {
		p.wg.Add(1)
		go p.heartbeatLoop()
	}
}

// Stop stops dequeuing and waits for in-flight deliveries to finish
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info().Msg("delivery workers stopped")
}

func (p *Pool) worker(id string) {
	defer p.wg.Done()

	logger := p.logger.With().Str("worker_id", id).Logger()
	logger.Debug().Msg("starting worker")
	p.setStatus(id, WorkerIdle)

	for {
		job, err := p.queue.Dequeue(p.ctx)
		if err != nil {
			if p.ctx.Err() != nil || errors.Is(err, webhook.ErrQueueClosed) {
				logger.Debug().Msg("stopping worker")
				return
			}
			logger.Error().Err(err).Msg("dequeuing job")
			select {
			case <-p.ctx.Done():
				return
			case <-time.After(dequeueErrorBackoff):
			}
			continue
		}

		p.setStatus(id, WorkerProcessing)
		p.safeProcess(job, logger)
		p.setStatus(id, WorkerIdle)
	}
}

func (p *Pool) safeProcess(job webhook.Job, logger zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("job_id", job.ID).
				Interface("panic", r).
				Msg("recovered panic while processing job")
			p.abandon(job, fmt.Errorf("panic during processing: %v", r), logger)
		}
	}()
	p.process(job, logger)
}

// abandon acknowledges a job whose processing panicked and reports it as a terminal failure
func (p *Pool) abandon(job webhook.Job, err error, logger zerolog.Logger) {
	ctx := context.WithoutCancel(p.ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("job_id", job.ID).Interface("panic", r).Msg("recovered panic while reporting abandoned job")
		}
	}()

	p.ack(ctx, job, logger)

	n := p.notification(webhook.DeliveryFailed, webhook.Subscription{ID: job.WebhookID}, job, Result{}, err)
	n.Terminal = true
	n.Reason = "panic during processing"
	p.observer.Notify(ctx, n)
	logger.Info().Str("job_id", job.ID).Str("status", webhook.Failed.String()).Str("reason", n.Reason).Msg("job failed")
}

// process runs one job to its outcome; in-flight work ignores pool shutdown
func (p *Pool) process(job webhook.Job, logger zerolog.Logger) {
	ctx := context.WithoutCancel(p.ctx)
	logger = logger.With().
		Str("job_id", job.ID).
		Str("webhook_id", job.WebhookID).
		Str("event_type", job.Event.Type).
		Int("attempt", job.Attempt).
		Logger()

	sub, err := p.registry.Get(ctx, job.WebhookID)
	switch {
	case webhook.IsNotFound(err):
		p.drop(ctx, job, "subscription deleted", logger)
		return
	case err != nil:
		logger.Error().Err(err).Msg("resolving subscription, rescheduling")
		p.reschedule(ctx, job, job, p.cfg.Retry.BaseDelay, logger)
		return
	case !sub.Active:
		p.drop(ctx, job, "subscription inactive", logger)
		return
	}

	result, sendErr := p.send(ctx, sub, job)
	if sendErr == nil {
		p.succeed(ctx, sub, job, result, logger)
		return
	}
	p.fail(ctx, sub, job, result, sendErr, logger)
}

func (p *Pool) send(ctx context.Context, sub webhook.Subscription, job webhook.Job) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &webhook.DeliveryError{Err: fmt.Errorf("panic during delivery: %v", r)}
		}
	}()
	return p.sender.Send(ctx, sub, job)
}

func (p *Pool) succeed(ctx context.Context, sub webhook.Subscription, job webhook.Job, result Result, logger zerolog.Logger) {
	if _, err := p.registry.RecordOutcome(ctx, sub.ID, true); err != nil && !webhook.IsNotFound(err) {
		logger.Error().Err(err).Msg("recording delivery success")
	}

	p.observer.Notify(ctx, p.notification(webhook.DeliverySucceeded, sub, job, result, nil))
	p.ack(ctx, job, logger)
	logger.Debug().Str("status", webhook.Delivered.String()).Int("status_code", result.StatusCode).Msg("job finished")
}

func (p *Pool) fail(ctx context.Context, sub webhook.Subscription, job webhook.Job, result Result, sendErr error, logger zerolog.Logger) {
	updated, err := p.registry.RecordOutcome(ctx, sub.ID, false)
	switch {
	case webhook.IsNotFound(err):
		p.drop(ctx, job, "subscription deleted during delivery", logger)
		return
	case err != nil:
		logger.Error().Err(err).Msg("recording delivery failure")
		updated = sub
	}

	n := p.notification(webhook.DeliveryFailed, updated, job, result, sendErr)
	n.FailureCount = updated.FailureCount

	if p.cfg.Retry.ShouldRetry(job.Attempt) && updated.Active {
		delay := p.cfg.Retry.Delay(job.Attempt)
		if !p.reschedule(ctx, job, job.Next(p.now()), delay, logger) {
			p.observer.Notify(ctx, n)
			return
		}
		n.WillRetry = true
		n.RetryDelay = delay
		p.observer.Notify(ctx, n)
		logger.Debug().Str("status", webhook.Retrying.String()).Dur("delay", delay).Err(sendErr).Msg("job rescheduled")
		return
	}

	n.Terminal = true
	if updated.Active {
		n.Reason = "attempts exhausted"
	} else {
		n.Reason = "subscription inactive"
	}
	p.observer.Notify(ctx, n)

	if p.policy != nil {
		if _, err := p.policy.Evaluate(ctx, updated); err != nil {
			logger.Error().Err(err).Msg("evaluating failure policy")
		}
	}
	p.ack(ctx, job, logger)
	logger.Info().Str("status", webhook.Failed.String()).Str("reason", n.Reason).Err(sendErr).Msg("job failed")
}

// reschedule enqueues next after delay and acknowledges current; on enqueue
// failure current stays unacknowledged and the queue hands it out again once
// its reclaim idle elapses
func (p *Pool) reschedule(ctx context.Context, current, next webhook.Job, delay time.Duration, logger zerolog.Logger) bool {
	next.Receipt = ""
	if err := p.queue.EnqueueAfter(ctx, next, delay); err != nil {
		logger.Error().Err(err).Msg("scheduling retry")
		return false
	}
	p.ack(ctx, current, logger)
	return true
}

func (p *Pool) drop(ctx context.Context, job webhook.Job, reason string, logger zerolog.Logger) {
	p.ack(ctx, job, logger)
	logger.Debug().Str("status", webhook.Dropped.String()).Str("reason", reason).Msg("job dropped")
}

func (p *Pool) ack(ctx context.Context, job webhook.Job, logger zerolog.Logger) {
	if err := p.queue.Ack(ctx, job); err != nil {
		logger.Error().Err(err).Msg("acknowledging job")
	}
}

func (p *Pool) notification(kind webhook.NotificationKind, sub webhook.Subscription, job webhook.Job, result Result, err error) webhook.Notification {
	return webhook.Notification{
		Kind:       kind,
		WebhookID:  sub.ID,
		URL:        sub.URL,
		JobID:      job.ID,
		EventID:    job.Event.ID,
		EventType:  job.Event.Type,
		Attempt:    job.Attempt,
		StatusCode: result.StatusCode,
		Duration:   result.Duration,
		Err:        err,
		Timestamp:  p.now(),
	}
}

func (p *Pool) setStatus(workerID, status string) {
	if p.heartbeats == nil {
		return
	}

	p.mu.Lock()
	p.statuses[workerID] = status
	p.mu.Unlock()

	p.publish(workerID, status)
}

func (p *Pool) heartbeatLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			statuses := maps.Clone(p.statuses)
			p.mu.Unlock()

			for id, status := range statuses {
				p.publish(id, status)
			}
		}
	}
}

func (p *Pool) publish(workerID, status string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), 5*time.Second)
	defer cancel()

	if err := p.heartbeats.SetWorkerHeartbeat(ctx, workerID, p.cfg.Name, status); err != nil {
		p.logger.Warn().Err(err).Str("worker_id", workerID).Msg("publishing heartbeat")
	}
}
