package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/marcelsud/webhook-dispatch/webhook"
)

/* Queue is an in-process delivery queue
 * Jobs are lost on restart; use the Redis queue for durability
 * With a reclaim idle set, jobs left unacknowledged that long are handed out again
 */
type Queue struct {
	mu          sync.Mutex
	ready       []webhook.Job
	inflight    map[string]inflightJob
	timers      map[*time.Timer]struct{}
	seq         uint64
	closed      bool
	reclaimIdle time.Duration

	notify chan struct{}
	done   chan struct{}
}

type inflightJob struct {
	job   webhook.Job
	since time.Time
}

// QueueOption configures a Queue
type QueueOption func(*Queue)

// WithReclaimIdle redelivers jobs unacknowledged for longer than idle; zero disables it
func WithReclaimIdle(idle time.Duration) QueueOption {
	return func(q *Queue) {
		q.reclaimIdle = idle
	}
}

// NewQueue creates an empty in-memory queue
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		inflight: make(map[string]inflightJob),
		timers:   make(map[*time.Timer]struct{}),
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue makes the job immediately available
func (q *Queue) Enqueue(ctx context.Context, job webhook.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return webhook.ErrQueueClosed
	}
	q.push(job)
	return nil
}

// EnqueueAfter makes the job available once delay has elapsed
func (q *Queue) EnqueueAfter(ctx context.Context, job webhook.Job, delay time.Duration) error {
	if delay <= 0 {
		return q.Enqueue(ctx, job)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return webhook.ErrQueueClosed
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		q.mu.Lock()
		defer q.mu.Unlock()

		delete(q.timers, timer)
		if !q.closed {
			q.push(job)
		}
	})
	q.timers[timer] = struct{}{}
	return nil
}

// Dequeue blocks until a job is ready, ctx is done or the queue is closed
func (q *Queue) Dequeue(ctx context.Context) (webhook.Job, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return webhook.Job{}, webhook.ErrQueueClosed
		}
		now := time.Now()
		q.reclaim(now)
		if len(q.ready) > 0 {
			job := q.ready[0]
			q.ready[0] = webhook.Job{}
			q.ready = q.ready[1:]
			q.inflight[job.Receipt] = inflightJob{job: job, since: now}
			if len(q.ready) > 0 {
				q.signal()
			}
			q.mu.Unlock()
			return job, nil
		}
		wait := q.nextReclaim(now)
		q.mu.Unlock()

		var timer *time.Timer
		var expired <-chan time.Time
		if wait > 0 {
			timer = time.NewTimer(wait)
			expired = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return webhook.Job{}, ctx.Err()
		case <-q.done:
			stopTimer(timer)
			return webhook.Job{}, webhook.ErrQueueClosed
		case <-q.notify:
			stopTimer(timer)
		case <-expired:
		}
	}
}

// Ack removes the job from the in-flight set
func (q *Queue) Ack(ctx context.Context, job webhook.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.inflight, job.Receipt)
	return nil
}

// Depth reports the number of ready, delayed and unacknowledged jobs
func (q *Queue) Depth(ctx context.Context) (webhook.QueueDepth, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return webhook.QueueDepth{
		Ready:    int64(len(q.ready)),
		Delayed:  int64(len(q.timers)),
		InFlight: int64(len(q.inflight)),
	}, nil
}

// Close stops pending timers and wakes every blocked consumer
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	for timer := range q.timers {
		timer.Stop()
	}
	clear(q.timers)
	close(q.done)
	return nil
}

// reclaim moves stale in-flight jobs back to ready under a new receipt; mu must be held
func (q *Queue) reclaim(now time.Time) {
	if q.reclaimIdle <= 0 {
		return
	}
	for receipt, entry := range q.inflight {
		if now.Sub(entry.since) < q.reclaimIdle {
			continue
		}
		delete(q.inflight, receipt)
		q.push(entry.job)
	}
}

// nextReclaim returns how long until the oldest in-flight job goes stale, zero when none will
func (q *Queue) nextReclaim(now time.Time) time.Duration {
	if q.reclaimIdle <= 0 {
		return 0
	}
	var wait time.Duration
	for _, entry := range q.inflight {
		d := q.reclaimIdle - now.Sub(entry.since)
		if d <= 0 {
			d = time.Millisecond
		}
		if wait == 0 || d < wait {
			wait = d
		}
	}
	return wait
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// push must be called with mu held
func (q *Queue) push(job webhook.Job) {
	q.seq++
	job.Receipt = strconv.FormatUint(q.seq, 10)
	q.ready = append(q.ready, job)
	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
