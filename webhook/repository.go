package webhook

import (
	"context"
	"time"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// Reader provides read operations for subscriptions
type Reader interface {
	/* Get returns a NotFoundError when the id is unknown
	 */
	Get(ctx context.Context, id string) (Subscription, error)
	List(ctx context.Context, filter ListFilter) ([]Subscription, error)
}

// Writer provides write operations for subscriptions
type Writer interface {
	/* Save stores the whole record, replacing any previous one with the same id
	 */
	Save(ctx context.Context, sub Subscription) error
	/* Update writes only the fields the patch sets, plus UpdatedAt, in one atomic step
	 * Fields the patch leaves nil keep whatever the store holds at write time
	 * Counters and LastTriggered are never written here
	 */
	Update(ctx context.Context, id string, patch Patch, at time.Time) (Subscription, error)
	Delete(ctx context.Context, id string) error
}

/* OutcomeRecorder groups the mutations that must be atomic per record
 * Concurrent workers call these for the same subscription
 */
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, id string, success bool, at time.Time) (Subscription, error)
	/* Deactivate flips Active from true to false
	 * Returns false when the subscription was already inactive
	 */
	Deactivate(ctx context.Context, id string, at time.Time) (bool, error)
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Repository interface {
	Reader
	Writer
	OutcomeRecorder
	Close(ctx context.Context) error
}

// Enqueuer accepts delivery jobs
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
	/* EnqueueAfter makes the job visible to consumers once delay has elapsed
	 */
	EnqueueAfter(ctx context.Context, job Job, delay time.Duration) error
}

// Consumer hands out delivery jobs to workers
type Consumer interface {
	/* Dequeue blocks until a job is ready, ctx is done or the queue is closed
	 */
	Dequeue(ctx context.Context) (Job, error)
	/* Ack removes the job from the in-flight set
	 */
	Ack(ctx context.Context, job Job) error
}

// Queue is the durable delivery queue
type Queue interface {
	Enqueuer
	Consumer
	Close(ctx context.Context) error
}

// QueueDepth is a point-in-time view of the delivery queue
type QueueDepth struct {
	Ready    int64 `json:"ready"`
	Delayed  int64 `json:"delayed"`
	InFlight int64 `json:"in_flight"`
}

// DepthReporter is implemented by queues able to report their backlog
type DepthReporter interface {
	Depth(ctx context.Context) (QueueDepth, error)
}
