package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

/* Redis Streams implementation of webhook.Queue
 * Ready jobs live in a stream consumed through a consumer group
 * Delayed jobs wait in a sorted set scored by due time until promoted into the stream
 * Entries left unacknowledged longer than ReclaimIdle are claimed again (at-least-once)
 */

const (
	ReadyStream   = "deliveries:ready"   // Stream of jobs that can be delivered now
	DelayedSet    = "deliveries:delayed" // ZSET of retries, score = due time in ms
	ConsumerGroup = "delivery-workers"

	DefaultReclaimIdle = 5 * time.Minute

	jobField     = "job"
	promoteBatch = 100
	defaultBlock = time.Second
)

// promote moves due members of the delayed set into the stream
var promote = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
for _, member in ipairs(due) do
	if redis.call('ZREM', KEYS[1], member) == 1 then
		redis.call('XADD', KEYS[2], '*', 'job', member)
	end
end
return #due
`)

// QueueConfig holds the consumer settings
type QueueConfig struct {
	// Consumer names this process inside the consumer group
	Consumer    string
	ReclaimIdle time.Duration
	// Block bounds a single XREADGROUP wait and so the promotion latency of retries
	Block time.Duration
}

type Queue struct {
	client *redis.Client
	cfg    QueueConfig
	logger zerolog.Logger
	closed atomic.Bool
}

// NewQueue creates the consumer group if needed and returns the queue
func NewQueue(ctx context.Context, client *redis.Client, cfg QueueConfig, logger zerolog.Logger) (*Queue, error) {
	if cfg.Consumer == "" {
		cfg.Consumer = "worker"
	}
	if cfg.ReclaimIdle <= 0 {
		cfg.ReclaimIdle = DefaultReclaimIdle
	}
	if cfg.Block <= 0 {
		cfg.Block = defaultBlock
	}

	err := client.XGroupCreateMkStream(ctx, ReadyStream, ConsumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("creating consumer group: %w", err)
	}

	return &Queue{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("queue", ReadyStream).Str("consumer", cfg.Consumer).Logger(),
	}, nil
}

// Enqueue adds the job to the ready stream
func (q *Queue) Enqueue(ctx context.Context, job webhook.Job) error {
	data, err := encodeJob(job)
	if err != nil {
		return err
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: ReadyStream,
		Values: map[string]any{jobField: data},
	}).Err()
	if err != nil {
		return fmt.Errorf("adding to stream: %w", err)
	}

	return nil
}

// EnqueueAfter parks the job in the delayed set until delay has elapsed
func (q *Queue) EnqueueAfter(ctx context.Context, job webhook.Job, delay time.Duration) error {
	if delay <= 0 {
		return q.Enqueue(ctx, job)
	}

	data, err := encodeJob(job)
	if err != nil {
		return err
	}

	due := time.Now().Add(delay).UnixMilli()
	err = q.client.ZAdd(ctx, DelayedSet, redis.Z{Score: float64(due), Member: data}).Err()
	if err != nil {
		return fmt.Errorf("scheduling delayed job: %w", err)
	}

	return nil
}

// Dequeue blocks until a job is ready, ctx is done or the queue is closed
func (q *Queue) Dequeue(ctx context.Context) (webhook.Job, error) {
	for {
		if q.closed.Load() {
			return webhook.Job{}, webhook.ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return webhook.Job{}, err
		}

		if err := q.promoteDue(ctx); err != nil {
			return webhook.Job{}, err
		}

		job, ok, err := q.reclaim(ctx)
		if err != nil {
			return webhook.Job{}, err
		}
		if ok {
			return job, nil
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroup,
			Consumer: q.cfg.Consumer,
			Streams:  []string{ReadyStream, ">"},
			Count:    1,
			Block:    q.cfg.Block,
		}).Result()
		if err == redis.Nil {
			// No messages available
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return webhook.Job{}, ctx.Err()
			}
			return webhook.Job{}, fmt.Errorf("reading from stream: %w", err)
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				if job, ok := q.decode(ctx, msg); ok {
					return job, nil
				}
			}
		}
	}
}

// Ack acknowledges and deletes the stream entry behind the job
func (q *Queue) Ack(ctx context.Context, job webhook.Job) error {
	if job.Receipt == "" {
		return nil
	}

	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAck(ctx, ReadyStream, ConsumerGroup, job.Receipt)
		pipe.XDel(ctx, ReadyStream, job.Receipt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("acknowledging message: %w", err)
	}

	return nil
}

// Depth reports the backlog; acknowledged entries are deleted so XLEN counts ready and in-flight jobs
func (q *Queue) Depth(ctx context.Context) (webhook.QueueDepth, error) {
	pipe := q.client.Pipeline()
	length := pipe.XLen(ctx, ReadyStream)
	delayed := pipe.ZCard(ctx, DelayedSet)
	pending := pipe.XPending(ctx, ReadyStream, ConsumerGroup)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return webhook.QueueDepth{}, fmt.Errorf("reading queue depth: %w", err)
	}

	var inFlight int64
	if p, err := pending.Result(); err == nil {
		inFlight = p.Count
	}

	return webhook.QueueDepth{
		Ready:    max(length.Val()-inFlight, 0),
		Delayed:  delayed.Val(),
		InFlight: inFlight,
	}, nil
}

// Close stops handing out jobs; the shared client stays open
func (q *Queue) Close(ctx context.Context) error {
	q.closed.Store(true)
	return nil
}

func (q *Queue) promoteDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	err := promote.Run(ctx, q.client, []string{DelayedSet, ReadyStream}, now, promoteBatch).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("promoting delayed jobs: %w", err)
	}
	return nil
}

// reclaim takes over one entry another consumer left pending for too long
func (q *Queue) reclaim(ctx context.Context) (webhook.Job, bool, error) {
	msgs, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   ReadyStream,
		Group:    ConsumerGroup,
		Consumer: q.cfg.Consumer,
		MinIdle:  q.cfg.ReclaimIdle,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil && err != redis.Nil {
		return webhook.Job{}, false, fmt.Errorf("reclaiming stale jobs: %w", err)
	}

	for _, msg := range msgs {
		if job, ok := q.decode(ctx, msg); ok {
			q.logger.Warn().Str("job_id", job.ID).Str("message_id", msg.ID).Msg("reclaimed stale job")
			return job, true, nil
		}
	}
	return webhook.Job{}, false, nil
}

// decode parses a stream entry; malformed entries are acknowledged and dropped
func (q *Queue) decode(ctx context.Context, msg redis.XMessage) (webhook.Job, bool) {
	raw, _ := msg.Values[jobField].(string)

	var job webhook.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil || job.ID == "" {
		q.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dropping malformed job")
		if err := q.Ack(ctx, webhook.Job{Receipt: msg.ID}); err != nil {
			q.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dropping malformed job")
		}
		return webhook.Job{}, false
	}

	job.Receipt = msg.ID
	return job, true
}

func encodeJob(job webhook.Job) (string, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshaling job: %w", err)
	}
	return string(data), nil
}
