package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of webhook.Repository
 * Each subscription is a hash at subscription:{id}; the set "subscriptions" indexes them
 * Counter mutations run as Lua scripts so concurrent workers never lose an update
 */

const (
	hashPrefix = "subscription"  // Hash naming: subscription:{id}
	indexKey   = "subscriptions" // Set of every subscription id
)

// recordOutcome returns the updated hash, or nil when the subscription does not exist
var recordOutcome = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return nil
end
redis.call('HINCRBY', KEYS[1], 'delivery_count', 1)
if ARGV[1] == '1' then
	redis.call('HSET', KEYS[1], 'failure_count', 0)
else
	redis.call('HINCRBY', KEYS[1], 'failure_count', 1)
end
redis.call('HSET', KEYS[1], 'last_triggered', ARGV[2])
return redis.call('HGETALL', KEYS[1])
`)

// deactivate returns -1 when missing, 1 when it flipped Active and 0 when already inactive
var deactivate = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('HGET', KEYS[1], 'active') ~= '1' then
	return 0
end
redis.call('HSET', KEYS[1], 'active', '0', 'updated_at', ARGV[1])
return 1
`)

// updateConfig writes only the patched fields and returns the hash, or nil when it does not exist
var updateConfig = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return nil
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return redis.call('HGETALL', KEYS[1])
`)

type Repository struct {
	client *redis.Client
}

// NewClient connects to Redis and checks the connection
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return client, nil
}

// NewRepository creates a subscription registry on top of client
func NewRepository(client *redis.Client) *Repository {
	return &Repository{
		client: client,
	}
}

// Save stores the whole record, replacing any previous one
func (r *Repository) Save(ctx context.Context, sub webhook.Subscription) error {
	fields, err := toHash(sub)
	if err != nil {
		return err
	}

	key := hashKey(sub.ID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.SAdd(ctx, indexKey, sub.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing subscription: %w", err)
	}

	return nil
}

// Update writes the patched fields; anything the patch leaves nil is not touched
func (r *Repository) Update(ctx context.Context, id string, patch webhook.Patch, at time.Time) (webhook.Subscription, error) {
	fields, err := patchFields(patch, at)
	if err != nil {
		return webhook.Subscription{}, err
	}

	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	res, err := updateConfig.Run(ctx, r.client, []string{hashKey(id)}, args...).Slice()
	if err == redis.Nil {
		return webhook.Subscription{}, &webhook.NotFoundError{ID: id}
	}
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("updating subscription: %w", err)
	}

	return fromHash(replyToMap(res))
}

// Delete removes the hash and its index entry
func (r *Repository) Delete(ctx context.Context, id string) error {
	var deleted *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, hashKey(id))
		pipe.SRem(ctx, indexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}
	if deleted.Val() == 0 {
		return &webhook.NotFoundError{ID: id}
	}

	return nil
}

// Get retrieves a subscription by ID from its hash
func (r *Repository) Get(ctx context.Context, id string) (webhook.Subscription, error) {
	data, err := r.client.HGetAll(ctx, hashKey(id)).Result()
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("getting subscription: %w", err)
	}
	if len(data) == 0 {
		return webhook.Subscription{}, &webhook.NotFoundError{ID: id}
	}

	return fromHash(data)
}

// List loads every indexed subscription and filters in process
func (r *Repository) List(ctx context.Context, filter webhook.ListFilter) ([]webhook.Subscription, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading subscription index: %w", err)
	}
	if len(ids) == 0 {
		return []webhook.Subscription{}, nil
	}

	// Use pipeline for efficient batch operations
	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, hashKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("executing pipeline: %w", err)
	}

	subs := make([]webhook.Subscription, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			// Deleted between SMEMBERS and HGETALL
			continue
		}

		sub, err := fromHash(data)
		if err != nil {
			return nil, err
		}
		if filter.Match(sub) {
			subs = append(subs, sub)
		}
	}

	webhook.SortSubscriptions(subs)
	return subs, nil
}

// RecordOutcome updates the delivery counters in a single script call
func (r *Repository) RecordOutcome(ctx context.Context, id string, success bool, at time.Time) (webhook.Subscription, error) {
	flag := "0"
	if success {
		flag = "1"
	}

	res, err := recordOutcome.Run(ctx, r.client, []string{hashKey(id)}, flag, formatTime(at)).Slice()
	if err == redis.Nil {
		return webhook.Subscription{}, &webhook.NotFoundError{ID: id}
	}
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("recording outcome: %w", err)
	}

	return fromHash(replyToMap(res))
}

// Deactivate flips Active from true to false; reports whether it changed
func (r *Repository) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := deactivate.Run(ctx, r.client, []string{hashKey(id)}, formatTime(at)).Int()
	if err != nil {
		return false, fmt.Errorf("deactivating subscription: %w", err)
	}
	if res < 0 {
		return false, &webhook.NotFoundError{ID: id}
	}

	return res == 1, nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

// Helper functions

func hashKey(id string) string {
	return fmt.Sprintf("%s:%s", hashPrefix, id)
}

func configFields(sub webhook.Subscription) (map[string]any, error) {
	events, err := json.Marshal(sub.Events)
	if err != nil {
		return nil, fmt.Errorf("marshaling events: %w", err)
	}
	metadata, err := json.Marshal(sub.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata: %w", err)
	}

	active := "0"
	if sub.Active {
		active = "1"
	}

	return map[string]any{
		"url":         sub.URL,
		"events":      string(events),
		"secret":      sub.Secret,
		"active":      active,
		"description": sub.Description,
		"metadata":    string(metadata),
		"updated_at":  formatTime(sub.UpdatedAt),
	}, nil
}

func patchFields(patch webhook.Patch, at time.Time) (map[string]any, error) {
	fields := map[string]any{"updated_at": formatTime(at)}
	if patch.URL != nil {
		fields["url"] = *patch.URL
	}
	if patch.Events != nil {
		events, err := json.Marshal(patch.Events)
		if err != nil {
			return nil, fmt.Errorf("marshaling events: %w", err)
		}
		fields["events"] = string(events)
	}
	if patch.Secret != nil {
		fields["secret"] = *patch.Secret
	}
	if patch.Active != nil {
		fields["active"] = "0"
		if *patch.Active {
			fields["active"] = "1"
		}
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Metadata != nil {
		metadata, err := json.Marshal(patch.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshaling metadata: %w", err)
		}
		fields["metadata"] = string(metadata)
	}
	return fields, nil
}

// replyToMap turns an HGETALL reply into field/value pairs
func replyToMap(res []any) map[string]string {
	data := make(map[string]string, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		k, _ := res[i].(string)
		v, _ := res[i+1].(string)
		data[k] = v
	}
	return data
}

func toHash(sub webhook.Subscription) (map[string]any, error) {
	fields, err := configFields(sub)
	if err != nil {
		return nil, err
	}

	fields["id"] = sub.ID
	fields["created_at"] = formatTime(sub.CreatedAt)
	fields["delivery_count"] = sub.DeliveryCount
	fields["failure_count"] = sub.FailureCount
	fields["last_triggered"] = formatTime(sub.LastTriggered)
	return fields, nil
}

func fromHash(data map[string]string) (webhook.Subscription, error) {
	sub := webhook.Subscription{
		ID:            data["id"],
		URL:           data["url"],
		Secret:        data["secret"],
		Active:        data["active"] == "1",
		Description:   data["description"],
		CreatedAt:     parseTime(data["created_at"]),
		UpdatedAt:     parseTime(data["updated_at"]),
		DeliveryCount: parseInt64(data["delivery_count"]),
		FailureCount:  parseInt64(data["failure_count"]),
		LastTriggered: parseTime(data["last_triggered"]),
	}

	if events := data["events"]; events != "" {
		if err := json.Unmarshal([]byte(events), &sub.Events); err != nil {
			return webhook.Subscription{}, fmt.Errorf("unmarshaling events: %w", err)
		}
	}
	if metadata := data["metadata"]; metadata != "" && metadata != "null" {
		if err := json.Unmarshal([]byte(metadata), &sub.Metadata); err != nil {
			return webhook.Subscription{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return sub, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
