package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/marcelsud/webhook-dispatch/webhook"
)

/*
PostgreSQL implementation of webhook.Repository

One row per subscription in webhook_subscriptions. Events are a TEXT[]
(GIN indexed for the fan-out query) and metadata a JSONB object.
RecordOutcome and Deactivate are single UPDATE ... RETURNING statements,
so row locking keeps concurrent workers from losing counter updates.
*/

// Schema creates the subscriptions table and its indexes
const Schema = `
CREATE TABLE IF NOT EXISTS webhook_subscriptions (
	id             TEXT PRIMARY KEY,
	url            TEXT NOT NULL,
	events         TEXT[] NOT NULL,
	secret         TEXT NOT NULL,
	active         BOOLEAN NOT NULL DEFAULT TRUE,
	description    TEXT NOT NULL DEFAULT '',
	metadata       JSONB NOT NULL DEFAULT '{}',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	delivery_count BIGINT NOT NULL DEFAULT 0,
	failure_count  BIGINT NOT NULL DEFAULT 0,
	last_triggered TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS webhook_subscriptions_events_idx ON webhook_subscriptions USING GIN (events);
CREATE INDEX IF NOT EXISTS webhook_subscriptions_created_idx ON webhook_subscriptions (created_at, id);
`

const columns = `id, url, events, secret, active, description, metadata,
	created_at, updated_at, delivery_count, failure_count, last_triggered`

type Repository struct {
	DB *sql.DB
}

// NewRepository opens a repository with the default pool (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig opens a repository with a custom connection pool
// maxOpenConns: maximum simultaneous connections (0 = unlimited)
// maxIdleConns: maximum idle connections kept in the pool
// maxLifeMinutes: maximum minutes a connection may be reused
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{
		DB: db,
	}, nil
}

// Save inserts the subscription or replaces every column of an existing one
func (r *Repository) Save(ctx context.Context, sub webhook.Subscription) error {
	metadata, err := marshalMetadata(sub.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhook_subscriptions (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			url = EXCLUDED.url,
			events = EXCLUDED.events,
			secret = EXCLUDED.secret,
			active = EXCLUDED.active,
			description = EXCLUDED.description,
			metadata = EXCLUDED.metadata,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			delivery_count = EXCLUDED.delivery_count,
			failure_count = EXCLUDED.failure_count,
			last_triggered = EXCLUDED.last_triggered
	`

	_, err = r.DB.ExecContext(ctx, query,
		sub.ID,
		sub.URL,
		pq.Array(sub.Events),
		sub.Secret,
		sub.Active,
		sub.Description,
		metadata,
		sub.CreatedAt.UTC(),
		sub.UpdatedAt.UTC(),
		sub.DeliveryCount,
		sub.FailureCount,
		nullTime(sub.LastTriggered),
	)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}

	return nil
}

// Update sets the patched columns in one statement; NULL parameters keep the stored value
func (r *Repository) Update(ctx context.Context, id string, patch webhook.Patch, at time.Time) (webhook.Subscription, error) {
	var (
		url, secret, description, metadata sql.NullString
		active                             sql.NullBool
		events                             any
	)
	if patch.URL != nil {
		url = sql.NullString{String: *patch.URL, Valid: true}
	}
	if patch.Events != nil {
		events = pq.Array(patch.Events)
	}
	if patch.Secret != nil {
		secret = sql.NullString{String: *patch.Secret, Valid: true}
	}
	if patch.Active != nil {
		active = sql.NullBool{Bool: *patch.Active, Valid: true}
	}
	if patch.Description != nil {
		description = sql.NullString{String: *patch.Description, Valid: true}
	}
	if patch.Metadata != nil {
		raw, err := marshalMetadata(patch.Metadata)
		if err != nil {
			return webhook.Subscription{}, err
		}
		metadata = sql.NullString{String: raw, Valid: true}
	}

	query := `
		UPDATE webhook_subscriptions
		SET url = COALESCE($2, url),
			events = COALESCE($3::TEXT[], events),
			secret = COALESCE($4, secret),
			active = COALESCE($5::BOOLEAN, active),
			description = COALESCE($6, description),
			metadata = COALESCE($7::JSONB, metadata),
			updated_at = $8
		WHERE id = $1
		RETURNING ` + columns

	sub, err := scanSubscription(r.DB.QueryRowContext(ctx, query,
		id, url, events, secret, active, description, metadata, at.UTC(),
	))
	if err == sql.ErrNoRows {
		return webhook.Subscription{}, &webhook.NotFoundError{ID: id}
	}
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("updating subscription: %w", err)
	}

	return sub, nil
}

// Delete removes a subscription by ID
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM webhook_subscriptions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return &webhook.NotFoundError{ID: id}
	}

	return nil
}

// Get selects a subscription by ID
func (r *Repository) Get(ctx context.Context, id string) (webhook.Subscription, error) {
	query := "SELECT " + columns + " FROM webhook_subscriptions WHERE id = $1"

	sub, err := scanSubscription(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return webhook.Subscription{}, &webhook.NotFoundError{ID: id}
	}
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("selecting subscription: %w", err)
	}

	return sub, nil
}

// List selects the subscriptions matching the filter ordered by creation time
func (r *Repository) List(ctx context.Context, filter webhook.ListFilter) ([]webhook.Subscription, error) {
	query := `
		SELECT ` + columns + `
		FROM webhook_subscriptions
		WHERE ($1::BOOLEAN IS NULL OR active = $1)
		  AND ($2 = '' OR $2 = ANY(events))
		ORDER BY created_at, id
	`

	var active sql.NullBool
	if filter.Active != nil {
		active = sql.NullBool{Bool: *filter.Active, Valid: true}
	}

	rows, err := r.DB.QueryContext(ctx, query, active, filter.Event)
	if err != nil {
		return nil, fmt.Errorf("selecting subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []webhook.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscriptions: %w", err)
	}

	return subs, nil
}

// RecordOutcome updates the delivery counters in one statement
func (r *Repository) RecordOutcome(ctx context.Context, id string, success bool, at time.Time) (webhook.Subscription, error) {
	query := `
		UPDATE webhook_subscriptions
		SET delivery_count = delivery_count + 1,
			failure_count = CASE WHEN $2 THEN 0 ELSE failure_count + 1 END,
			last_triggered = $3
		WHERE id = $1
		RETURNING ` + columns

	sub, err := scanSubscription(r.DB.QueryRowContext(ctx, query, id, success, at.UTC()))
	if err == sql.ErrNoRows {
		return webhook.Subscription{}, &webhook.NotFoundError{ID: id}
	}
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("recording outcome: %w", err)
	}

	return sub, nil
}

// Deactivate flips Active from true to false; reports whether it changed
func (r *Repository) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE webhook_subscriptions
		SET active = FALSE, updated_at = $2
		WHERE id = $1 AND active
		RETURNING id
	`

	var updated string
	err := r.DB.QueryRowContext(ctx, query, id, at.UTC()).Scan(&updated)
	if err == nil {
		return true, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("deactivating subscription: %w", err)
	}

	var exists bool
	err = r.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM webhook_subscriptions WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking subscription: %w", err)
	}
	if !exists {
		return false, &webhook.NotFoundError{ID: id}
	}

	return false, nil
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

// CreateTable applies Schema
func (r *Repository) CreateTable(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	return nil
}

// DropTable removes the subscriptions table (useful for tests)
func (r *Repository) DropTable(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS webhook_subscriptions CASCADE"); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (webhook.Subscription, error) {
	var (
		sub           webhook.Subscription
		metadata      []byte
		lastTriggered sql.NullTime
	)

	err := row.Scan(
		&sub.ID,
		&sub.URL,
		pq.Array(&sub.Events),
		&sub.Secret,
		&sub.Active,
		&sub.Description,
		&metadata,
		&sub.CreatedAt,
		&sub.UpdatedAt,
		&sub.DeliveryCount,
		&sub.FailureCount,
		&lastTriggered,
	)
	if err != nil {
		return webhook.Subscription{}, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &sub.Metadata); err != nil {
			return webhook.Subscription{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	if len(sub.Metadata) == 0 {
		sub.Metadata = nil
	}

	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	if lastTriggered.Valid {
		sub.LastTriggered = lastTriggered.Time.UTC()
	}

	return sub, nil
}

func marshalMetadata(m map[string]string) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling metadata: %w", err)
	}
	return string(data), nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
