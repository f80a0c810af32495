//go:build !integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
Unit tests for the PostgreSQL repository

sqlmock stands in for the database, so these check the SQL contract and the
error mapping without containers. Run the integration suite for real behavior:
go test -tags=integration ./webhook/postgres/...
*/

var rowColumns = []string{
	"id", "url", "events", "secret", "active", "description", "metadata",
	"created_at", "updated_at", "delivery_count", "failure_count", "last_triggered",
}

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &Repository{DB: db}, mock
}

func TestRepository_Get_Unit(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("maps a row to a subscription", func(t *testing.T) {
		repo, mock := newMock(t)
		rows := sqlmock.NewRows(rowColumns).AddRow(
			"w1", "https://hooks.example.com", "{schedule.updated,game.started}", "whsec_x", true,
			"league feed", []byte(`{"team":"scheduling"}`), created, created, int64(7), int64(2), created,
		)
		mock.ExpectQuery("SELECT .+ FROM webhook_subscriptions WHERE id = \\$1").
			WithArgs("w1").
			WillReturnRows(rows)

		sub, err := repo.Get(ctx, "w1")

		require.NoError(t, err)
		assert.Equal(t, []string{"schedule.updated", "game.started"}, sub.Events)
		assert.Equal(t, "scheduling", sub.Metadata["team"])
		assert.Equal(t, int64(7), sub.DeliveryCount)
		assert.Equal(t, int64(2), sub.FailureCount)
		assert.True(t, created.Equal(sub.LastTriggered))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - not found", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery("SELECT .+ FROM webhook_subscriptions").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, "missing")

		assert.True(t, webhook.IsNotFound(err))
	})
}

func TestRepository_Update_Unit(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	description := "league feed"
	patch := webhook.Patch{Description: &description}

	t.Run("unpatched columns are passed as NULL", func(t *testing.T) {
		repo, mock := newMock(t)
		rows := sqlmock.NewRows(rowColumns).AddRow(
			"w1", "https://hooks.example.com", "{schedule.updated}", "whsec_x", false,
			description, []byte(`{}`), at, at, int64(3), int64(3), at,
		)
		mock.ExpectQuery("(?s)UPDATE webhook_subscriptions\\s+SET url = COALESCE\\(\\$2, url\\),.+active = COALESCE\\(\\$5::BOOLEAN, active\\),.+RETURNING").
			WithArgs("w1", sql.NullString{}, nil, sql.NullString{}, sql.NullBool{},
				sql.NullString{String: description, Valid: true}, sql.NullString{}, at).
			WillReturnRows(rows)

		sub, err := repo.Update(ctx, "w1", patch, at)

		require.NoError(t, err)
		assert.False(t, sub.Active, "stored active flag comes back untouched")
		assert.Equal(t, description, sub.Description)
		assert.Equal(t, int64(3), sub.FailureCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - no row", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery("UPDATE webhook_subscriptions").WillReturnError(sql.ErrNoRows)

		_, err := repo.Update(ctx, "missing", patch, at)

		assert.True(t, webhook.IsNotFound(err))
	})
}

func TestRepository_RecordOutcome_Unit(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("single update returning the row", func(t *testing.T) {
		repo, mock := newMock(t)
		rows := sqlmock.NewRows(rowColumns).AddRow(
			"w1", "https://hooks.example.com", "{schedule.updated}", "whsec_x", true,
			"", []byte(`{}`), at, at, int64(1), int64(1), at,
		)
		mock.ExpectQuery("UPDATE webhook_subscriptions\\s+SET delivery_count = delivery_count \\+ 1,\\s+failure_count = CASE WHEN \\$2 THEN 0 ELSE failure_count \\+ 1 END").
			WithArgs("w1", false, at).
			WillReturnRows(rows)

		sub, err := repo.RecordOutcome(ctx, "w1", false, at)

		require.NoError(t, err)
		assert.Equal(t, int64(1), sub.FailureCount)
		assert.Nil(t, sub.Metadata)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - not found", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery("UPDATE webhook_subscriptions").WillReturnError(sql.ErrNoRows)

		_, err := repo.RecordOutcome(ctx, "w1", true, at)

		assert.True(t, webhook.IsNotFound(err))
	})

	t.Run("error - database failure is wrapped", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery("UPDATE webhook_subscriptions").WillReturnError(errors.New("connection reset"))

		_, err := repo.RecordOutcome(ctx, "w1", true, at)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "recording outcome")
	})
}

func TestRepository_Deactivate_Unit(t *testing.T) {
	ctx := context.Background()
	at := time.Now()

	t.Run("flips an active subscription", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery("UPDATE webhook_subscriptions\\s+SET active = FALSE").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("w1"))

		changed, err := repo.Deactivate(ctx, "w1", at)

		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("already inactive", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery("UPDATE webhook_subscriptions").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT EXISTS").WithArgs("w1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		changed, err := repo.Deactivate(ctx, "w1", at)

		require.NoError(t, err)
		assert.False(t, changed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - not found", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery("UPDATE webhook_subscriptions").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT EXISTS").WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.Deactivate(ctx, "missing", at)

		assert.True(t, webhook.IsNotFound(err))
	})
}

func TestRepository_Delete_Unit(t *testing.T) {
	ctx := context.Background()

	t.Run("error - not found", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec("DELETE FROM webhook_subscriptions WHERE id = \\$1").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, "missing")

		assert.True(t, webhook.IsNotFound(err))
	})
}
