package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopfront/orders/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockOutboxRepository(t *testing.T, now time.Time) (*OutboxRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewOutboxRepository(db)
	repo.now = func() time.Time { return now }

	return repo, mock
}

func TestOutboxRepository_Due(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo, mock := newMockOutboxRepository(t, now)

	mock.ExpectQuery(`SELECT id, kind, routing_key, payload, content_type, attempts, max_attempts, last_error, created_at, updated_at, next_attempt_at FROM outbox WHERE kind = \$1 AND next_attempt_at <= \$2 AND attempts < max_attempts ORDER BY created_at ASC, id ASC LIMIT 50`).
		WithArgs(outbox.KindNotification, now).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "kind", "routing_key", "payload", "content_type", "attempts", "max_attempts",
			"last_error", "created_at", "updated_at", "next_attempt_at",
		}).AddRow(int64(4), outbox.KindNotification, "shop.notifications", []byte(`{}`), "application/json",
			2, 5, "channel closed", now.Add(-time.Hour), now.Add(-time.Minute), now.Add(-time.Second)))

	got, err := repo.Due(context.Background(), outbox.KindNotification, 50)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].ID)
	assert.Equal(t, 2, got[0].Attempts)
	assert.Equal(t, "shop.notifications", got[0].RoutingKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_Reschedule(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo, mock := newMockOutboxRepository(t, now)
	msg := outbox.Message{ID: 9, Attempts: 3, LastError: "broker down", UpdatedAt: now, NextAttemptAt: now.Add(4 * time.Minute)}

	mock.ExpectExec(`UPDATE outbox SET attempts = \$1, last_error = \$2, next_attempt_at = \$3, updated_at = \$4 WHERE id = \$5`).
		WithArgs(3, "broker down", msg.NextAttemptAt, now, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Reschedule(context.Background(), msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_PurgeExhausted(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	repo, mock := newMockOutboxRepository(t, now)
	before := now.Add(-72 * time.Hour)

	mock.ExpectExec(`DELETE FROM outbox WHERE kind = \$1 AND attempts >= max_attempts AND updated_at < \$2`).
		WithArgs(outbox.KindNotification, before).
		WillReturnResult(sqlmock.NewResult(0, 2))

	removed, err := repo.PurgeExhausted(context.Background(), outbox.KindNotification, before)

	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
