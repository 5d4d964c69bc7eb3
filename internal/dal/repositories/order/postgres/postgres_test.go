package postgresrepo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/service/models/zone"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockOrderRepository(t *testing.T) (*PostgresOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresOrderRepository(db), mock, db
}

func orderRow(id uuid.UUID, status order.Status, trackingID any, version int64) []driver.Value {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []driver.Value{
		id.String(), "Rahim", "+8801711000000", "01711000000", "Road 1", "inside-metro",
		"60", "0", "310", string(status), "", trackingID, "", "",
		"", "", "", "", "", "", version, now, now,
	}
}

func TestPostgresOrderRepository_Get(t *testing.T) {
	t.Run("maps row to model", func(t *testing.T) {
		repo, mock, _ := newMockOrderRepository(t)
		id := uuid.New()

		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(orderRow(id, order.StatusPending, nil, 3)...))

		got, err := repo.Get(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, zone.ZoneInsideMetro, got.Zone)
		assert.Equal(t, order.StatusPending, got.Status)
		assert.True(t, decimal.NewFromInt(310).Equal(got.TotalAmount))
		assert.Empty(t, got.TrackingID)
		assert.Equal(t, int64(3), got.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order is not found", func(t *testing.T) {
		repo, mock, _ := newMockOrderRepository(t)
		id := uuid.New()

		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), id)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresOrderRepository_Update(t *testing.T) {
	o := order.Order{
		ID:         uuid.New(),
		Zone:       zone.ZoneInsideMetro,
		Status:     order.StatusShipped,
		TrackingID: "TRK-1",
	}
	updateSQL := `UPDATE orders SET .*version = version \+ 1 WHERE .*id = \$21 AND version = \$22`

	t.Run("writes when version matches", func(t *testing.T) {
		repo, mock, _ := newMockOrderRepository(t)

		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), o, 2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		repo, mock, _ := newMockOrderRepository(t)

		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT 1 FROM orders WHERE id = \$1`).
			WithArgs(o.ID).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		err := repo.Update(context.Background(), o, 2)

		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vanished order is not found", func(t *testing.T) {
		repo, mock, _ := newMockOrderRepository(t)

		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT 1 FROM orders WHERE id = \$1`).
			WithArgs(o.ID).
			WillReturnError(sql.ErrNoRows)

		err := repo.Update(context.Background(), o, 2)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("taken tracking id", func(t *testing.T) {
		repo, mock, _ := newMockOrderRepository(t)

		mock.ExpectExec(updateSQL).WillReturnError(&pgconn.PgError{
			Code:           "23505",
			ConstraintName: trackingIDConstraint,
		})

		err := repo.Update(context.Background(), o, 2)

		assert.ErrorIs(t, err, order.ErrDuplicateTrackingID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresOrderRepository_Delete(t *testing.T) {
	repo, mock, _ := newMockOrderRepository(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderRepository_Query(t *testing.T) {
	repo, mock, _ := newMockOrderRepository(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM orders WHERE status = \$1 ORDER BY created_at DESC, id LIMIT 20 OFFSET 20`).
		WithArgs("shipped").
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(orderRow(id, order.StatusShipped, "TRK-A", 1)...))

	got, err := repo.Query(context.Background(), &order.QueryOrdersModel{
		Status: order.StatusShipped,
		Limit:  20,
		Offset: 20,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TRK-A", got[0].TrackingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderRepository_CountStatusesByPhone(t *testing.T) {
	t.Run("groups other orders by status", func(t *testing.T) {
		repo, mock, _ := newMockOrderRepository(t)
		exclude := uuid.New()

		mock.ExpectQuery(`SELECT status, count\(\*\) FROM orders WHERE phone_key = \$1 AND id <> \$2 GROUP BY status`).
			WithArgs("01711000000", exclude).
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
				AddRow("delivered", 2).
				AddRow("cancelled", 1))

		got, err := repo.CountStatusesByPhone(context.Background(), "01711000000", exclude)

		require.NoError(t, err)
		assert.Equal(t, map[order.Status]int{
			order.StatusDelivered: 2,
			order.StatusCancelled: 1,
		}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty phone key has no history", func(t *testing.T) {
		repo, mock, _ := newMockOrderRepository(t)

		got, err := repo.CountStatusesByPhone(context.Background(), "", uuid.New())

		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
