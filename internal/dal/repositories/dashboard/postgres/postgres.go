package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	orderrepo "github.com/shopfront/orders/internal/dal/repositories/order/postgres"
	"github.com/shopfront/orders/internal/service/models/dashboard"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// TxBeginner opens transactions. *sql.DB satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// DashboardRepository computes dashboard facets from the orders table.
type DashboardRepository struct {
	db TxBeginner
	sb sq.StatementBuilderType
}

// NewDashboardRepository creates a new dashboard repository.
func NewDashboardRepository(db TxBeginner) *DashboardRepository {
	return &DashboardRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Collect runs every facet query inside one read-only repeatable read transaction,
// so all facets describe the same snapshot.
func (r *DashboardRepository) Collect(ctx context.Context, b dashboard.Bounds) (dashboard.Facets, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return dashboard.Facets{}, fmt.Errorf("failed to begin dashboard transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	excluded := make([]string, 0, len(b.RevenueExcluded))
	for _, s := range b.RevenueExcluded {
		excluded = append(excluded, s.String())
	}
	revenueFilter, revenueArgs, err := sq.NotEq{"status": excluded}.ToSql()
	if err != nil {
		return dashboard.Facets{}, fmt.Errorf("failed to build revenue filter: %w", err)
	}

	facets := dashboard.Facets{
		ByStatus: map[order.Status]int64{},
		ByMonth:  map[time.Month]dashboard.Rollup{},
	}

	if err := r.rollups(ctx, tx, b, revenueFilter, revenueArgs, &facets); err != nil {
		return dashboard.Facets{}, err
	}
	if err := r.histogram(ctx, tx, &facets); err != nil {
		return dashboard.Facets{}, err
	}
	if err := r.monthly(ctx, tx, b, revenueFilter, revenueArgs, &facets); err != nil {
		return dashboard.Facets{}, err
	}

	recent, err := orderrepo.NewPostgresOrderRepository(tx).Query(ctx, &order.QueryOrdersModel{
		Limit: b.RecentOrderLimit,
	})
	if err != nil {
		return dashboard.Facets{}, fmt.Errorf("failed to query recent orders: %w", err)
	}
	facets.Recent = recent

	if err := tx.Commit(); err != nil {
		return dashboard.Facets{}, fmt.Errorf("failed to commit dashboard transaction: %w", err)
	}

	return facets, nil
}

func withArgs(head []any, tail []any) []any {
	args := make([]any, 0, len(head)+len(tail))
	args = append(args, head...)
	return append(args, tail...)
}

func (r *DashboardRepository) rollups(
	ctx context.Context,
	tx *sql.Tx,
	b dashboard.Bounds,
	revenueFilter string,
	revenueArgs []any,
	facets *dashboard.Facets,
) error {
	query, args, err := r.sb.Select().
		Column("count(*)").
		Column(sq.Expr("coalesce(sum(total_amount) FILTER (WHERE "+revenueFilter+"), 0)", revenueArgs...)).
		Column(sq.Expr("count(*) FILTER (WHERE created_at >= ?)", b.StartOfDay)).
		Column(sq.Expr(
			"coalesce(sum(total_amount) FILTER (WHERE created_at >= ? AND "+revenueFilter+"), 0)",
			withArgs([]any{b.StartOfDay}, revenueArgs)...,
		)).
		Column(sq.Expr("count(*) FILTER (WHERE created_at >= ?)", b.StartOfMonth)).
		Column(sq.Expr(
			"coalesce(sum(total_amount) FILTER (WHERE created_at >= ? AND "+revenueFilter+"), 0)",
			withArgs([]any{b.StartOfMonth}, revenueArgs)...,
		)).
		From("orders").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rollup query: %w", err)
	}

	err = tx.QueryRowContext(ctx, query, args...).Scan(
		&facets.Totals.Orders,
		&facets.Totals.Revenue,
		&facets.Today.Orders,
		&facets.Today.Revenue,
		&facets.ThisMonth.Orders,
		&facets.ThisMonth.Revenue,
	)
	if err != nil {
		return fmt.Errorf("failed to query rollups: %w", err)
	}

	return nil
}

func (r *DashboardRepository) histogram(ctx context.Context, tx *sql.Tx, facets *dashboard.Facets) error {
	query, args, err := r.sb.Select("status", "count(*)").
		From("orders").
		GroupBy("status").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build histogram query: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query status histogram: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return fmt.Errorf("failed to scan status histogram: %w", err)
		}
		facets.ByStatus[order.Status(status)] += n
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	return nil
}

func (r *DashboardRepository) monthly(
	ctx context.Context,
	tx *sql.Tx,
	b dashboard.Bounds,
	revenueFilter string,
	revenueArgs []any,
	facets *dashboard.Facets,
) error {
	tz := "UTC"
	if b.Location != nil {
		tz = b.Location.String()
	}

	query, args, err := r.sb.Select().
		Column(sq.Expr("extract(month FROM created_at AT TIME ZONE ?)::int AS month", tz)).
		Column("count(*)").
		Column(sq.Expr("coalesce(sum(total_amount) FILTER (WHERE "+revenueFilter+"), 0)", revenueArgs...)).
		From("orders").
		Where(sq.GtOrEq{"created_at": b.StartOfYear}).
		Where(sq.Lt{"created_at": b.StartOfNextYear}).
		GroupBy("month").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build monthly query: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query monthly series: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			month   int
			orders  int64
			revenue decimal.Decimal
		)
		if err := rows.Scan(&month, &orders, &revenue); err != nil {
			return fmt.Errorf("failed to scan monthly series: %w", err)
		}
		if month < 1 || month > 12 {
			continue
		}
		facets.ByMonth[time.Month(month)] = dashboard.Rollup{Orders: orders, Revenue: revenue}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	return nil
}
