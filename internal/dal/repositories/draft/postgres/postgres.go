package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/dal/postgres"
	"github.com/shopfront/orders/internal/service/models/draft"
)

// DraftDal is a row of draft_orders.
type DraftDal struct {
	Id        uuid.UUID `db:"id"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToModel decodes the stored checkout form.
func (d *DraftDal) ToModel() (draft.Draft, error) {
	var data draft.Data
	if len(d.Data) > 0 {
		if err := json.Unmarshal(d.Data, &data); err != nil {
			return draft.Draft{}, fmt.Errorf("failed to decode draft %s: %w", d.Id, err)
		}
	}

	return draft.Draft{
		ID:        d.Id,
		Data:      data,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// DraftRepository stores checkout drafts as jsonb documents.
type DraftRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewDraftRepository creates a new draft repository.
func NewDraftRepository(conn postgres.GenericConn) *DraftRepository {
	return &DraftRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Upsert inserts the draft or replaces the stored document. created_at is kept on replace.
func (r *DraftRepository) Upsert(ctx context.Context, d draft.Draft) error {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	query, args, err := r.sb.Insert("draft_orders").
		Columns("id", "data", "created_at", "updated_at").
		Values(d.ID, data, d.CreatedAt, d.UpdatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert draft: %w", err)
	}

	return nil
}

// List returns drafts, most recently updated first.
func (r *DraftRepository) List(ctx context.Context, limit int) ([]draft.Draft, error) {
	builder := r.sb.Select("id", "data", "created_at", "updated_at").
		From("draft_orders").
		OrderBy("updated_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	drafts := []draft.Draft{}
	for rows.Next() {
		var dal DraftDal
		if err := rows.Scan(&dal.Id, &dal.Data, &dal.CreatedAt, &dal.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		d, err := dal.ToModel()
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return drafts, nil
}

// Delete removes a draft. Missing drafts are ignored.
func (r *DraftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.sb.Delete("draft_orders").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	return nil
}

// Prune deletes every draft but the keep most recently updated ones.
func (r *DraftRepository) Prune(ctx context.Context, keep int) (int64, error) {
	query, args, err := r.sb.Delete("draft_orders").
		Where(sq.Expr(
			"id NOT IN (SELECT id FROM draft_orders ORDER BY updated_at DESC, id DESC LIMIT ?)",
			keep,
		)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build prune query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune drafts: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return removed, nil
}
