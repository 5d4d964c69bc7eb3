package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/dal/postgres"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/service/models/zone"
	"github.com/shopspring/decimal"
)

const trackingIDConstraint = "orders_tracking_id_key"

var orderColumns = []string{
	"id",
	"customer_name",
	"phone",
	"phone_key",
	"address",
	"zone",
	"delivery_charge",
	"discount",
	"total_amount",
	"status",
	"courier_name",
	"tracking_id",
	"admin_note",
	"order_note",
	"confirmed_by",
	"shipped_by",
	"delivered_by",
	"cancelled_by",
	"returned_by",
	"last_updated_by",
	"version",
	"created_at",
	"updated_at",
}

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id             uuid.UUID       `db:"id"`
	CustomerName   string          `db:"customer_name"`
	Phone          string          `db:"phone"`
	PhoneKey       string          `db:"phone_key"`
	Address        string          `db:"address"`
	Zone           string          `db:"zone"`
	DeliveryCharge decimal.Decimal `db:"delivery_charge"`
	Discount       decimal.Decimal `db:"discount"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	Status         string          `db:"status"`
	CourierName    string          `db:"courier_name"`
	TrackingId     sql.NullString  `db:"tracking_id"`
	AdminNote      string          `db:"admin_note"`
	OrderNote      string          `db:"order_note"`
	ConfirmedBy    string          `db:"confirmed_by"`
	ShippedBy      string          `db:"shipped_by"`
	DeliveredBy    string          `db:"delivered_by"`
	CancelledBy    string          `db:"cancelled_by"`
	ReturnedBy     string          `db:"returned_by"`
	LastUpdatedBy  string          `db:"last_updated_by"`
	Version        int64           `db:"version"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (o *OrderDal) scanArgs() []any {
	return []any{
		&o.Id,
		&o.CustomerName,
		&o.Phone,
		&o.PhoneKey,
		&o.Address,
		&o.Zone,
		&o.DeliveryCharge,
		&o.Discount,
		&o.TotalAmount,
		&o.Status,
		&o.CourierName,
		&o.TrackingId,
		&o.AdminNote,
		&o.OrderNote,
		&o.ConfirmedBy,
		&o.ShippedBy,
		&o.DeliveredBy,
		&o.CancelledBy,
		&o.ReturnedBy,
		&o.LastUpdatedBy,
		&o.Version,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	z, err := zone.ParseZone(o.Zone)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", o.Id, err)
	}
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", o.Id, err)
	}

	return &order.Order{
		ID:             o.Id,
		CustomerName:   o.CustomerName,
		Phone:          o.Phone,
		PhoneKey:       o.PhoneKey,
		Address:        o.Address,
		Zone:           z,
		DeliveryCharge: o.DeliveryCharge,
		Discount:       o.Discount,
		TotalAmount:    o.TotalAmount,
		Status:         status,
		CourierName:    o.CourierName,
		TrackingID:     o.TrackingId.String,
		AdminNote:      o.AdminNote,
		OrderNote:      o.OrderNote,
		ConfirmedBy:    o.ConfirmedBy,
		ShippedBy:      o.ShippedBy,
		DeliveredBy:    o.DeliveredBy,
		CancelledBy:    o.CancelledBy,
		ReturnedBy:     o.ReturnedBy,
		LastUpdatedBy:  o.LastUpdatedBy,
		Version:        o.Version,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:             o.ID,
		CustomerName:   o.CustomerName,
		Phone:          o.Phone,
		PhoneKey:       o.PhoneKey,
		Address:        o.Address,
		Zone:           o.Zone.String(),
		DeliveryCharge: o.DeliveryCharge,
		Discount:       o.Discount,
		TotalAmount:    o.TotalAmount,
		Status:         o.Status.String(),
		CourierName:    o.CourierName,
		TrackingId:     sql.NullString{String: o.TrackingID, Valid: o.TrackingID != ""},
		AdminNote:      o.AdminNote,
		OrderNote:      o.OrderNote,
		ConfirmedBy:    o.ConfirmedBy,
		ShippedBy:      o.ShippedBy,
		DeliveredBy:    o.DeliveredBy,
		CancelledBy:    o.CancelledBy,
		ReturnedBy:     o.ReturnedBy,
		LastUpdatedBy:  o.LastUpdatedBy,
		Version:        o.Version,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// PostgresOrderRepository is the Postgres order store.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a repository bound to a pool or a transaction.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert stores a new order row. Items are stored by the order item repository.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) error {
	dal := OrderDalFromModel(&o)

	query, args, err := r.sb.Insert("orders").
		Columns(orderColumns...).
		Values(
			dal.Id,
			dal.CustomerName,
			dal.Phone,
			dal.PhoneKey,
			dal.Address,
			dal.Zone,
			dal.DeliveryCharge,
			dal.Discount,
			dal.TotalAmount,
			dal.Status,
			dal.CourierName,
			dal.TrackingId,
			dal.AdminNote,
			dal.OrderNote,
			dal.ConfirmedBy,
			dal.ShippedBy,
			dal.DeliveredBy,
			dal.CancelledBy,
			dal.ReturnedBy,
			dal.LastUpdatedBy,
			dal.Version,
			dal.CreatedAt,
			dal.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err, trackingIDConstraint) {
			return order.ErrDuplicateTrackingID
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// Get retrieves a single order by id.
func (r *PostgresOrderRepository) Get(ctx context.Context, id uuid.UUID) (order.Order, error) {
	query, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(dal.scanArgs()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order.Order{}, apperr.Newf(apperr.CodeNotFound, "order %s not found", id)
		}

		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	return *model, nil
}

func applyFilter(query sq.SelectBuilder, filter *order.QueryOrdersModel) sq.SelectBuilder {
	if filter == nil {
		return query
	}
	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}
	if filter.Status != "" {
		query = query.Where(sq.Eq{"status": filter.Status.String()})
	}
	if filter.PhoneKey != "" {
		query = query.Where(sq.Eq{"phone_key": filter.PhoneKey})
	}

	return query
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	query := applyFilter(r.sb.Select(orderColumns...).From("orders"), filter).
		OrderBy("created_at DESC", "id")

	if filter != nil && filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter != nil && filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the number of orders matching the filter, ignoring limit and offset.
func (r *PostgresOrderRepository) Count(ctx context.Context, filter *order.QueryOrdersModel) (int, error) {
	sqlStr, args, err := applyFilter(r.sb.Select("count(*)").From("orders"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := r.conn.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return total, nil
}

// Update writes every mutable column guarded by the expected version.
func (r *PostgresOrderRepository) Update(ctx context.Context, o order.Order, expectedVersion int64) error {
	dal := OrderDalFromModel(&o)

	query, args, err := r.sb.Update("orders").
		Set("customer_name", dal.CustomerName).
		Set("phone", dal.Phone).
		Set("phone_key", dal.PhoneKey).
		Set("address", dal.Address).
		Set("zone", dal.Zone).
		Set("delivery_charge", dal.DeliveryCharge).
		Set("discount", dal.Discount).
		Set("total_amount", dal.TotalAmount).
		Set("status", dal.Status).
		Set("courier_name", dal.CourierName).
		Set("tracking_id", dal.TrackingId).
		Set("admin_note", dal.AdminNote).
		Set("order_note", dal.OrderNote).
		Set("confirmed_by", dal.ConfirmedBy).
		Set("shipped_by", dal.ShippedBy).
		Set("delivered_by", dal.DeliveredBy).
		Set("cancelled_by", dal.CancelledBy).
		Set("returned_by", dal.ReturnedBy).
		Set("last_updated_by", dal.LastUpdatedBy).
		Set("updated_at", dal.UpdatedAt).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": dal.Id, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err, trackingIDConstraint) {
			return order.ErrDuplicateTrackingID
		}

		return fmt.Errorf("failed to update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	exists, err := r.exists(ctx, dal.Id)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.Newf(apperr.CodeNotFound, "order %s not found", dal.Id)
	}

	return apperr.Newf(apperr.CodeConflict, "order %s was modified since version %d", dal.Id, expectedVersion)
}

func (r *PostgresOrderRepository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args, err := r.sb.Select("1").From("orders").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var one int
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("failed to check order existence: %w", err)
	}

	return true, nil
}

// Delete removes an order and, by cascade, its items.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.sb.Delete("orders").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.Newf(apperr.CodeNotFound, "order %s not found", id)
	}

	return nil
}

// CountStatusesByPhone groups the other orders of a customer by status.
func (r *PostgresOrderRepository) CountStatusesByPhone(
	ctx context.Context,
	phoneKey string,
	excludeID uuid.UUID,
) (map[order.Status]int, error) {
	counts := map[order.Status]int{}
	if phoneKey == "" {
		return counts, nil
	}

	query, args, err := r.sb.Select("status", "count(*)").
		From("orders").
		Where(sq.Eq{"phone_key": phoneKey}).
		Where(sq.NotEq{"id": excludeID}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan customer history: %w", err)
		}
		counts[order.Status(status)] += n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return counts, nil
}
