package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/dal/postgres"
	"github.com/shopfront/orders/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	Id           uuid.UUID       `db:"id"`
	OrderId      uuid.UUID       `db:"order_id"`
	ProductId    uuid.UUID       `db:"product_id"`
	ProductTitle string          `db:"product_title"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	Quantity     int             `db:"quantity"`
	Position     int             `db:"position"`
	CreatedAt    time.Time       `db:"created_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ID:           oi.Id,
		OrderID:      oi.OrderId,
		ProductID:    oi.ProductId,
		ProductTitle: oi.ProductTitle,
		UnitPrice:    oi.UnitPrice,
		Quantity:     oi.Quantity,
		CreatedAt:    oi.CreatedAt,
	}
}

// OrderItemDalFromModel converts service layer OrderItem model to OrderItemDal.
func OrderItemDalFromModel(oi *orderitem.OrderItem, position int) *OrderItemDal {
	return &OrderItemDal{
		Id:           oi.ID,
		OrderId:      oi.OrderID,
		ProductId:    oi.ProductID,
		ProductTitle: oi.ProductTitle,
		UnitPrice:    oi.UnitPrice,
		Quantity:     oi.Quantity,
		Position:     position,
		CreatedAt:    oi.CreatedAt,
	}
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.GenericConn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts the lines of one or more orders in a single statement.
// Lines keep their slice order per order.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	orderItems []orderitem.OrderItem,
) error {
	if len(orderItems) == 0 {
		return nil
	}

	query := r.sb.Insert("order_items").Columns(
		"id",
		"order_id",
		"product_id",
		"product_title",
		"unit_price",
		"quantity",
		"position",
		"created_at",
	)

	positions := make(map[uuid.UUID]int)
	for i := range orderItems {
		pos := positions[orderItems[i].OrderID]
		positions[orderItems[i].OrderID] = pos + 1

		dal := OrderItemDalFromModel(&orderItems[i], pos)
		query = query.Values(
			dal.Id,
			dal.OrderId,
			dal.ProductId,
			dal.ProductTitle,
			dal.UnitPrice,
			dal.Quantity,
			dal.Position,
			dal.CreatedAt,
		)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to bulk insert order items: %w", err)
	}

	return nil
}

// Query retrieves order items based on filter criteria.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	query := r.sb.
		Select(
			"id",
			"order_id",
			"product_id",
			"product_title",
			"unit_price",
			"quantity",
			"position",
			"created_at",
		).
		From("order_items").
		OrderBy("order_id", "position")

	if filter != nil {
		if len(filter.Ids) > 0 {
			query = query.Where(sq.Eq{"id": filter.Ids})
		}
		if len(filter.OrderIds) > 0 {
			query = query.Where(sq.Eq{"order_id": filter.OrderIds})
		}
		if len(filter.ProductIds) > 0 {
			query = query.Where(sq.Eq{"product_id": filter.ProductIds})
		}
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	result := []orderitem.OrderItem{}
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.ProductTitle,
			&dal.UnitPrice,
			&dal.Quantity,
			&dal.Position,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// DeleteByOrderID removes every line of an order.
func (r *PostgresOrderItemRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	sqlStr, args, err := r.sb.Delete("order_items").Where(sq.Eq{"order_id": orderID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	return nil
}
