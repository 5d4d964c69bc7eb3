package uow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopfront/orders/internal/dal/interfaces/iorderitemrepo"
	"github.com/shopfront/orders/internal/dal/interfaces/iorderrepo"
	orderrepo "github.com/shopfront/orders/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/shopfront/orders/internal/dal/repositories/orderitem/postgres"
)

// UnitOfWork groups order and order item writes into one transaction.
type UnitOfWork struct {
	db            *sql.DB
	tx            *sql.Tx
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
}

// OrderRepository returns the order repository bound to the current transaction.
func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

// OrderItemRepository returns the order item repository bound to the current transaction.
func (u *UnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

// NewUnitOfWork creates a unit of work. Until Begin is called repositories use the pool.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{
		db:            db,
		orderRepo:     orderrepo.NewPostgresOrderRepository(db),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(db),
	}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)

	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit()
}

// Rollback aborts the transaction. Rolling back a finished transaction is a no-op.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
