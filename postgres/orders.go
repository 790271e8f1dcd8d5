// Package postgres implements the durable collaborators on pgx: the
// transactional order store consumed by the flash-sale worker and the shop
// row store behind the cached entity surface.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Unrealaaaaaa/Niche-review/flashsale"
)

type Orders struct {
	pool *pgxpool.Pool
}

var _ flashsale.OrderStore = (*Orders)(nil)

func NewOrders(pool *pgxpool.Pool) *Orders {
	return &Orders{pool: pool}
}

// CreateOrder persists one admitted intent. The duplicate re-check, the
// guarded stock decrement and the insert share a single transaction: if the
// decrement finds no stock the insert never happens, and vice versa.
func (s *Orders) CreateOrder(ctx context.Context, o flashsale.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM voucher_orders WHERE user_id = $1 AND voucher_id = $2)`,
		o.UserID, o.VoucherID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return flashsale.ErrDuplicateOrder
	}

	ct, err := tx.Exec(ctx,
		`UPDATE seckill_vouchers SET stock = stock - 1 WHERE voucher_id = $1 AND stock > 0`,
		o.VoucherID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return flashsale.ErrOutOfStock
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO voucher_orders (id, user_id, voucher_id, created_at) VALUES ($1, $2, $3, $4)`,
		o.ID, o.UserID, o.VoucherID, o.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	tx = nil // commit won; disarm the deferred rollback
	return nil
}
