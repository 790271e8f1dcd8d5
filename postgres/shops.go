package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Unrealaaaaaa/Niche-review/shop"
)

type Shops struct {
	pool *pgxpool.Pool
}

var _ shop.Store = (*Shops)(nil)

func NewShops(pool *pgxpool.Pool) *Shops {
	return &Shops{pool: pool}
}

func (s *Shops) LoadByID(ctx context.Context, id uint64) (shop.Shop, bool, error) {
	var sh shop.Shop
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, type_id, address, avg_price, score FROM shops WHERE id = $1`,
		id,
	).Scan(&sh.ID, &sh.Name, &sh.TypeID, &sh.Address, &sh.AvgPrice, &sh.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return shop.Shop{}, false, nil
	}
	if err != nil {
		return shop.Shop{}, false, err
	}
	return sh, true, nil
}

func (s *Shops) Update(ctx context.Context, sh shop.Shop) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE shops SET name = $2, type_id = $3, address = $4, avg_price = $5, score = $6 WHERE id = $1`,
		sh.ID, sh.Name, sh.TypeID, sh.Address, sh.AvgPrice, sh.Score,
	)
	return err
}
