package pg

import (
	"context"

	"coin_bot/internal/models"
	"coin_bot/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Store — durable-состояние позиций в postgres.
// Рынок уникален: по нему одна открытая запись, не больше.
type Store struct {
	txManager db.TxManager
}

func NewStore(txManager db.TxManager) *Store {
	return &Store{txManager: txManager}
}

const schema = `
CREATE TABLE IF NOT EXISTS positions (
    market      TEXT PRIMARY KEY,
    buy_price   DOUBLE PRECISION NOT NULL,
    high_price  DOUBLE PRECISION NOT NULL,
    order_uuid  TEXT NOT NULL DEFAULT '',
    budget_krw  DOUBLE PRECISION NOT NULL,
    opened_at   TIMESTAMPTZ NOT NULL,
    is_active   BOOLEAN NOT NULL DEFAULT TRUE
)`

func (s *Store) EnsureSchema(ctx context.Context) (err error) {
	defer func() { err = errors.Wrap(err, "ensure positions schema") }()
	return s.txManager.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, errEx := tx.Exec(ctxTx, schema)
		return errEx
	})
}

// Upsert пишет позицию целиком; повторный вызов по тому же рынку
// перезаписывает максимум и uuid ордера.
func (s *Store) Upsert(ctx context.Context, p *models.Position) (err error) {
	defer func() { err = errors.Wrapf(err, "upsert position %s", p.Market) }()
	return s.txManager.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, errEx := tx.Exec(ctxTx, `
			INSERT INTO positions (market, buy_price, high_price, order_uuid, budget_krw, opened_at, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			ON CONFLICT (market) DO UPDATE SET
				buy_price  = EXCLUDED.buy_price,
				high_price = EXCLUDED.high_price,
				order_uuid = EXCLUDED.order_uuid,
				budget_krw = EXCLUDED.budget_krw,
				opened_at  = EXCLUDED.opened_at,
				is_active  = TRUE`,
			p.Market, p.BuyPrice, p.HighPrice, p.OrderUUID, p.BudgetKRW, p.OpenedAt)
		return errEx
	})
}

func (s *Store) Deactivate(ctx context.Context, market string) (err error) {
	defer func() { err = errors.Wrapf(err, "deactivate position %s", market) }()
	return s.txManager.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, errEx := tx.Exec(ctxTx, `UPDATE positions SET is_active = FALSE, order_uuid = '' WHERE market = $1`, market)
		return errEx
	})
}

func (s *Store) ListOpen(ctx context.Context) (list []models.Position, err error) {
	defer func() { err = errors.Wrap(err, "list open positions") }()
	err = s.txManager.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, errQ := tx.Query(ctxTx, `
			SELECT market, buy_price, high_price, order_uuid, budget_krw, opened_at
			FROM positions WHERE is_active ORDER BY opened_at`)
		if errQ != nil {
			return errQ
		}
		defer rows.Close()

		for rows.Next() {
			var p models.Position
			if errSc := rows.Scan(&p.Market, &p.BuyPrice, &p.HighPrice, &p.OrderUUID, &p.BudgetKRW, &p.OpenedAt); errSc != nil {
				return errSc
			}
			p.IsActive = true
			list = append(list, p)
		}
		return rows.Err()
	})
	return list, err
}
