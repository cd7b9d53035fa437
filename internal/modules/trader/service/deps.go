package service

import (
	"context"
	"time"

	"coin_bot/internal/models"
)

// Контракты внешних участников. Ядру всё равно, какая биржа за ними стоит.

type MarketProvider interface {
	// Tickers — снапшот всех торгуемых рынков за тик.
	Tickers(ctx context.Context) ([]models.Ticker, error)
	// OrderBooks — батч стаканов (провайдер сам кеширует от rate limit).
	OrderBooks(ctx context.Context, markets []string) (map[string]models.OrderBook, error)
}

type OrderGateway interface {
	SubmitOrder(ctx context.Context, market string, side models.OrderSide, kind models.OrderKind, priceOrVolume float64) (models.OrderResult, error)
	OrderFilled(ctx context.Context, uuid string) (bool, error)
}

type AccountProvider interface {
	Holdings(ctx context.Context) ([]models.Holding, error)
}

type TrendProvider interface {
	Current(ctx context.Context) models.Trend
}

// PositionStore — durable-состояние позиций; источник правды при рестарте.
// Каждый вызов атомарен.
type PositionStore interface {
	Upsert(ctx context.Context, p *models.Position) error
	Deactivate(ctx context.Context, market string) error
	ListOpen(ctx context.Context) ([]models.Position, error)
}

// PriceWatcher — опциональная подписка на живые цены удерживаемых рынков.
type PriceWatcher interface {
	SetWatch(markets []string)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewClock() Clock { return realClock{} }
