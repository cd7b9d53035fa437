package service

import (
	"context"
	"math"
	"sync"
	"time"

	"coin_bot/internal/indicators"
	"coin_bot/internal/models"
	"coin_bot/internal/modules/config"
	"coin_bot/pkg/logger"
)

const (
	benchmarkMarket = "KRW-BTC"
	candleDepth     = 30
	emaShort        = 5
	emaLong         = 20
	rsiPeriod       = 14
)

type MarketData interface {
	DayCandles(ctx context.Context, market string, count int) ([]models.Candle, error)
	Tickers(ctx context.Context) ([]models.Ticker, error)
}

// Classifier сводит несколько сигналов в одну метку рынка. Ядро не знает,
// из чего метка собрана — только bullish/neutral/bearish.
type Classifier struct {
	md  MarketData
	ttl time.Duration

	mu       sync.Mutex
	cached   models.Trend
	cachedAt time.Time
}

func NewClassifier(cfg *config.Config, md MarketData) *Classifier {
	return &Classifier{md: md, ttl: cfg.TrendCacheTTL, cached: models.TrendNeutral}
}

// Current — метка тренда с кешем. При любой ошибке данных отдаём последнее
// известное значение: тик не должен падать из-за классификатора.
func (c *Classifier) Current(ctx context.Context) models.Trend {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.cachedAt) <= c.ttl {
		return c.cached
	}

	t, err := c.classify(ctx)
	if err != nil {
		logger.Error("[TREND] классификация не удалась: %v", err)
		return c.cached
	}
	c.cached = t
	c.cachedAt = time.Now()
	return t
}

func (c *Classifier) classify(ctx context.Context) (models.Trend, error) {
	candles, err := c.md.DayCandles(ctx, benchmarkMarket, candleDepth)
	if err != nil {
		return models.TrendNeutral, err
	}
	closes := make([]float64, len(candles))
	for i, cd := range candles {
		closes[i] = cd.Close
	}

	score := 0

	// 1) импульс бенчмарка: короткая EMA против длинной
	short, long := indicators.EMA(closes, emaShort), indicators.EMA(closes, emaLong)
	if !math.IsNaN(short) && !math.IsNaN(long) {
		switch {
		case short > long*1.005:
			score++
		case short < long*0.995:
			score--
		}
	}

	// 2) RSI бенчмарка
	if rsi := indicators.RSI(closes, rsiPeriod); !math.IsNaN(rsi) {
		switch {
		case rsi >= 60:
			score++
		case rsi <= 40:
			score--
		}
	}

	// 3) ширина рынка: доля KRW-рынков в плюсе к прошлому дню
	if tickers, err := c.md.Tickers(ctx); err == nil && len(tickers) > 0 {
		up := 0
		for _, t := range tickers {
			if t.ChangeRate > 0 {
				up++
			}
		}
		breadth := float64(up) / float64(len(tickers))
		switch {
		case breadth >= 0.6:
			score++
		case breadth <= 0.4:
			score--
		}
	}

	switch {
	case score >= 2:
		return models.TrendBullish, nil
	case score <= -2:
		return models.TrendBearish, nil
	default:
		return models.TrendNeutral, nil
	}
}
