package service

import (
	"context"
	"os"
	"testing"
	"time"

	"coin_bot/internal/models"
	"coin_bot/internal/modules/config"
	"coin_bot/pkg/logger"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.InfoLogger = zap.NewNop()
	logger.FatalLogger = zap.NewNop()
	os.Exit(m.Run())
}

type fakeMarketData struct {
	candles    []models.Candle
	candlesErr error
	tickers    []models.Ticker
	tickersErr error
}

func (f *fakeMarketData) DayCandles(_ context.Context, _ string, _ int) ([]models.Candle, error) {
	return f.candles, f.candlesErr
}

func (f *fakeMarketData) Tickers(_ context.Context) ([]models.Ticker, error) {
	return f.tickers, f.tickersErr
}

func newClassifier(md MarketData, ttl time.Duration) *Classifier {
	cfg := &config.Config{TrendCacheTTL: ttl}
	return NewClassifier(cfg, md)
}

func candlesRising(n int) []models.Candle {
	res := make([]models.Candle, n)
	px := 100.0
	for i := range res {
		px *= 1.03
		res[i] = models.Candle{Close: px}
	}
	return res
}

func candlesFalling(n int) []models.Candle {
	res := make([]models.Candle, n)
	px := 100.0
	for i := range res {
		px *= 0.97
		res[i] = models.Candle{Close: px}
	}
	return res
}

func tickersWithBreadth(n, up int) []models.Ticker {
	res := make([]models.Ticker, n)
	for i := range res {
		if i < up {
			res[i] = models.Ticker{ChangeRate: 0.01}
		} else {
			res[i] = models.Ticker{ChangeRate: -0.01}
		}
	}
	return res
}

func TestClassifierBullish(t *testing.T) {
	md := &fakeMarketData{
		candles: candlesRising(30),
		tickers: tickersWithBreadth(10, 8),
	}
	c := newClassifier(md, 0)

	require.Equal(t, models.TrendBullish, c.Current(context.Background()))
}

func TestClassifierBearish(t *testing.T) {
	md := &fakeMarketData{
		candles: candlesFalling(30),
		tickers: tickersWithBreadth(10, 2),
	}
	c := newClassifier(md, 0)

	require.Equal(t, models.TrendBearish, c.Current(context.Background()))
}

func TestClassifierNeutralOnMixedSignals(t *testing.T) {
	md := &fakeMarketData{
		candles: candlesRising(30),
		tickers: tickersWithBreadth(10, 2), // импульс вверх, ширина вниз
	}
	c := newClassifier(md, 0)

	require.Equal(t, models.TrendNeutral, c.Current(context.Background()))
}

func TestClassifierKeepsLastValueOnError(t *testing.T) {
	md := &fakeMarketData{
		candles: candlesRising(30),
		tickers: tickersWithBreadth(10, 8),
	}
	c := newClassifier(md, 0)
	require.Equal(t, models.TrendBullish, c.Current(context.Background()))

	md.candlesErr = errors.New("api down")
	require.Equal(t, models.TrendBullish, c.Current(context.Background()))
}

func TestClassifierCachesWithinTTL(t *testing.T) {
	md := &fakeMarketData{
		candles: candlesRising(30),
		tickers: tickersWithBreadth(10, 8),
	}
	c := newClassifier(md, time.Hour)
	require.Equal(t, models.TrendBullish, c.Current(context.Background()))

	// в пределах TTL данные не перечитываются
	md.candles = candlesFalling(30)
	md.tickers = tickersWithBreadth(10, 2)
	require.Equal(t, models.TrendBullish, c.Current(context.Background()))
}
