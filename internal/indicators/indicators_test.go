package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRSIAllGains(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	require.Equal(t, 100.0, RSI(prices, 14))
}

func TestRSIMixed(t *testing.T) {
	prices := []float64{100, 101, 100, 102, 101, 103, 102, 104, 103, 105, 104, 106, 105, 107, 106}
	got := RSI(prices, 14)
	// приростов больше, чем падений, но не все — RSI в (50, 100)
	require.Greater(t, got, 50.0)
	require.Less(t, got, 100.0)
}

func TestRSINotEnoughData(t *testing.T) {
	require.True(t, math.IsNaN(RSI([]float64{1, 2, 3}, 14)))
}

func TestEMAConstantSeries(t *testing.T) {
	prices := []float64{5, 5, 5, 5, 5}
	require.InDelta(t, 5.0, EMA(prices, 3), 1e-12)
}

func TestEMAFollowsTrend(t *testing.T) {
	up := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	require.Greater(t, EMA(up, 3), EMA(up, 7)) // короткая EMA ближе к последним ценам
}

func TestSMA(t *testing.T) {
	require.InDelta(t, 4.0, SMA([]float64{1, 2, 3, 4, 5}, 3), 1e-12)
	require.True(t, math.IsNaN(SMA([]float64{1, 2}, 3)))
}

func TestMACDUptrendPositive(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	macd, signal := MACD(prices, 12, 26, 9)
	require.False(t, math.IsNaN(macd))
	require.Greater(t, macd, 0.0)
	require.Greater(t, signal, 0.0)
}

func TestStochasticRange(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17}
	highs := make([]float64, len(closes))
	lows := make([]float64, len(closes))
	for i, c := range closes {
		highs[i] = c + 1
		lows[i] = c - 1
	}
	k, d := Stochastic(closes, highs, lows, 14)
	require.GreaterOrEqual(t, k, 0.0)
	require.LessOrEqual(t, k, 100.0)
	require.GreaterOrEqual(t, d, 0.0)
	require.LessOrEqual(t, d, 100.0)
}

func TestBollingerBandsAroundSMA(t *testing.T) {
	prices := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17, 19, 18, 20, 19, 21}
	upper, lower := Bollinger(prices, 20)
	sma := SMA(prices, 20)
	require.Greater(t, upper, sma)
	require.Less(t, lower, sma)
}

func TestATRConstantRange(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 102
		lows[i] = 100
		closes[i] = 101
	}
	require.InDelta(t, 2.0, ATR(highs, lows, closes, 14), 1e-12)
}
