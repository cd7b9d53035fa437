package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTouchHighMonotone(t *testing.T) {
	p := &Position{BuyPrice: 100}

	require.False(t, p.TouchHigh(99))
	require.Equal(t, 100.0, p.HighPrice) // максимум стартует с цены входа

	require.True(t, p.TouchHigh(105))
	require.Equal(t, 105.0, p.HighPrice)

	require.False(t, p.TouchHigh(101))
	require.Equal(t, 105.0, p.HighPrice)
}

func TestTrailArmed(t *testing.T) {
	p := &Position{BuyPrice: 100, HighPrice: 101.9}
	require.False(t, p.TrailArmed(1.02))

	p.HighPrice = 102
	require.True(t, p.TrailArmed(1.02))
}

func TestProfitRateSymmetricFees(t *testing.T) {
	p := &Position{BuyPrice: 100}
	// без движения цены комиссия даёт чистый минус
	require.Less(t, p.ProfitRate(100, 0.0005), 0.0)
	require.InDelta(t, 1.898, p.ProfitRate(102, 0.0005), 0.001)
}

func TestHoldingTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	p := &Position{OpenedAt: now.Add(-10 * time.Minute)}
	require.Equal(t, 10*time.Minute, p.HoldingTime(now))

	require.Zero(t, new(Position).HoldingTime(now))
}

func TestClosing(t *testing.T) {
	p := &Position{}
	require.False(t, p.Closing())
	p.OrderUUID = "u-1"
	require.True(t, p.Closing())
}
