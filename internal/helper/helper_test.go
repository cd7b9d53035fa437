package helper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrencyOf(t *testing.T) {
	require.Equal(t, "BTC", CurrencyOf("KRW-BTC"))
	require.Equal(t, "XRP", CurrencyOf("KRW-XRP"))
	require.Equal(t, "BTC", CurrencyOf("BTC"))
}

func TestMarketOf(t *testing.T) {
	require.Equal(t, "KRW-BTC", MarketOf("BTC"))
}

func TestMinF(t *testing.T) {
	require.Equal(t, 1.0, MinF(1, 2))
	require.Equal(t, 1.0, MinF(2, 1))
}
