package helper

import "strings"

const krwPrefix = "KRW-"

// CurrencyOf выделяет валюту из кода рынка: "KRW-BTC" -> "BTC".
func CurrencyOf(market string) string {
	return strings.TrimPrefix(market, krwPrefix)
}

// MarketOf — обратная операция: "BTC" -> "KRW-BTC".
func MarketOf(currency string) string {
	if strings.HasPrefix(currency, krwPrefix) {
		return currency
	}
	return krwPrefix + currency
}

func MinF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
