package models

// Trend — итоговая метка рынка, ядро потребляет только её.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendNeutral Trend = "neutral"
	TrendBearish Trend = "bearish"
)

func (t Trend) Bullish() bool { return t == TrendBullish }
