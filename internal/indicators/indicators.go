package indicators

import "math"

// Чистые функции над ценовыми рядами. Ряды идут от старых значений к новым,
// возвращается последнее значение индикатора. Если данных не хватает,
// возвращается NaN — вызывающий обязан проверить.

// RSI по простым скользящим средним прироста/падения.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return math.NaN()
	}
	var gain, loss float64
	for i := len(prices) - period; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}

// EMA с коэффициентом 2/(period+1), начиная с первого элемента ряда.
func EMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) == 0 {
		return math.NaN()
	}
	k := 2.0 / float64(period+1)
	ema := prices[0]
	for _, px := range prices[1:] {
		ema = px*k + ema*(1-k)
	}
	return ema
}

func SMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return math.NaN()
	}
	var sum float64
	for _, px := range prices[len(prices)-period:] {
		sum += px
	}
	return sum / float64(period)
}

// MACD возвращает линию MACD и сигнальную линию.
func MACD(prices []float64, short, long, signal int) (float64, float64) {
	if len(prices) < long+signal {
		return math.NaN(), math.NaN()
	}
	macdSeries := make([]float64, 0, len(prices))
	for i := long; i <= len(prices); i++ {
		m := EMA(prices[:i], short) - EMA(prices[:i], long)
		macdSeries = append(macdSeries, m)
	}
	return macdSeries[len(macdSeries)-1], EMA(macdSeries, signal)
}

// Stochastic — %K и %D (SMA(3) от %K).
func Stochastic(closes, highs, lows []float64, period int) (float64, float64) {
	if period <= 0 || len(closes) < period+2 || len(highs) < len(closes) || len(lows) < len(closes) {
		return math.NaN(), math.NaN()
	}
	kAt := func(end int) float64 {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := end - period; i < end; i++ {
			lo = math.Min(lo, lows[i])
			hi = math.Max(hi, highs[i])
		}
		if hi == lo {
			return 50
		}
		return 100 * (closes[end-1] - lo) / (hi - lo)
	}
	n := len(closes)
	k := kAt(n)
	d := (kAt(n) + kAt(n-1) + kAt(n-2)) / 3
	return k, d
}

// Bollinger — верхняя и нижняя полоса (SMA ± 2σ).
func Bollinger(prices []float64, period int) (float64, float64) {
	sma := SMA(prices, period)
	if math.IsNaN(sma) {
		return math.NaN(), math.NaN()
	}
	var variance float64
	for _, px := range prices[len(prices)-period:] {
		variance += (px - sma) * (px - sma)
	}
	std := math.Sqrt(variance / float64(period))
	return sma + 2*std, sma - 2*std
}

// ATR — средний истинный диапазон за period.
func ATR(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if period <= 0 || n < period+1 || len(highs) < n || len(lows) < n {
		return math.NaN()
	}
	var sum float64
	for i := n - period; i < n; i++ {
		tr := highs[i] - lows[i]
		tr = math.Max(tr, math.Abs(highs[i]-closes[i-1]))
		tr = math.Max(tr, math.Abs(lows[i]-closes[i-1]))
		sum += tr
	}
	return sum / float64(period)
}
