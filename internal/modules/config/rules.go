package config

import (
	"time"

	"github.com/spf13/viper"
)

// Rules — пороги решений торгового цикла. Это конфигурация, а не инварианты:
// дефолты зашиты здесь, configs/rules.yaml может их переопределить.
type Rules struct {
	FeeRate       float64 // комиссия биржи на сторону
	MinOrderKRW   float64 // биржевой минимум заявки
	MaxOpen       int     // лимит одновременных позиций
	MaxFailures   int     // после скольких сбоев тика цикл гасит себя
	MinProfitPct  float64 // порог "ранних" выходов по времени, в процентах
	TakeProfit    float64 // множитель тейка / взвода трейлинга (entry * x)
	TrailingDrop  float64 // триггер трейлинга (high * x)
	StopFactor    float64 // обычный стоп (entry * x)
	StopFactorVol float64 // ужесточённый стоп для волатильных рынков
	VolThreshold  float64 // |change_rate|, после которого рынок считается волатильным
	HoldBull      time.Duration
	HoldSideways  time.Duration

	// отбор кандидатов
	TopByChange   int
	ShortlistSize int
	BidImbalance  float64 // bid_total > ask_total * x
	MaxSpread     float64
}

func NewRules() (*Rules, error) {
	v := viper.New()
	v.SetConfigName("rules")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")

	v.SetDefault("fee_rate", 0.0005)
	v.SetDefault("min_order_krw", 5000.0)
	v.SetDefault("max_open", 3)
	v.SetDefault("max_failures", 3)
	v.SetDefault("min_profit_pct", 1.0)
	v.SetDefault("take_profit", 1.02)
	v.SetDefault("trailing_drop", 0.99)
	v.SetDefault("stop_factor", 0.98)
	v.SetDefault("stop_factor_vol", 0.96)
	v.SetDefault("vol_threshold", 0.05)
	v.SetDefault("hold_bull", "360s")
	v.SetDefault("hold_sideways", "600s")
	v.SetDefault("top_by_change", 10)
	v.SetDefault("shortlist_size", 5)
	v.SetDefault("bid_imbalance", 1.5)
	v.SetDefault("max_spread", 0.001)

	// файла может не быть — тогда работаем на дефолтах
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Rules{
		FeeRate:       v.GetFloat64("fee_rate"),
		MinOrderKRW:   v.GetFloat64("min_order_krw"),
		MaxOpen:       v.GetInt("max_open"),
		MaxFailures:   v.GetInt("max_failures"),
		MinProfitPct:  v.GetFloat64("min_profit_pct"),
		TakeProfit:    v.GetFloat64("take_profit"),
		TrailingDrop:  v.GetFloat64("trailing_drop"),
		StopFactor:    v.GetFloat64("stop_factor"),
		StopFactorVol: v.GetFloat64("stop_factor_vol"),
		VolThreshold:  v.GetFloat64("vol_threshold"),
		HoldBull:      v.GetDuration("hold_bull"),
		HoldSideways:  v.GetDuration("hold_sideways"),
		TopByChange:   v.GetInt("top_by_change"),
		ShortlistSize: v.GetInt("shortlist_size"),
		BidImbalance:  v.GetFloat64("bid_imbalance"),
		MaxSpread:     v.GetFloat64("max_spread"),
	}, nil
}
