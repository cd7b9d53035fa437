package models

import "time"

// Position — одна открытая спотовая позиция. На рынок (market) может быть
// не больше одной активной записи.
type Position struct {
	Market    string    // "KRW-BTC"
	BuyPrice  float64   // цена входа
	HighPrice float64   // максимум с момента входа, не убывает пока позиция открыта
	OrderUUID string    // uuid отложенного sell-ордера; пустой = ордера нет
	BudgetKRW float64   // сколько KRW выделено на вход
	OpenedAt  time.Time // момент покупки
	IsActive  bool
}

// Closing — true, когда sell уже отправлен и ждём подтверждения биржи.
// Пока ордер висит, новые exit-решения по позиции не принимаются.
func (p *Position) Closing() bool { return p.OrderUUID != "" }

// TouchHigh поднимает максимум, никогда не опускает.
// Возвращает true, если максимум обновился.
func (p *Position) TouchHigh(px float64) bool {
	if p.HighPrice <= 0 {
		p.HighPrice = p.BuyPrice
	}
	if px > p.HighPrice {
		p.HighPrice = px
		return true
	}
	return false
}

// TrailArmed — трейлинг включается только после того, как максимум
// хоть раз достиг buy*threshold (по умолчанию +2%).
func (p *Position) TrailArmed(threshold float64) bool {
	return p.HighPrice >= p.BuyPrice*threshold
}

// ProfitRate — доходность в процентах с учётом комиссии на обе стороны.
func (p *Position) ProfitRate(px, fee float64) float64 {
	realBuy := p.BuyPrice * (1 + fee)
	realSell := px * (1 - fee)
	return (realSell - realBuy) / realBuy * 100
}

// HoldingTime — сколько позиция уже держится.
func (p *Position) HoldingTime(now time.Time) time.Duration {
	if p.OpenedAt.IsZero() {
		return 0
	}
	return now.Sub(p.OpenedAt)
}
