package models

import "time"

// Ticker — снапшот по одному KRW-рынку за тик.
type Ticker struct {
	Market        string  // "KRW-BTC"
	TradePrice    float64 // последняя цена
	ChangeRate    float64 // изменение к предыдущему дню, знак сохраняется
	AccTradePrice float64 // оборот за 24ч в KRW
}

// OrderBook — агрегированный стакан по рынку.
type OrderBook struct {
	Market   string
	BidTotal float64 // суммарный объём заявок на покупку
	AskTotal float64 // суммарный объём заявок на продажу
	BestBid  float64
	BestAsk  float64
}

// Spread — относительный спред по лучшим ценам.
func (ob OrderBook) Spread() float64 {
	if ob.BestBid <= 0 {
		return 0
	}
	return (ob.BestAsk - ob.BestBid) / ob.BestBid
}

// Holding — строка из баланса аккаунта.
type Holding struct {
	Currency string // "BTC", "KRW"
	Balance  float64
}

// Candle — дневная/минутная свеча для классификатора тренда.
type Candle struct {
	Market   string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	OpenedAt time.Time
}

type OrderSide string

const (
	SideBuy  OrderSide = "bid"
	SideSell OrderSide = "ask"
)

type OrderKind string

const (
	// KindPrice — рыночная покупка на сумму в KRW.
	KindPrice OrderKind = "price"
	// KindMarket — рыночная продажа объёма монеты.
	KindMarket OrderKind = "market"
	KindLimit  OrderKind = "limit"
)

// OrderResult — результат заявки. Отказ биржи — это не ошибка транспорта:
// Rejected=true, рынок уходит в исключённые до конца сессии.
type OrderResult struct {
	UUID     string
	Rejected bool
	Reason   string
}
