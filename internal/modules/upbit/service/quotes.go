package service

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"coin_bot/internal/models"

	"github.com/bytedance/sonic"
)

type marketInfo struct {
	Market string `json:"market"`
}

type tickerResp struct {
	Market           string  `json:"market"`
	TradePrice       float64 `json:"trade_price"`
	SignedChangeRate float64 `json:"signed_change_rate"`
	AccTradePrice24h float64 `json:"acc_trade_price_24h"`
}

// Tickers возвращает снапшот по всем KRW-рынкам, отсортированный по обороту.
// Если по рынку есть свежая цена из WS — она перекрывает REST-значение.
func (c *Client) Tickers(ctx context.Context) ([]models.Ticker, error) {
	body, err := c.get(ctx, "/v1/market/all", nil, false)
	if err != nil {
		return nil, err
	}
	var all []marketInfo
	if err := sonic.Unmarshal(body, &all); err != nil {
		return nil, err
	}

	krw := make([]string, 0, len(all))
	for _, m := range all {
		if strings.HasPrefix(m.Market, "KRW-") {
			krw = append(krw, m.Market)
		}
	}
	if len(krw) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("markets", strings.Join(krw, ","))
	body, err = c.get(ctx, "/v1/ticker", q, false)
	if err != nil {
		return nil, err
	}
	var raw []tickerResp
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	res := make([]models.Ticker, 0, len(raw))
	for _, t := range raw {
		px := t.TradePrice
		if live, ok := c.LivePrice(t.Market); ok {
			px = live
		}
		res = append(res, models.Ticker{
			Market:        t.Market,
			TradePrice:    px,
			ChangeRate:    t.SignedChangeRate,
			AccTradePrice: t.AccTradePrice24h,
		})
	}

	sort.Slice(res, func(i, j int) bool { return res[i].AccTradePrice > res[j].AccTradePrice })
	return res, nil
}

// LivePrice — цена из WS-потока, если она моложе 3 секунд.
func (c *Client) LivePrice(market string) (float64, bool) {
	c.pxMu.RLock()
	defer c.pxMu.RUnlock()
	lp, ok := c.livePx[market]
	if !ok || time.Since(lp.at) > 3*time.Second {
		return 0, false
	}
	return lp.px, true
}
