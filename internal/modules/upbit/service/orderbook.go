package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"coin_bot/internal/models"

	"github.com/bytedance/sonic"
)

type orderBookResp struct {
	Market       string  `json:"market"`
	TotalBidSize float64 `json:"total_bid_size"`
	TotalAskSize float64 `json:"total_ask_size"`
	Units        []struct {
		AskPrice float64 `json:"ask_price"`
		BidPrice float64 `json:"bid_price"`
	} `json:"orderbook_units"`
}

// OrderBooks — батч-запрос стаканов с кешем. Один вызов на все рынки за тик,
// свежие записи (моложе TTL) не перезапрашиваются.
func (c *Client) OrderBooks(ctx context.Context, markets []string) (map[string]models.OrderBook, error) {
	res := make(map[string]models.OrderBook, len(markets))
	now := time.Now()

	stale := make([]string, 0, len(markets))
	c.obMu.RLock()
	for _, m := range markets {
		if e, ok := c.obCache[m]; ok && now.Sub(e.at) <= c.obTTL {
			res[m] = e.book
		} else {
			stale = append(stale, m)
		}
	}
	c.obMu.RUnlock()

	if len(stale) == 0 {
		return res, nil
	}

	q := url.Values{}
	q.Set("markets", strings.Join(stale, ","))
	body, err := c.get(ctx, "/v1/orderbook", q, false)
	if err != nil {
		// частичный результат из кеша лучше, чем ничего
		if len(res) > 0 {
			return res, nil
		}
		return nil, err
	}

	var raw []orderBookResp
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	c.obMu.Lock()
	for _, ob := range raw {
		book := models.OrderBook{
			Market:   ob.Market,
			BidTotal: ob.TotalBidSize,
			AskTotal: ob.TotalAskSize,
		}
		if len(ob.Units) > 0 {
			book.BestAsk = ob.Units[0].AskPrice
			book.BestBid = ob.Units[0].BidPrice
		}
		c.obCache[ob.Market] = obEntry{book: book, at: now}
		res[ob.Market] = book
	}
	c.obMu.Unlock()

	return res, nil
}
