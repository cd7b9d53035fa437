package service

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"coin_bot/internal/models"

	"github.com/bytedance/sonic"
)

type candleResp struct {
	Market       string  `json:"market"`
	OpeningPrice float64 `json:"opening_price"`
	HighPrice    float64 `json:"high_price"`
	LowPrice     float64 `json:"low_price"`
	TradePrice   float64 `json:"trade_price"`
	Volume       float64 `json:"candle_acc_trade_volume"`
	DateTimeUTC  string  `json:"candle_date_time_utc"`
}

// DayCandles — дневные свечи, от старых к новым.
func (c *Client) DayCandles(ctx context.Context, market string, count int) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("market", market)
	q.Set("count", strconv.Itoa(count))
	body, err := c.get(ctx, "/v1/candles/days", q, false)
	if err != nil {
		return nil, err
	}
	var raw []candleResp
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	// Upbit отдаёт от новых к старым
	res := make([]models.Candle, len(raw))
	for i, cd := range raw {
		at, _ := time.Parse("2006-01-02T15:04:05", cd.DateTimeUTC)
		res[len(raw)-1-i] = models.Candle{
			Market:   cd.Market,
			Open:     cd.OpeningPrice,
			High:     cd.HighPrice,
			Low:      cd.LowPrice,
			Close:    cd.TradePrice,
			Volume:   cd.Volume,
			OpenedAt: at,
		}
	}
	return res, nil
}
