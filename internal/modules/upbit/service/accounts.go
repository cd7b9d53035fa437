package service

import (
	"context"
	"strconv"

	"coin_bot/internal/models"

	"github.com/bytedance/sonic"
)

type accountResp struct {
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
	Locked   string `json:"locked"`
}

// Holdings — живой баланс аккаунта. Это источник правды для reconcile:
// монета, которой тут нет, считается проданной вне бота.
func (c *Client) Holdings(ctx context.Context) ([]models.Holding, error) {
	body, err := c.get(ctx, "/v1/accounts", nil, true)
	if err != nil {
		return nil, err
	}
	var raw []accountResp
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	res := make([]models.Holding, 0, len(raw))
	for _, a := range raw {
		bal, _ := strconv.ParseFloat(a.Balance, 64)
		res = append(res, models.Holding{Currency: a.Currency, Balance: bal})
	}
	return res, nil
}
