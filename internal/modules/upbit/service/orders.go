package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"coin_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type orderResp struct {
	UUID  string `json:"uuid"`
	State string `json:"state"`
	Error *struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// SubmitOrder отправляет заявку. Отказ биржи (не-2xx с телом ошибки) — это
// tagged-результат, а не error: транспортные сбои и отказы различаются,
// потому что отказ навсегда исключает рынок из сессии.
func (c *Client) SubmitOrder(
	ctx context.Context,
	market string,
	side models.OrderSide,
	kind models.OrderKind,
	priceOrVolume float64,
) (models.OrderResult, error) {
	params := url.Values{}
	params.Set("market", market)
	params.Set("side", string(side))
	params.Set("ord_type", string(kind))
	switch kind {
	case models.KindPrice:
		params.Set("price", strconv.FormatFloat(priceOrVolume, 'f', -1, 64))
	case models.KindMarket:
		params.Set("volume", strconv.FormatFloat(priceOrVolume, 'f', -1, 64))
	case models.KindLimit:
		// лимитки ядро сейчас не шлёт, но параметры принимаем те же
		params.Set("price", strconv.FormatFloat(priceOrVolume, 'f', -1, 64))
	}

	bodyMap := map[string]string{}
	for k := range params {
		bodyMap[k] = params.Get(k)
	}
	payload, err := sonic.Marshal(bodyMap)
	if err != nil {
		return models.OrderResult{}, errors.Wrap(err, "marshal order")
	}

	token, err := c.authToken(params)
	if err != nil {
		return models.OrderResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return models.OrderResult{}, errors.Wrap(err, "new order request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.OrderResult{}, errors.Wrapf(err, "POST /v1/orders %s", market)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		var r orderResp
		reason := string(data)
		if err := sonic.Unmarshal(data, &r); err == nil && r.Error != nil {
			reason = r.Error.Name + ": " + r.Error.Message
		}
		return models.OrderResult{Rejected: true, Reason: reason}, nil
	}

	var r orderResp
	if err := sonic.Unmarshal(data, &r); err != nil {
		return models.OrderResult{}, errors.Wrap(err, "decode order response")
	}
	if r.UUID == "" {
		return models.OrderResult{Rejected: true, Reason: "empty uuid in response"}, nil
	}
	return models.OrderResult{UUID: r.UUID}, nil
}

// OrderFilled — поллинг состояния заявки.
func (c *Client) OrderFilled(ctx context.Context, uuid string) (bool, error) {
	q := url.Values{}
	q.Set("uuid", uuid)
	body, err := c.get(ctx, "/v1/order", q, true)
	if err != nil {
		return false, err
	}
	var r orderResp
	if err := sonic.Unmarshal(body, &r); err != nil {
		return false, err
	}
	return r.State == "done", nil
}
