package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const wsURL = "wss://api.upbit.com/websocket/v1"

// SetWatch задаёт список рынков для WS-потока. Watch сам заметит изменение
// и переподключится с новой подпиской.
func (c *Client) SetWatch(markets []string) {
	c.pxMu.Lock()
	c.watch = append(c.watch[:0], markets...)
	c.pxMu.Unlock()
}

func (c *Client) watchList() []string {
	c.pxMu.RLock()
	defer c.pxMu.RUnlock()
	return append([]string(nil), c.watch...)
}

type wsTicker struct {
	Type       string  `json:"type"`
	Code       string  `json:"code"`
	TradePrice float64 `json:"trade_price"`
}

// Watch держит WS-поток тикеров по наблюдаемым рынкам и складывает
// последнюю цену в livePx. Падает соединение — ждём и переподключаемся.
func (c *Client) Watch(ctx context.Context) {
	retry := 0
	for {
		if ctx.Err() != nil {
			return
		}

		codes := c.watchList()
		if len(codes) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		conn, _, err := c.wsDialer.Dial(wsURL, nil)
		if err != nil {
			retry++
			if retry > 8 {
				retry = 8
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(300*retry) * time.Millisecond):
			}
			continue
		}
		retry = 0

		sub := []any{
			map[string]string{"ticket": newNonce()},
			map[string]any{"type": "ticker", "codes": codes},
		}
		payload, _ := sonic.Marshal(sub)
		_ = conn.WriteMessage(websocket.TextMessage, payload)

		stopPing := make(chan struct{})
		go func() {
			t := time.NewTicker(15 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-stopPing:
					return
				case <-ctx.Done():
					return
				case <-t.C:
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}()

		subscribed := len(codes)
		for {
			if ctx.Err() != nil {
				close(stopPing)
				_ = conn.Close()
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}

			var t wsTicker
			if err := sonic.Unmarshal(msg, &t); err != nil || t.Type != "ticker" || t.Code == "" {
				continue
			}
			c.pxMu.Lock()
			c.livePx[t.Code] = livePrice{px: t.TradePrice, at: time.Now()}
			resub := len(c.watch) != subscribed
			c.pxMu.Unlock()

			// список наблюдения поменялся — переподключаемся с новой подпиской
			if resub {
				break
			}
		}

		close(stopPing)
		_ = conn.Close()
	}
}
