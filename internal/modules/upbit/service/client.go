package service

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"coin_bot/internal/models"
	"coin_bot/internal/modules/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const restURL = "https://api.upbit.com"

// Client — тонкий REST/WS-клиент Upbit. Вся логика решений живёт в trader,
// здесь только подпись, транспорт и разбор ответов.
type Client struct {
	cfg *config.Config

	baseURL  string
	http     *http.Client
	wsDialer *websocket.Dialer

	accessKey string
	secretKey string

	// кеш стакана, чтобы не упираться в rate limit (429)
	obMu    sync.RWMutex
	obCache map[string]obEntry
	obTTL   time.Duration

	// последняя цена из WS-потока по удерживаемым рынкам
	pxMu   sync.RWMutex
	livePx map[string]livePrice
	watch  []string
}

type obEntry struct {
	book models.OrderBook
	at   time.Time
}

type livePrice struct {
	px float64
	at time.Time
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:       cfg,
		baseURL:   restURL,
		http:      &http.Client{Timeout: 10 * time.Second},
		wsDialer:  &websocket.Dialer{},
		accessKey: cfg.Upbit.AccessKey,
		secretKey: cfg.Upbit.SecretKey,
		obCache:   make(map[string]obEntry),
		obTTL:     cfg.OrderBookTTL,
		livePx:    make(map[string]livePrice),
	}
}

func (c *Client) SetCreds(access, secret string) { c.accessKey, c.secretKey = access, secret }

// authToken собирает JWT для приватных вызовов. Для запросов с параметрами
// Upbit требует SHA512-хеш строки запроса внутри payload.
func (c *Client) authToken(query url.Values) (string, error) {
	claims := jwt.MapClaims{
		"access_key": c.accessKey,
		"nonce":      newNonce(),
	}
	if len(query) > 0 {
		h := sha512.Sum512([]byte(query.Encode()))
		claims["query_hash"] = hex.EncodeToString(h[:])
		claims["query_hash_alg"] = "SHA512"
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.secretKey))
	if err != nil {
		return "", errors.Wrap(err, "sign upbit jwt")
	}
	return token, nil
}

func newNonce() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// get — общий GET с опциональной подписью.
func (c *Client) get(ctx context.Context, path string, query url.Values, signed bool) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	if signed {
		token, err := c.authToken(query)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("upbit %s: http %d: %s", path, resp.StatusCode, string(body))
	}
	return body, nil
}
