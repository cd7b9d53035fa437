package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"coin_bot/internal/models"
	"coin_bot/internal/modules/config"
	trader "coin_bot/internal/modules/trader/service"
	"coin_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

// Server — управляющий HTTP-интерфейс бота: запуск/остановка сессии
// и чтение текущего состояния. Торговой логики здесь нет.
type Server struct {
	cfg      *config.Config
	loop     *trader.Loop
	sess     *trader.Session
	accounts trader.AccountProvider
	srv      *http.Server
}

func NewServer(cfg *config.Config, loop *trader.Loop, sess *trader.Session, accounts trader.AccountProvider) *Server {
	return &Server{cfg: cfg, loop: loop, sess: sess, accounts: accounts}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/trade/start", s.handleStart)
	mux.HandleFunc("POST /api/trade/stop", s.handleStop)
	mux.HandleFunc("GET /api/trade/status", s.handleStatus)
	mux.HandleFunc("GET /api/trade/logs", s.handleLogs)
	mux.HandleFunc("GET /api/candidates", s.handleCandidates)
	mux.HandleFunc("GET /api/accounts", s.handleAccounts)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.cfg.Service.Host, s.cfg.Service.PublicPort)
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info("🌐 [WEB] слушаем %s", addr)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("🌐 [WEB] сервер упал: %v", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	budget := s.cfg.DefaultBudgetKRW
	if raw := r.URL.Query().Get("budget"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			writeErr(w, http.StatusBadRequest, "budget must be a positive number")
			return
		}
		budget = v
	}

	if s.loop.IsRunning() {
		writeJSON(w, http.StatusConflict, map[string]any{"running": true, "detail": "session already running"})
		return
	}
	s.loop.Start(budget)
	writeJSON(w, http.StatusOK, map[string]any{"running": true, "budget_krw": budget})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.loop.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": false})
}

type positionView struct {
	Market      string  `json:"market"`
	BuyPrice    float64 `json:"buy_price"`
	HighPrice   float64 `json:"high_price"`
	BudgetKRW   float64 `json:"budget_krw"`
	OpenedAt    string  `json:"opened_at"`
	PendingUUID string  `json:"pending_uuid,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	positions := s.sess.Positions()
	views := make([]positionView, 0, len(positions))
	for _, p := range positions {
		views = append(views, positionView{
			Market:      p.Market,
			BuyPrice:    p.BuyPrice,
			HighPrice:   p.HighPrice,
			BudgetKRW:   p.BudgetKRW,
			OpenedAt:    p.OpenedAt.Format(time.RFC3339),
			PendingUUID: p.OrderUUID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"running":    s.loop.IsRunning(),
		"budget_krw": s.sess.Budget(),
		"failures":   s.sess.Failures(),
		"positions":  views,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"logs": s.sess.RecentLog()})
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	shortlist := s.sess.Shortlist()
	out := make([]map[string]any, 0, len(shortlist))
	for _, t := range shortlist {
		out = append(out, map[string]any{
			"market":          t.Market,
			"trade_price":     t.TradePrice,
			"change_rate":     t.ChangeRate,
			"acc_trade_price": t.AccTradePrice,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": out})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.accounts.Holdings(r.Context())
	if err != nil {
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": holdings})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func writeErr(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]any{"error": detail})
}
