package service

import (
	"fmt"
	"sync"

	"coin_bot/internal/models"
	"coin_bot/pkg/logger"
)

const logRingSize = 50

// Session — явное состояние одного запуска трейдера: рабочая копия позиций,
// исключённые после отказа рынки, кольцевой лог для хоста. Никаких глобалов.
// Пишет только горутина цикла; хендлеры веба только читают.
type Session struct {
	mu sync.RWMutex

	running   bool
	budgetKRW float64
	failures  int

	positions map[string]*models.Position
	rejected  map[string]struct{}
	shortlist []models.Ticker

	logBuf []string
}

func NewSession() *Session {
	return &Session{
		positions: make(map[string]*models.Position),
		rejected:  make(map[string]struct{}),
	}
}

// Reset готовит сессию к новому запуску. Исключённые рынки действуют
// на время одного запуска, поэтому здесь сбрасываются.
func (s *Session) Reset(budget float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.budgetKRW = budget
	s.failures = 0
	s.rejected = make(map[string]struct{})
	s.shortlist = nil
}

func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Session) SetRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

func (s *Session) Budget() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budgetKRW
}

func (s *Session) Failures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures
}

func (s *Session) AddFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	return s.failures
}

// ResetFailures: удачный тик обнуляет серию, потолок считается только подряд.
func (s *Session) ResetFailures() {
	s.mu.Lock()
	s.failures = 0
	s.mu.Unlock()
}

// ReplacePositions перестраивает рабочую копию из durable-стора.
func (s *Session) ReplacePositions(list []models.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = make(map[string]*models.Position, len(list))
	for i := range list {
		p := list[i]
		s.positions[p.Market] = &p
	}
}

func (s *Session) Put(p *models.Position) {
	s.mu.Lock()
	s.positions[p.Market] = p
	s.mu.Unlock()
}

func (s *Session) Delete(market string) {
	s.mu.Lock()
	delete(s.positions, market)
	s.mu.Unlock()
}

// Positions — срез указателей в стабильном порядке не гарантируется;
// вызывающий не должен держать их дольше одного тика.
func (s *Session) Positions() []*models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*models.Position, 0, len(s.positions))
	for _, p := range s.positions {
		res = append(res, p)
	}
	return res
}

func (s *Session) OpenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions)
}

func (s *Session) Has(market string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.positions[market]
	return ok
}

func (s *Session) OpenMarkets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]string, 0, len(s.positions))
	for m := range s.positions {
		res = append(res, m)
	}
	return res
}

func (s *Session) Reject(market string) {
	s.mu.Lock()
	s.rejected[market] = struct{}{}
	s.mu.Unlock()
}

func (s *Session) IsRejected(market string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rejected[market]
	return ok
}

func (s *Session) RejectedSet() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make(map[string]struct{}, len(s.rejected))
	for m := range s.rejected {
		res[m] = struct{}{}
	}
	return res
}

func (s *Session) SetShortlist(list []models.Ticker) {
	s.mu.Lock()
	s.shortlist = list
	s.mu.Unlock()
}

func (s *Session) Shortlist() []models.Ticker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Ticker(nil), s.shortlist...)
}

// Logf пишет событие в zap и в кольцевой буфер последних 50 строк,
// который отдаётся хосту как есть.
func (s *Session) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Info("%s", msg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logBuf = append(s.logBuf, msg)
	if len(s.logBuf) > logRingSize {
		s.logBuf = s.logBuf[len(s.logBuf)-logRingSize:]
	}
}

func (s *Session) RecentLog() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.logBuf...)
}
