package service

import (
	"context"
	"sync"
	"time"

	"coin_bot/internal/modules/config"
	"coin_bot/internal/notify"
	"coin_bot/pkg/logger"
)

// Loop крутит Manager.Tick с фиксированным шагом. Подряд идущие сбои тика
// копятся; после потолка цикл глушит сам себя, чтобы не молотить в пустоту.
type Loop struct {
	manager *Manager
	sess    *Session
	cfg     *config.Config
	rules   *config.Rules
	n       notify.Notifier

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLoop(manager *Manager, sess *Session, cfg *config.Config, rules *config.Rules, n notify.Notifier) *Loop {
	return &Loop{manager: manager, sess: sess, cfg: cfg, rules: rules, n: n}
}

// Start запускает торговую сессию с указанным бюджетом на позицию.
// Повторный Start при уже работающем цикле — no-op.
func (l *Loop) Start(budget float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sess.Running() {
		logger.InfoLogger.Info("⏸ [LOOP] сессия уже идёт, повторный запуск проигнорирован")
		return
	}

	l.sess.Reset(budget)
	l.sess.SetRunning(true)

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx, l.done)

	l.sess.Logf("▶️ [LOOP] сессия запущена, бюджет %.0f KRW", budget)
	l.n.Sendf("▶️ торговля запущена, бюджет %.0f KRW", budget)
}

// Stop останавливает цикл и ждёт завершения текущего тика (с потолком).
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.InfoLogger.Info("⚠️ [LOOP] тик не завершился за 10с, не ждём дальше")
	}

	l.sess.SetRunning(false)
	l.sess.Logf("⏹ [LOOP] сессия остановлена")
	l.n.Send("⏹ торговля остановлена")
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer l.sess.SetRunning(false)

	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := l.manager.Tick(ctx); err != nil {
			n := l.sess.AddFailure()
			l.sess.Logf("❌ [LOOP] сбой тика (%d/%d): %v", n, l.rules.MaxFailures, err)
			if n >= l.rules.MaxFailures {
				l.sess.Logf("🛑 [LOOP] потолок сбоев достигнут, сессия остановлена")
				l.n.Sendf("🛑 торговля остановлена: %d сбоев подряд, последний: %v", n, err)
				return
			}
			continue
		}
		l.sess.ResetFailures()
	}
}

func (l *Loop) IsRunning() bool { return l.sess.Running() }
