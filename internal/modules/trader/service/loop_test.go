package service

import (
	"testing"
	"time"

	"coin_bot/internal/modules/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var errTransport = errors.New("upstream timeout")

func newLoopEnv(t *testing.T) (*Loop, *env) {
	t.Helper()
	e := newEnv(t)
	e.sess.SetRunning(false)
	cfg := &config.Config{TickInterval: 5 * time.Millisecond}
	loop := NewLoop(e.mgr, e.sess, cfg, e.rules, silentNotifier{})
	return loop, e
}

func TestLoopStartIsNotReentrant(t *testing.T) {
	loop, e := newLoopEnv(t)
	defer loop.Stop()

	loop.Start(10000)
	require.True(t, loop.IsRunning())
	require.Equal(t, 10000.0, e.sess.Budget())

	// повторный запуск — no-op, бюджет не перетирается
	loop.Start(99999)
	require.Equal(t, 10000.0, e.sess.Budget())
}

func TestLoopStopsAfterFailureCeiling(t *testing.T) {
	loop, e := newLoopEnv(t)
	e.accounts.err = errTransport

	loop.Start(10000)
	require.Eventually(t, func() bool { return !loop.IsRunning() }, 2*time.Second, 10*time.Millisecond)
	require.GreaterOrEqual(t, e.sess.Failures(), e.rules.MaxFailures)
}

func TestLoopStopIsIdempotent(t *testing.T) {
	loop, _ := newLoopEnv(t)

	loop.Start(10000)
	loop.Stop()
	require.False(t, loop.IsRunning())
	loop.Stop()
}
