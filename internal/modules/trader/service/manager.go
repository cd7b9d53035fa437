package service

import (
	"context"

	"coin_bot/internal/helper"
	"coin_bot/internal/models"
	"coin_bot/internal/modules/config"
	"coin_bot/internal/notify"
	"coin_bot/pkg/tracing"

	"github.com/pkg/errors"
)

// Manager — машина состояний позиций. Один тик: reconcile со счётом →
// exit-правила по каждой позиции → попытка нового входа. Порядок жёсткий.
type Manager struct {
	market   MarketProvider
	gateway  OrderGateway
	accounts AccountProvider
	trend    TrendProvider
	store    PositionStore
	selector *Selector
	sess     *Session
	rules    *config.Rules
	clock    Clock
	n        notify.Notifier
	watcher  PriceWatcher // может быть nil
}

func NewManager(
	market MarketProvider,
	gateway OrderGateway,
	accounts AccountProvider,
	trend TrendProvider,
	store PositionStore,
	selector *Selector,
	sess *Session,
	rules *config.Rules,
	clock Clock,
	n notify.Notifier,
	watcher PriceWatcher,
) *Manager {
	return &Manager{
		market:   market,
		gateway:  gateway,
		accounts: accounts,
		trend:    trend,
		store:    store,
		selector: selector,
		sess:     sess,
		rules:    rules,
		clock:    clock,
		n:        n,
		watcher:  watcher,
	}
}

// Tick выполняет один проход. Ошибка здесь считается сбоем тика и
// учитывается циклом; «нет данных за тик» ошибкой не является.
func (m *Manager) Tick(ctx context.Context) error {
	span, ctx := tracing.StartTick(ctx)
	defer span.Finish()

	holdings, err := m.accounts.Holdings(ctx)
	if err != nil {
		return errors.Wrap(err, "holdings")
	}
	held := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		held[h.Currency] = h.Balance
	}
	krwBalance := held["KRW"]

	// рабочая копия из durable-стора: переживает рестарт и ручные правки БД
	stored, err := m.store.ListOpen(ctx)
	if err != nil {
		return errors.Wrap(err, "list open positions")
	}
	m.sess.ReplacePositions(stored)

	// §1: позиции, проданные руками мимо бота, закрываем без ордера
	if err := m.reconcile(ctx, held); err != nil {
		return err
	}

	if m.watcher != nil {
		m.watcher.SetWatch(m.sess.OpenMarkets())
	}

	tickers, err := m.market.Tickers(ctx)
	if err != nil || len(tickers) == 0 {
		// transient: пропускаем тик, не считаем сбоем
		m.sess.Logf("⚠️ [MARKET] снапшот недоступен, тик пропущен: %v", err)
		return nil
	}

	prices := make(map[string]models.Ticker, len(tickers))
	highVol := make(map[string]struct{})
	for _, t := range tickers {
		prices[t.Market] = t
		if t.ChangeRate > m.rules.VolThreshold || -t.ChangeRate > m.rules.VolThreshold {
			highVol[t.Market] = struct{}{}
		}
	}

	trend := m.trend.Current(ctx)

	for _, p := range m.sess.Positions() {
		if err := m.evalExit(ctx, p, prices, highVol, held, trend); err != nil {
			return err
		}
	}

	// вход оцениваем по счётчику после выходов этого же тика:
	// освободившийся слот можно занять сразу
	return m.evalEntry(ctx, tickers, highVol, krwBalance)
}

// reconcile: валюта позиции отсутствует на счёте — запись чистится,
// ордер не шлётся. Повторный вызов с тем же счётом ничего не меняет.
func (m *Manager) reconcile(ctx context.Context, held map[string]float64) error {
	for _, p := range m.sess.Positions() {
		currency := helper.CurrencyOf(p.Market)
		if _, ok := held[currency]; ok {
			continue
		}
		if err := m.store.Deactivate(ctx, p.Market); err != nil {
			return errors.Wrapf(err, "deactivate %s", p.Market)
		}
		m.sess.Delete(p.Market)
		m.sess.Logf("⚠️ %s продан вне бота, запись закрыта без ордера", p.Market)
		m.n.Sendf("⚠️ [%s] позиция закрыта: монета продана вне бота", p.Market)
	}
	return nil
}

// evalExit гоняет exit-правила в фиксированном приоритете; первое сработавшее
// завершает обработку позиции в этом тике.
func (m *Manager) evalExit(
	ctx context.Context,
	p *models.Position,
	prices map[string]models.Ticker,
	highVol map[string]struct{},
	held map[string]float64,
	trend models.Trend,
) error {
	// правило 2: уже отправленный sell сверяем с биржей, дублей не шлём
	if p.Closing() {
		filled, err := m.gateway.OrderFilled(ctx, p.OrderUUID)
		if err != nil {
			m.sess.Logf("⚠️ [%s] статус ордера %s недоступен: %v", p.Market, p.OrderUUID, err)
			return nil
		}
		if filled {
			if err := m.store.Deactivate(ctx, p.Market); err != nil {
				return errors.Wrapf(err, "deactivate %s", p.Market)
			}
			m.sess.Delete(p.Market)
			m.sess.Logf("✅ [%s] продажа исполнена", p.Market)
			m.n.Sendf("✅ [%s] продажа исполнена", p.Market)
		}
		return nil
	}

	t, ok := prices[p.Market]
	if !ok {
		// transient: нет цены — пропускаем рынок в этом тике
		return nil
	}
	px := t.TradePrice

	// максимум монотонен, фиксируем в сторе при каждом обновлении
	if p.TouchHigh(px) {
		if err := m.store.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "persist high %s", p.Market)
		}
		m.sess.Logf("📊 [%s] новый максимум %.8f", p.Market, p.HighPrice)
	}

	profit := p.ProfitRate(px, m.rules.FeeRate)
	holding := p.HoldingTime(m.clock.Now())
	_, vol := highVol[p.Market]

	minProfitPx := p.BuyPrice * (1 + m.rules.MinProfitPct/100)

	// правило 3: выход по времени при достигнутом минимуме профита
	sideways := trend == models.TrendNeutral || trend == models.TrendBearish
	if sideways && holding > m.rules.HoldSideways && px >= minProfitPx {
		return m.sell(ctx, p, px, held, "⏱ боковик/падение: 1%% взят, выходим")
	}
	if trend.Bullish() && holding > m.rules.HoldBull && px >= minProfitPx {
		return m.sell(ctx, p, px, held, "⏱ рост: 1%% взят после выдержки, выходим")
	}

	// правило 4: стоп с поправкой на волатильность рынка в этом тике
	stopFactor := m.rules.StopFactor
	if vol {
		stopFactor = m.rules.StopFactorVol
	}
	if px <= p.BuyPrice*stopFactor {
		return m.sell(ctx, p, px, held, "🛑 волатильный стоп")
	}

	// правило 5: жёсткий пол, независимо от правила 4
	if px <= p.BuyPrice*m.rules.StopFactor {
		return m.sell(ctx, p, px, held, "🛑 стоп-лосс -2%%")
	}

	// правило 6: тейк; в росте не продаём, а ведём трейлинг дальше
	if px >= p.BuyPrice*m.rules.TakeProfit {
		if !trend.Bullish() {
			return m.sell(ctx, p, px, held, "✅ цель достигнута, фиксируем")
		}
		m.sess.Logf("🚀 [%s] рост: держим трейлинг, максимум %.8f", p.Market, p.HighPrice)
	}

	// правило 7: трейлинг после взвода на +2%
	if p.TrailArmed(m.rules.TakeProfit) && px <= p.HighPrice*m.rules.TrailingDrop {
		return m.sell(ctx, p, px, held, "🚀 трейлинг-стоп")
	}

	m.sess.Logf("📊 [%s] цена %.8f (вход %.8f, максимум %.8f, доходность %.2f%%)",
		p.Market, px, p.BuyPrice, p.HighPrice, profit)
	return nil
}

// sell отправляет рыночную продажу всего остатка. Отказ биржи — терминальный
// tagged-результат: рынок исключается из сессии и не ретраится.
func (m *Manager) sell(
	ctx context.Context,
	p *models.Position,
	px float64,
	held map[string]float64,
	reason string,
) error {
	if m.sess.IsRejected(p.Market) {
		m.sess.Logf("⚠️ [%s] рынок исключён после отказа, продажа не отправлена", p.Market)
		return nil
	}

	volume := held[helper.CurrencyOf(p.Market)]
	if volume <= 0 {
		m.sess.Logf("⚠️ [%s] нулевой остаток, продавать нечего", p.Market)
		return nil
	}

	res, err := m.gateway.SubmitOrder(ctx, p.Market, models.SideSell, models.KindMarket, volume)
	if err != nil {
		return errors.Wrapf(err, "sell %s", p.Market)
	}
	if res.Rejected {
		m.sess.Reject(p.Market)
		m.sess.Logf("⚠️ [%s] продажа отклонена (%s), рынок исключён до конца сессии", p.Market, res.Reason)
		return nil
	}

	p.OrderUUID = res.UUID
	if err := m.store.Upsert(ctx, p); err != nil {
		return errors.Wrapf(err, "persist pending sell %s", p.Market)
	}

	m.sess.Logf(reason+": [%s] цена %.8f, доходность %.2f%%",
		p.Market, px, p.ProfitRate(px, m.rules.FeeRate))
	m.n.Sendf("📉 [%s] SELL @ %.8f (вход %.8f, доходность %.2f%%)",
		p.Market, px, p.BuyPrice, p.ProfitRate(px, m.rules.FeeRate))
	return nil
}

// evalEntry пробует занять свободный слот. Лимит считается по состоянию
// после выходов этого тика.
func (m *Manager) evalEntry(
	ctx context.Context,
	tickers []models.Ticker,
	highVol map[string]struct{},
	krwBalance float64,
) error {
	if !m.sess.Running() {
		return nil
	}

	open := m.sess.OpenCount()
	if open >= m.rules.MaxOpen {
		m.sess.Logf("⏸ лимит позиций (%d) занят, вход не оцениваем", m.rules.MaxOpen)
		return nil
	}
	if open == 0 {
		m.sess.Logf("🔄 позиций нет, ищем новый вход")
	}

	excluded := m.sess.RejectedSet()
	for _, mk := range m.sess.OpenMarkets() {
		excluded[mk] = struct{}{}
	}
	for mk := range highVol {
		excluded[mk] = struct{}{}
	}

	best, shortlist := m.selector.Select(ctx, tickers, excluded)
	m.sess.SetShortlist(shortlist)
	if best == nil {
		m.sess.Logf("❌ подходящих кандидатов нет")
		return nil
	}

	amount := helper.MinF(m.sess.Budget(), krwBalance)
	if amount < m.rules.MinOrderKRW {
		m.sess.Logf("⚠️ KRW не хватает на минимальную заявку (баланс %.2f)", krwBalance)
		return nil
	}

	res, err := m.gateway.SubmitOrder(ctx, best.Market, models.SideBuy, models.KindPrice, amount)
	if err != nil {
		return errors.Wrapf(err, "buy %s", best.Market)
	}
	if res.Rejected {
		m.sess.Reject(best.Market)
		m.sess.Logf("⚠️ [%s] покупка отклонена (%s), рынок исключён до конца сессии", best.Market, res.Reason)
		return nil
	}

	p := &models.Position{
		Market:    best.Market,
		BuyPrice:  best.TradePrice,
		HighPrice: best.TradePrice,
		BudgetKRW: amount,
		OpenedAt:  m.clock.Now(),
		IsActive:  true,
	}
	if err := m.store.Upsert(ctx, p); err != nil {
		return errors.Wrapf(err, "persist new position %s", p.Market)
	}
	m.sess.Put(p)

	m.sess.Logf("✅ [%s] BUY на %.0f KRW @ %.8f", p.Market, amount, p.BuyPrice)
	m.n.Sendf("📈 [%s] BUY на %.0f KRW @ %.8f", p.Market, amount, p.BuyPrice)
	return nil
}
