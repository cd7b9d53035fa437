package service

import (
	"context"
	"sort"

	"coin_bot/internal/models"
	"coin_bot/internal/modules/config"
	"coin_bot/pkg/logger"
)

// Selector ранжирует рынки для входа: рост к прошлому дню, качество стакана,
// оборот. Возвращает лучшего кандидата и шортлист для отображения.
type Selector struct {
	depth interface {
		OrderBooks(ctx context.Context, markets []string) (map[string]models.OrderBook, error)
	}
	rules *config.Rules
}

func NewSelector(depth MarketProvider, rules *config.Rules) *Selector {
	return &Selector{depth: depth, rules: rules}
}

// Select. Пустой результат — не ошибка, а «в этом тике входа нет».
func (s *Selector) Select(
	ctx context.Context,
	tickers []models.Ticker,
	excluded map[string]struct{},
) (*models.Ticker, []models.Ticker) {

	// 1) только растущие и не исключённые
	positive := make([]models.Ticker, 0, len(tickers))
	for _, t := range tickers {
		if t.ChangeRate <= 0 {
			continue
		}
		if _, skip := excluded[t.Market]; skip {
			continue
		}
		positive = append(positive, t)
	}
	if len(positive) == 0 {
		return nil, nil
	}

	// 2) топ по дневному росту
	sort.Slice(positive, func(i, j int) bool { return positive[i].ChangeRate > positive[j].ChangeRate })
	if len(positive) > s.rules.TopByChange {
		positive = positive[:s.rules.TopByChange]
	}

	// 3) фильтр по микроструктуре: перевес бидов и узкий спред.
	// Рынок без данных стакана фильтр не проходит и не проваливает —
	// остаётся кандидатом как есть.
	markets := make([]string, len(positive))
	for i, t := range positive {
		markets[i] = t.Market
	}
	books, err := s.depth.OrderBooks(ctx, markets)
	if err != nil {
		logger.Error("[SELECT] стакан недоступен, фильтр пропущен: %v", err)
	}

	filtered := positive[:0]
	for _, t := range positive {
		ob, ok := books[t.Market]
		if ok && ob.BidTotal > 0 && ob.AskTotal > 0 && ob.BestBid > 0 {
			if ob.BidTotal <= ob.AskTotal*s.rules.BidImbalance || ob.Spread() >= s.rules.MaxSpread {
				continue
			}
		}
		filtered = append(filtered, t)
	}
	if len(filtered) == 0 {
		return nil, nil
	}

	// 4) топ по обороту за 24ч — это и есть шортлист
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].AccTradePrice > filtered[j].AccTradePrice })
	if len(filtered) > s.rules.ShortlistSize {
		filtered = filtered[:s.rules.ShortlistSize]
	}
	shortlist := append([]models.Ticker(nil), filtered...)

	// 5) финальный выбор: максимум цена * оборот
	best := shortlist[0]
	for _, t := range shortlist[1:] {
		if t.TradePrice*t.AccTradePrice > best.TradePrice*best.AccTradePrice {
			best = t
		}
	}
	return &best, shortlist
}
