package trader

import (
	"context"

	"coin_bot/internal/modules/trader/service"
	"coin_bot/internal/modules/trader/service/pg"
	trend "coin_bot/internal/modules/trend/service"
	upbit "coin_bot/internal/modules/upbit/service"
	"coin_bot/internal/notify"
	"coin_bot/pkg/db"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("trader",
		fx.Provide(
			func(c *upbit.Client) service.MarketProvider { return c },
			func(c *upbit.Client) service.OrderGateway { return c },
			func(c *upbit.Client) service.AccountProvider { return c },
			func(c *upbit.Client) service.PriceWatcher { return c },
			func(cl *trend.Classifier) service.TrendProvider { return cl },
			func(txm *db.PgTxManager) db.TxManager { return txm },
			pg.NewStore,
			func(store *pg.Store) service.PositionStore { return store },
			notify.NewFromConfig,
			service.NewClock,
			service.NewSession,
			service.NewSelector,
			service.NewManager,
			service.NewLoop,
		),
		fx.Invoke(func(lc fx.Lifecycle, store *pg.Store, loop *service.Loop) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return store.EnsureSchema(ctx)
				},
				OnStop: func(_ context.Context) error {
					loop.Stop()
					return nil
				},
			})
		}),
	)
}
