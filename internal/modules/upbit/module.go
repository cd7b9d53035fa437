package upbit

import (
	"context"

	"coin_bot/internal/modules/upbit/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("upbit",
		fx.Provide(
			service.NewClient,
		),
		// WS-поток последних цен по удерживаемым рынкам
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, ctx context.Context) {
			wsCtx, cancel := context.WithCancel(ctx)
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go c.Watch(wsCtx)
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
