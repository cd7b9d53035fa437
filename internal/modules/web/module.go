package web

import (
	"context"

	"coin_bot/internal/modules/web/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("web",
		fx.Provide(service.NewServer),
		fx.Invoke(func(lc fx.Lifecycle, srv *service.Server) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					return srv.Start()
				},
				OnStop: func(ctx context.Context) error {
					return srv.Stop(ctx)
				},
			})
		}),
	)
}
