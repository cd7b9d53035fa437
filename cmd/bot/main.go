package main

import (
	"context"
	"log"

	"coin_bot/internal/modules/config"
	"coin_bot/internal/modules/postgres"
	"coin_bot/internal/modules/trader"
	"coin_bot/internal/modules/trend"
	"coin_bot/internal/modules/upbit"
	"coin_bot/internal/modules/web"
	"coin_bot/pkg/logger"
	"coin_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	logger.SetServiceName("coin_bot")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		upbit.Module(),
		trend.Module(),
		trader.Module(),
		web.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			if !cfg.Jaeger.Enabled {
				return nil
			}
			tracing.SetServiceName("coin_bot")
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	)
	app.Run()
}
