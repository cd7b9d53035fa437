package trend

import (
	"coin_bot/internal/modules/trend/service"
	upbit "coin_bot/internal/modules/upbit/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("trend",
		fx.Provide(
			func(c *upbit.Client) service.MarketData { return c },
			service.NewClassifier,
		),
	)
}
