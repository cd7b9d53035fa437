package config

import "go.uber.org/fx"

// Module регистрирует конфиг и пороги правил как fx-провайдеры.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
			NewRules,
		),
	)
}
