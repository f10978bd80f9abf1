package seed

import (
	"context"

	"github.com/Rosario027/finalerp/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("seed",
	fx.Provide(New),
)

// OnStart seeds during application start when the bootstrap config asks for it.
var OnStart = fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, s *Seeder) {
	if !cfg.Bootstrap.SeedOnStart {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Run(ctx, Options{SampleProducts: cfg.Bootstrap.SampleData})
		},
	})
})
