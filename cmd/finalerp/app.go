package main

import (
	"context"
	"time"

	"github.com/Rosario027/finalerp/internal/audit"
	"github.com/Rosario027/finalerp/internal/auth"
	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/config"
	"github.com/Rosario027/finalerp/internal/invoice"
	"github.com/Rosario027/finalerp/internal/observability"
	"github.com/Rosario027/finalerp/internal/product"
	"github.com/Rosario027/finalerp/internal/providers"
	"github.com/Rosario027/finalerp/internal/ratelimit"
	"github.com/Rosario027/finalerp/internal/setting"
	"github.com/Rosario027/finalerp/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const commandTimeout = 2 * time.Minute

// infrastructure is shared by every command.
func infrastructure() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
}

// domains wires the services one-shot commands need without the HTTP server.
func domains() fx.Option {
	return fx.Options(
		ratelimit.Module,
		audit.Module,
		auth.Module,
		setting.Module,
		product.Module,
		providers.Module,
		invoice.Module,
	)
}

// runOnce starts the app, which executes its invokes, and stops it again.
func runOnce(opts ...fx.Option) error {
	app := fx.New(append([]fx.Option{infrastructure()}, opts...)...)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(ctx)
}
