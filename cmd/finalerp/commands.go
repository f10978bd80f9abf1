package main

import (
	"context"
	"fmt"

	invoicedomain "github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/Rosario027/finalerp/internal/migration"
	"github.com/Rosario027/finalerp/internal/seed"
	"github.com/Rosario027/finalerp/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				infrastructure(),
				migration.Module,
				server.Module,
				seed.Module,
				seed.OnStart,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the schema up to date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rollback {
				return runOnce(migration.Module)
			}
			return runOnce(fx.Invoke(func(conn *gorm.DB, log *zap.Logger) error {
				sqlDB, err := conn.DB()
				if err != nil {
					return err
				}
				if err := migration.Rollback(sqlDB); err != nil {
					return err
				}
				log.Named("migration").Info("rolled back one step")
				return nil
			}))
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "revert the most recent migration (postgres only)")
	return cmd
}

func seedCmd() *cobra.Command {
	var sample bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin and default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(
				migration.Module,
				domains(),
				seed.Module,
				fx.Invoke(func(lc fx.Lifecycle, s *seed.Seeder) {
					lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
						return s.Run(ctx, seed.Options{SampleProducts: sample})
					}})
				}),
			)
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "also create the sample product catalog")
	return cmd
}

func nextNumberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-number",
		Short: "Print the invoice number the next sale will receive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(
				domains(),
				fx.Invoke(func(lc fx.Lifecycle, svc invoicedomain.Service) {
					lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
						next, err := svc.PreviewNextNumber(ctx)
						if err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s (FY %s)\n", next.InvoiceNumber, next.FiscalYear)
						return nil
					}})
				}),
			)
		},
	}
}
