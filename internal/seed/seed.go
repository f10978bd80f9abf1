// Package seed prepares a fresh database for first use.
package seed

import (
	"context"
	"fmt"
	"strconv"

	authdomain "github.com/Rosario027/finalerp/internal/auth/domain"
	"github.com/Rosario027/finalerp/internal/config"
	productdomain "github.com/Rosario027/finalerp/internal/product/domain"
	settingdomain "github.com/Rosario027/finalerp/internal/setting/domain"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Auth     authdomain.Service
	Settings settingdomain.Service
	Products productdomain.Service
}

type Seeder struct {
	log      *zap.Logger
	cfg      config.BootstrapConfig
	auth     authdomain.Service
	settings settingdomain.Service
	products productdomain.Service
}

func New(p Params) *Seeder {
	return &Seeder{
		log:      p.Log.Named("seed"),
		cfg:      p.Config.Bootstrap,
		auth:     p.Auth,
		settings: p.Settings,
		products: p.Products,
	}
}

type Options struct {
	SampleProducts bool
}

// Run is safe to repeat: every step only fills what is missing.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	created, err := s.auth.EnsureAdmin(ctx, s.cfg.AdminUsername, s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		s.log.Info("admin account created", zap.String("username", s.cfg.AdminUsername))
	}

	if err := s.ensureSettings(ctx); err != nil {
		return err
	}

	if opts.SampleProducts {
		return s.ensureSampleProducts(ctx)
	}
	return nil
}

func (s *Seeder) ensureSettings(ctx context.Context) error {
	defaults := settingdomain.DefaultNumberingConfig()
	values := map[string]string{
		settingdomain.KeyInvoiceSeriesStart: strconv.FormatInt(defaults.SeriesStart, 10),
		settingdomain.KeyCashGSTMode:        string(defaults.CashGSTMode),
		settingdomain.KeyOnlineGSTMode:      string(defaults.OnlineGSTMode),
	}
	for _, key := range settingdomain.NumberingKeys {
		current, err := s.settings.Get(ctx, key)
		if err != nil {
			return err
		}
		if current.Value != nil {
			continue
		}
		if _, err := s.settings.Set(ctx, settingdomain.SetRequest{Key: key, Value: values[key]}); err != nil {
			return err
		}
		s.log.Info("default setting written", zap.String("key", key), zap.String("value", values[key]))
	}
	return nil
}

type sampleProduct struct {
	name     string
	hsn      string
	category string
	rate     string
	gst      int64
}

var sampleProducts = []sampleProduct{
	{"Laptop", "8471", "Electronics", "45000.00", 18},
	{"Mouse", "8471", "Electronics", "500.00", 18},
	{"Keyboard", "8471", "Electronics", "1200.00", 18},
	{"Monitor", "8528", "Electronics", "15000.00", 18},
	{"Desk Chair", "9401", "Furniture", "8000.00", 18},
	{"Office Desk", "9403", "Furniture", "12000.00", 18},
	{"Notebook", "4820", "Stationery", "50.00", 5},
	{"Pen Set", "9608", "Stationery", "150.00", 5},
	{"Printer", "8443", "Electronics", "8500.00", 18},
	{"USB Drive 64GB", "8523", "Electronics", "800.00", 18},
}

func (s *Seeder) ensureSampleProducts(ctx context.Context) error {
	existing, err := s.products.List(ctx, productdomain.ListRequest{IncludeArchived: true})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, item := range sampleProducts {
		hsn, category := item.hsn, item.category
		rate, err := decimal.NewFromString(item.rate)
		if err != nil {
			return err
		}
		_, err = s.products.Create(ctx, productdomain.CreateRequest{
			Name:          item.name,
			Category:      &category,
			HSNCode:       &hsn,
			Rate:          tax.Round(rate),
			GSTPercentage: decimal.NewFromInt(item.gst),
		})
		if err != nil {
			return fmt.Errorf("seed product %s: %w", item.name, err)
		}
	}
	s.log.Info("sample products created", zap.Int("count", len(sampleProducts)))
	return nil
}
