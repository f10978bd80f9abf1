package seed

import (
	"context"
	"testing"
	"time"

	authdomain "github.com/Rosario027/finalerp/internal/auth/domain"
	authrepository "github.com/Rosario027/finalerp/internal/auth/repository"
	authservice "github.com/Rosario027/finalerp/internal/auth/service"
	"github.com/Rosario027/finalerp/internal/auth/token"
	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/config"
	productdomain "github.com/Rosario027/finalerp/internal/product/domain"
	productrepository "github.com/Rosario027/finalerp/internal/product/repository"
	productservice "github.com/Rosario027/finalerp/internal/product/service"
	settingdomain "github.com/Rosario027/finalerp/internal/setting/domain"
	settingrepository "github.com/Rosario027/finalerp/internal/setting/repository"
	settingservice "github.com/Rosario027/finalerp/internal/setting/service"
	"github.com/Rosario027/finalerp/pkg/db/dbtest"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	seeder   *Seeder
	auth     authdomain.Service
	settings settingdomain.Service
	products productdomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &authdomain.User{}, &settingdomain.Setting{}, &productdomain.Product{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		AuthJWTSecret:     "seed-secret",
		AuthTokenTTLHours: 1,
		Bootstrap: config.BootstrapConfig{
			AdminUsername: "admin",
			AdminPassword: "admin123",
		},
	}
	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	f := &fixture{
		auth: authservice.New(authservice.Params{
			DB:     db,
			Log:    log,
			GenID:  node,
			Clock:  fake,
			Repo:   authrepository.Provide(),
			Tokens: token.NewIssuer(cfg, fake),
		}),
		settings: settingservice.New(settingservice.Params{DB: db, Log: log, Repo: settingrepository.Provide(), Clock: fake}),
		products: productservice.New(productservice.Params{DB: db, Log: log, GenID: node, Repo: productrepository.Provide()}),
	}
	f.seeder = New(Params{Log: log, Config: cfg, Auth: f.auth, Settings: f.settings, Products: f.products})
	return f
}

func TestRun_CreatesAdminAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.seeder.Run(ctx, Options{}))

	users, err := f.auth.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "admin", users[0].Role)

	start, err := f.settings.Get(ctx, settingdomain.KeyInvoiceSeriesStart)
	require.NoError(t, err)
	require.NotNil(t, start.Value)
	assert.Equal(t, "1", *start.Value)

	cash, err := f.settings.Get(ctx, settingdomain.KeyCashGSTMode)
	require.NoError(t, err)
	require.NotNil(t, cash.Value)
	assert.Equal(t, "inclusive", *cash.Value)

	products, err := f.products.List(ctx, productdomain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRun_KeepsExistingValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.settings.Set(ctx, settingdomain.SetRequest{Key: settingdomain.KeyInvoiceSeriesStart, Value: "500"})
	require.NoError(t, err)

	require.NoError(t, f.seeder.Run(ctx, Options{SampleProducts: true}))
	require.NoError(t, f.seeder.Run(ctx, Options{SampleProducts: true}))

	start, err := f.settings.Get(ctx, settingdomain.KeyInvoiceSeriesStart)
	require.NoError(t, err)
	assert.Equal(t, "500", *start.Value)

	products, err := f.products.List(ctx, productdomain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, products, len(sampleProducts))

	users, err := f.auth.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
