package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "Asia/Kolkata", cfg.BusinessTimezone)
	assert.Equal(t, "finalerp-dev-secret", cfg.AuthJWTSecret)
	assert.False(t, cfg.Bootstrap.SeedOnStart)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "info", cfg.Telemetry.LogLevel)
	assert.Equal(t, 0.1, cfg.Telemetry.SamplingRatio)
}

func TestLoad_ReadsOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, ,https://shop.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("OTEL_SAMPLING_RATIO", "not-a-number")
	t.Setenv("SEED_SAMPLE_DATA", "yes")

	cfg := Load()
	assert.Equal(t, []string{"http://localhost:5173", "https://shop.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "debug", cfg.Telemetry.LogLevel)
	assert.Equal(t, 0.1, cfg.Telemetry.SamplingRatio)
	assert.True(t, cfg.Bootstrap.SeedOnStart)
	assert.True(t, cfg.Bootstrap.SampleData)
}
