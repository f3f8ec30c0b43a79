package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "QUOTE_CACHE_TTL", "RECURRING_INTERVAL", "PROJECTION_HORIZON_MONTHS", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := fromEnv("secret")

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.QuoteCacheTTL)
	assert.Equal(t, 12*time.Hour, cfg.RecurringInterval)
	assert.Equal(t, 12, cfg.ProjectionHorizonMonths)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.RecurringRunOnStartup)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("QUOTE_CACHE_TTL", "90s")
	t.Setenv("RECURRING_INTERVAL", "1h")
	t.Setenv("PROJECTION_HORIZON_MONTHS", "24")
	t.Setenv("ALLOCATION_INCLUDE_DEBT", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := fromEnv("secret")

	assert.Equal(t, 90*time.Second, cfg.QuoteCacheTTL)
	assert.Equal(t, time.Hour, cfg.RecurringInterval)
	assert.Equal(t, 24, cfg.ProjectionHorizonMonths)
	assert.True(t, cfg.AllocationIncludeDebt)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("QUOTE_TIMEOUT", "soon")
	t.Setenv("UPCOMING_WINDOW_DAYS", "many")
	t.Setenv("PROJECTION_HORIZON_MONTHS", "-3")
	t.Setenv("RECURRING_RUN_ON_STARTUP", "maybe")

	cfg := fromEnv("secret")

	assert.Equal(t, 10*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, 30, cfg.UpcomingWindowDays)
	assert.Equal(t, 12, cfg.ProjectionHorizonMonths)
	assert.True(t, cfg.RecurringRunOnStartup)
}
