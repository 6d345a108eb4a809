package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "DATABASE_DRIVER", "DATABASE_DSN", "TAX_RATE", "CHECKOUT_MODE", "REDIS_ADDR", "TOKEN_TTL_HOURS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Contains(t, cfg.DatabaseDSN, "pharmgate.db")
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.11")))
	assert.Equal(t, CheckoutSequential, cfg.CheckoutMode)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(10), cfg.LowStockThreshold)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "PGX")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("TAX_RATE", "0.1")
	t.Setenv("CHECKOUT_MODE", "atomic")
	t.Setenv("CURRENCY_DECIMALS", "2")
	t.Setenv("POS_SESSION_TTL_MINUTES", "5")

	cfg := Load()
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Contains(t, cfg.DatabaseDSN, "postgres://")
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, CheckoutAtomic, cfg.CheckoutMode)
	assert.Equal(t, int32(2), cfg.CurrencyDecimals)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "http")
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("TAX_RATE", "-1")
	t.Setenv("CHECKOUT_MODE", "batch")
	t.Setenv("LOW_STOCK_THRESHOLD", "lots")

	cfg := Load()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.11")))
	assert.Equal(t, CheckoutSequential, cfg.CheckoutMode)
	assert.Equal(t, int64(10), cfg.LowStockThreshold)
}
