package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "feedbridge", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "USD", cfg.Import.Currency)
	assert.Equal(t, "_tiktok_order_id", cfg.Import.ExternalIDMetaKey)
	assert.Equal(t, "_paid_date", cfg.Import.PaidDateMetaKey)
	assert.Equal(t, "TikTok Item", cfg.Import.DefaultItemName)
	assert.Equal(t, "Unknown", cfg.Import.MissingFieldSentinel)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxUploadBytes)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FEEDBRIDGE_IMPORT_CURRENCY", "EUR")
	t.Setenv("FEEDBRIDGE_APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "EUR", cfg.Import.Currency)
	assert.Equal(t, "9090", cfg.App.Port)
}

func TestValidate(t *testing.T) {
	t.Run("production requires auth token", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		cfg.App.Env = "production"
		cfg.Auth.Token = ""
		assert.Error(t, cfg.Validate())

		cfg.Auth.Token = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("currency required", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		cfg.Import.Currency = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "orders", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=orders sslmode=disable", cfg.DSN())
}
