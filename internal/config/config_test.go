package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "data/products.json", cfg.CatalogPath)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, BackendMemory, cfg.EventBackend)
	assert.False(t, cfg.CO2RemoteEnabled)
	assert.False(t, cfg.LedgerEnabled)
	assert.Equal(t, 3*time.Second, cfg.CO2APITimeout)
	assert.Equal(t, time.Minute, cfg.CounterRefresh)
	assert.Equal(t, 30*time.Minute, cfg.CartIdleTTL)
	assert.Equal(t, 10000, cfg.MaxOpenCarts)
	assert.Empty(t, cfg.AdminToken)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestFromEnv_CounterRefreshDisabled(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("COUNTER_REFRESH_INTERVAL", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Zero(t, cfg.CounterRefresh)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("EVENT_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CO2_REMOTE_ENABLED", "true")
	t.Setenv("CO2_API_TIMEOUT", "1500ms")
	t.Setenv("LEDGER_ENABLED", "1")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ADMIN_TOKEN", "reset-me")
	t.Setenv("CART_IDLE_TTL", "10m")
	t.Setenv("MAX_OPEN_CARTS", "500")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, BackendKafka, cfg.EventBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.CO2RemoteEnabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.CO2APITimeout)
	assert.True(t, cfg.LedgerEnabled)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "reset-me", cfg.AdminToken)
	assert.Equal(t, 10*time.Minute, cfg.CartIdleTTL)
	assert.Equal(t, 500, cfg.MaxOpenCarts)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"unknown store", map[string]string{"STORE_BACKEND": "redis"}},
		{"unknown event backend", map[string]string{"EVENT_BACKEND": "carrier-pigeon"}},
		{"bad bool", map[string]string{"LEDGER_ENABLED": "maybe"}},
		{"bad duration", map[string]string{"CO2_API_TIMEOUT": "soon"}},
		{"negative duration", map[string]string{"SESSION_TTL": "-1h"}},
		{"bad cart limit", map[string]string{"MAX_OPEN_CARTS": "many"}},
		{"zero cart limit", map[string]string{"MAX_OPEN_CARTS": "0"}},
		{"kafka without brokers", map[string]string{"EVENT_BACKEND": "kafka", "KAFKA_BROKERS": " , "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("JWT_SECRET="+testSecret+"\nHTTP_ADDR=:9090\n"), 0o600))

	t.Chdir(dir)

	// godotenv does not override variables that are already set
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, testSecret, cfg.JWTSecret)
}
