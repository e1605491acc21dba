package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorePostgres, cfg.App.Store)
	assert.Equal(t, "current_buy_price", cfg.Dashboard.CostPolicy)
	assert.Equal(t, 24*time.Hour, cfg.Ledger.IdempotencyWindow)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DASHBOARD_COST_POLICY", "average_inbound_cost")
	t.Setenv("IDEMPOTENCY_WINDOW_MINUTES", "15")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreMemory, cfg.App.Store)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "average_inbound_cost", cfg.Dashboard.CostPolicy)
	assert.Equal(t, 15*time.Minute, cfg.Ledger.IdempotencyWindow)
}

func TestLoad_StoreInvalido(t *testing.T) {
	t.Setenv("STORE", "sqlite")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/ledger?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
