//go:build integration

package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestDashboardCache_GuardaEInvalida(t *testing.T) {
	ctx := context.Background()
	client, err := cache.Connect(ctx, startRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewDashboardCache(client, time.Minute, logger.Nop())
	key := analytics.DashboardCacheKey(inventory.CostPolicyCurrentBuyPrice)

	_, ok := c.Get(ctx, key)
	assert.False(t, ok, "caché vacía")

	c.Set(ctx, key, &dto.DashboardResponse{TotalProducts: 3, TotalStockValue: decimal.NewFromInt(150)})
	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.TotalProducts)
	assert.True(t, decimal.NewFromInt(150).Equal(got.TotalStockValue))

	c.TransactionRecorded(ctx, dto.TransactionResponse{})
	_, ok = c.Get(ctx, key)
	assert.False(t, ok, "una transacción nueva invalida el dashboard")
}
