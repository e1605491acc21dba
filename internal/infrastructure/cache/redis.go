// Package cache caché del payload del dashboard sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

var (
	_ analytics.DashboardCache = (*DashboardCache)(nil)
	_ inventory.LedgerListener = (*DashboardCache)(nil)
	_ usecase.CatalogListener  = (*DashboardCache)(nil)
)

// Connect abre el cliente desde una URL redis:// y hace ping.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// DashboardCache guarda el dashboard serializado con TTL y lo invalida en cada escritura
// del ledger o del catálogo. Los fallos de Redis se registran y se tratan como miss.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewDashboardCache construye la caché.
func NewDashboardCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *DashboardCache {
	return &DashboardCache{client: client, ttl: ttl, log: log.Component("dashboard_cache")}
}

func (c *DashboardCache) Get(ctx context.Context, key string) (*dto.DashboardResponse, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("leer caché")
		}
		return nil, false
	}
	var out dto.DashboardResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("caché corrupta")
		return nil, false
	}
	return &out, true
}

func (c *DashboardCache) Set(ctx context.Context, key string, value *dto.DashboardResponse) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Msg("serializar dashboard")
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("escribir caché")
	}
}

// Invalidate borra el dashboard de todas las políticas de costo.
func (c *DashboardCache) Invalidate(ctx context.Context) {
	keys := make([]string, 0, 2)
	for _, p := range []domaininv.CostPolicy{domaininv.CostPolicyCurrentBuyPrice, domaininv.CostPolicyAverageInboundCost} {
		keys = append(keys, analytics.DashboardCacheKey(p))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Msg("invalidar caché")
	}
}

func (c *DashboardCache) TransactionRecorded(ctx context.Context, _ dto.TransactionResponse) {
	c.Invalidate(ctx)
}

func (c *DashboardCache) CatalogChanged(ctx context.Context) {
	c.Invalidate(ctx)
}
