package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Serie mensual
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildMonthSeries_RellenaMesesSinVentas(t *testing.T) {
	start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	sums := []repository.MonthlySalesResult{
		{Month: "2026-02", Total: decimal.NewFromInt(100)},
		{Month: "2026-05", Total: decimal.RequireFromString("50.5")},
		{Month: "2025-12", Total: decimal.NewFromInt(999)}, // fuera del rango
	}

	series := analytics.BuildMonthSeries(start, 6, sums)

	require.Len(t, series, 6, "siempre 6 meses aunque no haya ventas")
	months := make([]string, 0, 6)
	for _, m := range series {
		months = append(months, m.Month)
	}
	assert.Equal(t, []string{"2026-01", "2026-02", "2026-03", "2026-04", "2026-05", "2026-06"}, months)
	assert.True(t, series[0].Total.IsZero())
	assert.True(t, series[1].Total.Equal(decimal.NewFromInt(100)))
	assert.True(t, series[4].Total.Equal(decimal.RequireFromString("50.5")))
	assert.Equal(t, "Febrero 2026", series[1].Label)
}

func TestBuildMonthSeries_CruzaFinDeAnio(t *testing.T) {
	series := analytics.BuildMonthSeries(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), 6, nil)
	require.Len(t, series, 6)
	assert.Equal(t, "2025-10", series[0].Month)
	assert.Equal(t, "2026-03", series[5].Month)
	assert.Equal(t, "Marzo 2026", series[5].Label)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeCache struct {
	data map[string]*dto.DashboardResponse
	gets int
	hits int
}

func (c *fakeCache) Get(_ context.Context, key string) (*dto.DashboardResponse, bool) {
	c.gets++
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *fakeCache) Set(_ context.Context, key string, v *dto.DashboardResponse) {
	c.data[key] = v
}

// seedLedger: producto con costo 10 y venta 25, entrada de 20 hace 40 días y salida de 5 ayer.
func seedLedger(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	cat := &entity.Category{ID: uuid.NewString(), Name: "Bebidas", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Categories().Create(ctx, cat))
	sup := &entity.Supplier{ID: uuid.NewString(), Name: "Andina", Email: "ventas@andina.co", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Suppliers().Create(ctx, sup))
	p := &entity.Product{
		ID: uuid.NewString(), Name: "Agua 600ml",
		BuyPrice: decimal.NewFromInt(10), SellPrice: decimal.NewFromInt(25),
		CategoryID: cat.ID, SupplierID: sup.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.Products().Create(ctx, p))

	stock := inventory.NewStockReader(store.Transactions())
	validator := inventory.NewTransactionValidator(store.Products(), stock, time.Now)
	register := inventory.NewRegisterTransactionUseCase(store.TxRunner(), store.Transactions(), validator, time.Hour)

	inDate := now.Add(-40 * 24 * time.Hour)
	_, err := register.Register(ctx, dto.CreateTransactionRequest{
		Type: entity.TransactionTypeIN, ProductID: p.ID, Quantity: 20, UnitPrice: decimal.NewFromInt(10), Date: &inDate,
	})
	require.NoError(t, err)
	outDate := now.Add(-24 * time.Hour)
	_, err = register.Register(ctx, dto.CreateTransactionRequest{
		Type: entity.TransactionTypeOUT, ProductID: p.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(25), Date: &outDate,
	})
	require.NoError(t, err)
}

func TestGetDashboard_CifrasDelLedger(t *testing.T) {
	store := memory.NewStore()
	seedLedger(t, store)

	for _, policy := range []domaininv.CostPolicy{domaininv.CostPolicyCurrentBuyPrice, domaininv.CostPolicyAverageInboundCost} {
		uc := analytics.NewDashboardUseCase(store.Dashboard(), store.Products(), store.Suppliers(), policy)
		d, err := uc.GetDashboard(context.Background())
		require.NoError(t, err)

		assert.Equal(t, int64(1), d.TotalProducts)
		assert.Equal(t, int64(1), d.SuppliersSummary.Total)
		assert.True(t, d.TotalStockValue.Equal(decimal.NewFromInt(150)), "15 unidades × costo 10")
		assert.True(t, d.GrossProfit.Equal(decimal.NewFromInt(75)), "5 × (25 - 10) con política %s", policy)
		assert.Equal(t, string(policy), d.CostPolicy)

		require.Len(t, d.SalesChart, 6)
		chartTotal := decimal.Zero
		for _, m := range d.SalesChart {
			chartTotal = chartTotal.Add(m.Total)
		}
		assert.True(t, chartTotal.Equal(decimal.NewFromInt(125)), "solo las salidas cuentan como ventas")

		require.Len(t, d.BestSellingProducts, 1)
		assert.Equal(t, int64(5), d.BestSellingProducts[0].Quantity)
		assert.Equal(t, "Bebidas", d.BestSellingProducts[0].Category)
		assert.Empty(t, d.LowStockProducts, "stock 15 no es bajo")
		require.Len(t, d.RecentTransactions, 2)
		assert.Equal(t, entity.TransactionTypeOUT, d.RecentTransactions[0].Type, "más reciente primero")
	}
}

func TestGetDashboard_LedgerVacio(t *testing.T) {
	store := memory.NewStore()
	clock := func() time.Time { return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC) }
	uc := analytics.NewDashboardUseCase(store.Dashboard(), store.Products(), store.Suppliers(), domaininv.CostPolicyCurrentBuyPrice).
		WithClock(clock)

	d, err := uc.GetDashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, d.SalesChart, 6)
	assert.Equal(t, "2025-10", d.SalesChart[0].Month)
	assert.Equal(t, "2026-03", d.SalesChart[5].Month)
	assert.True(t, d.TotalStockValue.IsZero())
	assert.NotNil(t, d.BestSellingProducts)
	assert.Empty(t, d.BestSellingProducts)
}

func TestGetDashboard_UsaCachePorPolitica(t *testing.T) {
	store := memory.NewStore()
	cache := &fakeCache{data: map[string]*dto.DashboardResponse{}}
	uc := analytics.NewDashboardUseCase(store.Dashboard(), store.Products(), store.Suppliers(), domaininv.CostPolicyCurrentBuyPrice).
		WithCache(cache)

	first, err := uc.GetDashboard(context.Background())
	require.NoError(t, err)
	second, err := uc.GetDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.hits, "la segunda lectura sale de caché")
	assert.Same(t, first, second)
	assert.Contains(t, cache.data, analytics.DashboardCacheKey(domaininv.CostPolicyCurrentBuyPrice))
}
