//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

// startPostgres levanta un contenedor limpio con el esquema aplicado.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applied, err := postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	require.NotEmpty(t, applied)

	again, err := postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	require.Empty(t, again, "las migraciones son idempotentes")
	return pool
}

func seedCatalog(t *testing.T, pool *pgxpool.Pool) entity.Product {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	cat := entity.Category{ID: uuid.NewString(), Name: "Electrónica", CreatedAt: now, UpdatedAt: now}
	sup := entity.Supplier{ID: uuid.NewString(), Name: "Acme", Contact: "Ana", Phone: "555", Email: "ana@acme.test", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, postgres.NewCategoryRepository(pool).Create(ctx, &cat))
	require.NoError(t, postgres.NewSupplierRepository(pool).Create(ctx, &sup))
	p := entity.Product{
		ID: uuid.NewString(), Name: "Mouse", BuyPrice: decimal.NewFromInt(10), SellPrice: decimal.NewFromInt(15),
		CategoryID: cat.ID, SupplierID: sup.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, postgres.NewProductRepository(pool).Create(ctx, &p))
	return p
}

func newRegister(pool *pgxpool.Pool) *inventory.RegisterTransactionUseCase {
	txRepo := postgres.NewTransactionRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	validator := inventory.NewTransactionValidator(productRepo, inventory.NewStockReader(txRepo), nil)
	return inventory.NewRegisterTransactionUseCase(postgres.NewTxRunner(pool), txRepo, validator, 24*time.Hour)
}

func request(productID, typ string, qty, unit int64) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{Type: typ, Quantity: qty, UnitPrice: decimal.NewFromInt(unit), ProductID: productID}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestIntegration_LedgerEscenarioCompleto(t *testing.T) {
	pool := startPostgres(t)
	p := seedCatalog(t, pool)
	uc := newRegister(pool)
	ctx := context.Background()

	in, err := uc.Register(ctx, request(p.ID, entity.TransactionTypeIN, 100, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(100), in.Product.Quantity)

	out, err := uc.Register(ctx, request(p.ID, entity.TransactionTypeOUT, 30, 15))
	require.NoError(t, err)
	assert.Equal(t, int64(70), out.Product.Quantity)
	assert.Equal(t, "450", out.TotalValue.String())

	_, err = uc.Register(ctx, request(p.ID, entity.TransactionTypeOUT, 80, 15))
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(70), stockErr.Available)

	last, err := uc.Register(ctx, request(p.ID, entity.TransactionTypeOUT, 70, 15))
	require.NoError(t, err)
	assert.Equal(t, int64(0), last.Product.Quantity)

	err = postgres.NewProductRepository(pool).Delete(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProductHasHistory, "la FK protege el historial")
}

func TestIntegration_SalidasConcurrentesNoSobrevenden(t *testing.T) {
	pool := startPostgres(t)
	p := seedCatalog(t, pool)
	uc := newRegister(pool)
	ctx := context.Background()

	_, err := uc.Register(ctx, request(p.ID, entity.TransactionTypeIN, 10, 10))
	require.NoError(t, err)

	var accepted, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Register(ctx, request(p.ID, entity.TransactionTypeOUT, 3, 15))
			switch {
			case err == nil:
				atomic.AddInt64(&accepted, 1)
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				atomic.AddInt64(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), accepted)
	assert.Equal(t, int64(17), rejected)

	totals, err := postgres.NewTransactionRepository(pool).Totals(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Stock())
}

func TestIntegration_IdempotenciaDevuelveLaMismaTransaccion(t *testing.T) {
	pool := startPostgres(t)
	p := seedCatalog(t, pool)
	uc := newRegister(pool)
	ctx := context.Background()

	req := request(p.ID, entity.TransactionTypeIN, 5, 10)
	req.IdempotencyKey = "recepcion-001"

	first, err := uc.Register(ctx, req)
	require.NoError(t, err)
	second, err := uc.Register(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Replayed)

	n, err := postgres.NewTransactionRepository(pool).CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard
// ──────────────────────────────────────────────────────────────────────────────

func TestIntegration_DashboardAgregaciones(t *testing.T) {
	pool := startPostgres(t)
	p := seedCatalog(t, pool)
	ctx := context.Background()
	txRepo := postgres.NewTransactionRepository(pool)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, tx := range []entity.Transaction{
		{Type: entity.TransactionTypeIN, Quantity: 10, UnitPrice: decimal.NewFromInt(8), Date: base},
		{Type: entity.TransactionTypeIN, Quantity: 10, UnitPrice: decimal.NewFromInt(12), Date: base.Add(time.Hour)},
		{Type: entity.TransactionTypeOUT, Quantity: 5, UnitPrice: decimal.NewFromInt(20), Date: base.Add(2 * time.Hour)},
	} {
		tx := tx
		tx.ID = uuid.NewString()
		tx.ProductID = p.ID
		tx.TotalValue = tx.UnitPrice.Mul(decimal.NewFromInt(tx.Quantity))
		tx.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		ok, err := txRepo.AppendGuarded(ctx, &tx)
		require.NoError(t, err)
		require.True(t, ok)
	}

	dash := postgres.NewDashboardRepository(pool)
	from, to := base, base.AddDate(0, 1, 0)

	profit, err := dash.GrossProfit(ctx, from, to, domaininv.CostPolicyAverageInboundCost)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(profit), "got %s", profit)

	value, err := dash.StockValue(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(value), "got %s", value)

	months, err := dash.MonthlySales(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.Equal(t, "2026-03", months[0].Month)

	best, err := dash.BestSellers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, best, 1)
	assert.Equal(t, int64(5), best[0].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Búsqueda
// ──────────────────────────────────────────────────────────────────────────────

// Los comodines de LIKE en el texto buscado se tratan literalmente, igual que en el store en memoria.
func TestIntegration_BusquedaTrataComodinesLiteralmente(t *testing.T) {
	pool := startPostgres(t)
	p := seedCatalog(t, pool)
	ctx := context.Background()
	repo := postgres.NewProductRepository(pool)

	found, err := repo.Search(ctx, "ous", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p.ID, found[0].ID)

	for _, q := range []string{"_", "%", `\`} {
		found, err = repo.Search(ctx, q, 10)
		require.NoError(t, err)
		assert.Empty(t, found, "q=%q no debe coincidir con todo", q)

		cats, err := postgres.NewCategoryRepository(pool).Search(ctx, q, 10)
		require.NoError(t, err)
		assert.Empty(t, cats)

		sups, err := postgres.NewSupplierRepository(pool).Search(ctx, q, 10)
		require.NoError(t, err)
		assert.Empty(t, sups)
	}
}
