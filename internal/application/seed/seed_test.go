package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/seed"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func newDeps(store *memory.Store) (seed.Deps, *inventory.StockReader) {
	stock := inventory.NewStockReader(store.Transactions())
	validator := inventory.NewTransactionValidator(store.Products(), stock, time.Now)
	return seed.Deps{
		Auth:       auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: "s", ExpMinutes: 5, Issuer: "seed-test"}),
		Categories: usecase.NewCategoryUseCase(store.Categories(), store.Products()),
		Suppliers:  usecase.NewSupplierUseCase(store.Suppliers(), store.Products()),
		Products:   usecase.NewProductUseCase(store.Products(), store.Categories(), store.Suppliers(), stock, store.TxRunner()),
		Register:   inventory.NewRegisterTransactionUseCase(store.TxRunner(), store.Transactions(), validator, time.Hour),
	}, stock
}

func TestRun_CargaCatalogoYLedgerSinStockNegativo(t *testing.T) {
	store := memory.NewStore()
	deps, stock := newDeps(store)
	ctx := context.Background()

	sum, err := seed.Run(ctx, deps, seed.Options{Seed: 42}, logger.Nop())
	require.NoError(t, err)
	assert.True(t, sum.AdminCreated)
	assert.Equal(t, 5, sum.Categories)
	assert.Equal(t, 3, sum.Suppliers)
	assert.Equal(t, 10, sum.Products)
	assert.Greater(t, sum.Transactions, sum.Products, "cada producto tiene más de una transacción")

	list, err := deps.Products.List(ctx, 100, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 10)
	for _, p := range list.Items {
		s, err := stock.ComputeStock(ctx, p.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s, int64(0), "el stock de %s no puede ser negativo", p.Name)
	}

	login, err := deps.Auth.Login(ctx, dto.LoginRequest{Email: seed.AdminEmail, Password: seed.AdminPassword})
	require.NoError(t, err)
	assert.Equal(t, "admin", login.User.Role)
}

func TestRun_SegundaEjecucionNoDuplica(t *testing.T) {
	store := memory.NewStore()
	deps, _ := newDeps(store)
	ctx := context.Background()

	_, err := seed.Run(ctx, deps, seed.Options{Seed: 1}, logger.Nop())
	require.NoError(t, err)

	sum, err := seed.Run(ctx, deps, seed.Options{Seed: 1}, logger.Nop())
	require.NoError(t, err)
	assert.False(t, sum.AdminCreated)
	assert.True(t, sum.Skipped)
	assert.Zero(t, sum.Products)
}
