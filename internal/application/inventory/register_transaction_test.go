package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store     *memory.Store
	register  *inventory.RegisterTransactionUseCase
	query     *inventory.LedgerQueryUseCase
	stock     *inventory.StockReader
	productID string
	recorded  []dto.TransactionResponse
	mu        sync.Mutex
}

func (f *fixture) TransactionRecorded(_ context.Context, tx dto.TransactionResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, tx)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
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

	f := &fixture{store: store, productID: p.ID}
	f.stock = inventory.NewStockReader(store.Transactions())
	validator := inventory.NewTransactionValidator(store.Products(), f.stock, time.Now)
	f.register = inventory.NewRegisterTransactionUseCase(store.TxRunner(), store.Transactions(), validator, time.Hour, f)
	f.query = inventory.NewLedgerQueryUseCase(store.Transactions(), store.Products(), f.stock)
	return f
}

func req(typ, productID string, qty int64, unitPrice int64) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Type: typ, ProductID: productID, Quantity: qty, UnitPrice: decimal.NewFromInt(unitPrice),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Register
// ──────────────────────────────────────────────────────────────────────────────

// Entrada 10, salida 15 rechazada, salida 4 aceptada: stock final 6.
func TestRegister_EscenarioEntradaYSalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.register.Register(ctx, req(entity.TransactionTypeIN, f.productID, 10, 10))
	require.NoError(t, err)
	assert.True(t, in.TotalValue.Equal(decimal.NewFromInt(100)), "total_value = quantity × unit_price")
	require.NotNil(t, in.Product)
	assert.Equal(t, int64(10), in.Product.Quantity)
	require.NotNil(t, in.Product.Category)
	assert.Equal(t, "Bebidas", in.Product.Category.Name)

	_, err = f.register.Register(ctx, req(entity.TransactionTypeOUT, f.productID, 15, 25))
	var serr *domain.InsufficientStockError
	require.True(t, errors.As(err, &serr), "salida mayor al stock debe devolver InsufficientStockError")
	assert.Equal(t, int64(10), serr.Available)
	assert.Equal(t, int64(5), serr.Shortfall())

	_, err = f.register.Register(ctx, req(entity.TransactionTypeOUT, f.productID, 4, 25))
	require.NoError(t, err)

	stock, err := f.stock.ComputeStock(ctx, f.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stock)
	assert.Len(t, f.recorded, 2, "solo las transacciones confirmadas notifican")
}

func TestRegister_TotalEnviadoDistintoSeRechaza(t *testing.T) {
	f := newFixture(t)
	r := req(entity.TransactionTypeIN, f.productID, 3, 10)
	wrong := decimal.NewFromInt(31)
	r.TotalValue = &wrong

	_, err := f.register.Register(context.Background(), r)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "total_value", verr.Fields[0].Path)
}

func TestRegister_TotalEnviadoIgualSeAcepta(t *testing.T) {
	f := newFixture(t)
	r := req(entity.TransactionTypeIN, f.productID, 3, 10)
	ok := decimal.RequireFromString("30.00")
	r.TotalValue = &ok

	out, err := f.register.Register(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, out.TotalValue.Equal(decimal.NewFromInt(30)))
}

func TestRegister_FechaFuturaSeRechaza(t *testing.T) {
	f := newFixture(t)
	r := req(entity.TransactionTypeIN, f.productID, 1, 10)
	future := time.Now().Add(48 * time.Hour)
	r.Date = &future

	_, err := f.register.Register(context.Background(), r)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegister_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.register.Register(context.Background(), req(entity.TransactionTypeIN, uuid.NewString(), 1, 10))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.recorded)
}

func TestRegister_ClaveDeIdempotenciaRepetida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := req(entity.TransactionTypeIN, f.productID, 5, 10)
	r.IdempotencyKey = "recepcion-42"

	first, err := f.register.Register(ctx, r)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := f.register.Register(ctx, r)
	require.NoError(t, err)
	assert.True(t, second.Replayed, "el reintento debe marcarse como replayed")
	assert.Equal(t, first.ID, second.ID)

	r.Quantity = 7
	_, err = f.register.Register(ctx, r)
	assert.ErrorIs(t, err, domain.ErrIdempotencyKeyReused)

	stock, err := f.stock.ComputeStock(ctx, f.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stock, "el reintento no debe sumar stock")
	assert.Len(t, f.recorded, 1)
}

// La misma clave con otro precio o con otro total no es un reintento.
func TestRegister_ClaveRepetidaConOtroPrecioSeRechaza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := req(entity.TransactionTypeIN, f.productID, 10, 10)
	r.IdempotencyKey = "recepcion-77"

	_, err := f.register.Register(ctx, r)
	require.NoError(t, err)

	otroPrecio := r
	otroPrecio.UnitPrice = decimal.NewFromInt(99)
	_, err = f.register.Register(ctx, otroPrecio)
	assert.ErrorIs(t, err, domain.ErrIdempotencyKeyReused)

	otroTotal := r
	total := decimal.NewFromInt(101)
	otroTotal.TotalValue = &total
	_, err = f.register.Register(ctx, otroTotal)
	assert.ErrorIs(t, err, domain.ErrIdempotencyKeyReused)

	mismoTotal := r
	igual := decimal.NewFromInt(100)
	mismoTotal.TotalValue = &igual
	again, err := f.register.Register(ctx, mismoTotal)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.True(t, again.UnitPrice.Equal(decimal.NewFromInt(10)), "devuelve el registro original")

	stock, err := f.stock.ComputeStock(ctx, f.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock)
	assert.Len(t, f.recorded, 1)
}

// Salidas concurrentes nunca dejan el stock negativo.
func TestRegister_SalidasConcurrentesNoSobrevenden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.register.Register(ctx, req(entity.TransactionTypeIN, f.productID, 10, 10))
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.register.Register(ctx, req(entity.TransactionTypeOUT, f.productID, 3, 25)); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	stock, err := f.stock.ComputeStock(ctx, f.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consulta del ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerQuery_ListaMasRecientePrimero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older := req(entity.TransactionTypeIN, f.productID, 10, 10)
	d := time.Now().Add(-72 * time.Hour)
	older.Date = &d
	_, err := f.register.Register(ctx, older)
	require.NoError(t, err)
	_, err = f.register.Register(ctx, req(entity.TransactionTypeOUT, f.productID, 2, 25))
	require.NoError(t, err)

	list, err := f.query.List(ctx, dto.TransactionListRequest{ProductID: f.productID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, entity.TransactionTypeOUT, list.Items[0].Type)
	assert.Equal(t, entity.TransactionTypeIN, list.Items[1].Type)

	outs, err := f.query.List(ctx, dto.TransactionListRequest{Type: entity.TransactionTypeIN, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, outs.Items, 1)

	st, err := f.query.Stock(ctx, f.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), st.Inbound)
	assert.Equal(t, int64(2), st.Outbound)
	assert.Equal(t, int64(8), st.Stock)

	_, err = f.query.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
