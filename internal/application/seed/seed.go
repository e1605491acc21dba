// Package seed carga el usuario administrador y un catálogo de demostración con
// su historial de transacciones, usando los mismos casos de uso que la API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Credenciales del administrador inicial.
const (
	AdminEmail    = "admin@goatech.com"
	AdminPassword = "admin123"
	AdminName     = "Administrador"
)

// Deps casos de uso que usa el seed.
type Deps struct {
	Auth       *auth.AuthUseCase
	Categories *usecase.CategoryUseCase
	Suppliers  *usecase.SupplierUseCase
	Products   *usecase.ProductUseCase
	Register   *inventory.RegisterTransactionUseCase
}

// Options parámetros del seed. Now y Seed fijos dan siempre el mismo historial.
type Options struct {
	Now  func() time.Time
	Seed uint64
	// Months meses de historial hacia atrás (por defecto 6).
	Months int
}

// Summary lo que se creó.
type Summary struct {
	AdminCreated bool
	Categories   int
	Suppliers    int
	Products     int
	Transactions int
	Skipped      bool // el catálogo ya tenía datos
}

type productSeed struct {
	name, description, category string
	supplier                    int
	buy, sell                   string
	// initial unidades de la primera entrada
	initial int64
	// sold fracción aproximada del stock que se vende en el periodo (0..1)
	sold float64
}

var categories = []dto.CategoryRequest{
	{Name: "Bebidas", Description: "Aguas, gaseosas y jugos"},
	{Name: "Snacks", Description: "Paquetes y pasabocas"},
	{Name: "Aseo", Description: "Limpieza del hogar"},
	{Name: "Lácteos", Description: "Leche, yogurt y quesos"},
	{Name: "Panadería", Description: "Pan y galletas"},
}

var suppliers = []dto.SupplierRequest{
	{Name: "Distribuidora Andina", Contact: "Laura Gómez", Phone: "3001234567", Email: "ventas@andina.co"},
	{Name: "Alimentos del Valle", Contact: "Carlos Ruiz", Phone: "3109876543", Email: "pedidos@delvalle.co"},
	{Name: "Limpieza Total S.A.S.", Contact: "Ana Torres", Phone: "3205551234", Email: "comercial@limpiezatotal.co"},
}

var products = []productSeed{
	{"Agua 600ml", "Agua sin gas", "Bebidas", 0, "800", "1500", 120, 0.7},
	{"Gaseosa 1.5L", "Sabor cola", "Bebidas", 0, "3200", "5000", 80, 0.8},
	{"Jugo de naranja 1L", "", "Bebidas", 1, "2800", "4500", 40, 0.85},
	{"Papas fritas 150g", "Sal natural", "Snacks", 1, "2100", "3500", 60, 0.6},
	{"Maní salado 100g", "", "Snacks", 1, "1500", "2600", 30, 0.9},
	{"Detergente 1kg", "Polvo multiusos", "Aseo", 2, "6500", "9800", 25, 0.5},
	{"Jabón líquido 500ml", "", "Aseo", 2, "4200", "6900", 15, 0.75},
	{"Leche entera 1L", "Larga vida", "Lácteos", 1, "2600", "3900", 100, 0.9},
	{"Yogurt fresa 200g", "", "Lácteos", 1, "1300", "2300", 50, 0.95},
	{"Pan tajado 500g", "", "Panadería", 1, "3500", "5500", 35, 0.8},
}

// Run crea el administrador (si no existe) y, si no hay categorías, el catálogo y su ledger.
// Las transacciones se registran en orden cronológico: ninguna salida deja el stock negativo.
func Run(ctx context.Context, deps Deps, opts Options, log *logger.Logger) (*Summary, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Months <= 0 {
		opts.Months = 6
	}
	sum := &Summary{}

	_, err := deps.Auth.CreateUser(ctx, AdminEmail, AdminPassword, AdminName, entity.RoleAdmin)
	switch {
	case err == nil:
		sum.AdminCreated = true
	case errors.Is(err, domain.ErrDuplicate):
		log.Info().Str("email", AdminEmail).Msg("seed: el administrador ya existe")
	default:
		return nil, fmt.Errorf("seed: crear administrador: %w", err)
	}

	existing, err := deps.Categories.List(ctx, dto.CategoryListRequest{})
	if err != nil {
		return nil, fmt.Errorf("seed: listar categorías: %w", err)
	}
	if len(existing) > 0 {
		sum.Skipped = true
		log.Info().Int("categories", len(existing)).Msg("seed: el catálogo ya tiene datos, se omite")
		return sum, nil
	}

	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		out, err := deps.Categories.Create(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("seed: categoría %q: %w", c.Name, err)
		}
		categoryIDs[c.Name] = out.ID
		sum.Categories++
	}

	supplierIDs := make([]string, 0, len(suppliers))
	for _, s := range suppliers {
		out, err := deps.Suppliers.Create(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("seed: proveedor %q: %w", s.Name, err)
		}
		supplierIDs = append(supplierIDs, out.ID)
		sum.Suppliers++
	}

	now := opts.Now().UTC()
	start := now.AddDate(0, -opts.Months, 0)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	for _, p := range products {
		created, err := deps.Products.Create(ctx, dto.ProductRequest{
			Name:        p.name,
			Description: p.description,
			BuyPrice:    decimal.RequireFromString(p.buy),
			SellPrice:   decimal.RequireFromString(p.sell),
			CategoryID:  categoryIDs[p.category],
			SupplierID:  supplierIDs[p.supplier],
		})
		if err != nil {
			return nil, fmt.Errorf("seed: producto %q: %w", p.name, err)
		}
		sum.Products++

		n, err := seedLedger(ctx, deps.Register, created, p, start, now, rng)
		if err != nil {
			return nil, fmt.Errorf("seed: ledger de %q: %w", p.name, err)
		}
		sum.Transactions += n
	}

	log.Info().
		Bool("admin_created", sum.AdminCreated).
		Int("categories", sum.Categories).
		Int("suppliers", sum.Suppliers).
		Int("products", sum.Products).
		Int("transactions", sum.Transactions).
		Msg("seed completado")
	return sum, nil
}

// seedLedger una entrada inicial, una reposición a mitad del periodo y ventas semanales.
func seedLedger(
	ctx context.Context,
	register *inventory.RegisterTransactionUseCase,
	product *dto.ProductResponse,
	p productSeed,
	start, now time.Time,
	rng *rand.Rand,
) (int, error) {
	count := 0
	stock := int64(0)
	record := func(typ string, qty int64, price decimal.Decimal, date time.Time) error {
		_, err := register.Register(ctx, dto.CreateTransactionRequest{
			Type:      typ,
			ProductID: product.ID,
			Quantity:  qty,
			UnitPrice: price,
			Date:      &date,
		})
		if err != nil {
			return err
		}
		count++
		if typ == entity.TransactionTypeIN {
			stock += qty
		} else {
			stock -= qty
		}
		return nil
	}

	if err := record(entity.TransactionTypeIN, p.initial, product.BuyPrice, start); err != nil {
		return count, err
	}

	span := now.Sub(start)
	restockAt := start.Add(span / 2)
	restocked := false
	target := int64(float64(p.initial) * p.sold * 2)
	weeks := int(span / (7 * 24 * time.Hour))
	if weeks < 1 {
		weeks = 1
	}
	perWeek := target / int64(weeks)
	if perWeek < 1 {
		perWeek = 1
	}

	for w := 1; w <= weeks; w++ {
		date := start.Add(time.Duration(w) * 7 * 24 * time.Hour).Add(time.Duration(rng.IntN(72)) * time.Hour)
		if !date.Before(now) {
			break
		}
		if !restocked && date.After(restockAt) {
			if err := record(entity.TransactionTypeIN, p.initial, product.BuyPrice, restockAt); err != nil {
				return count, err
			}
			restocked = true
		}
		qty := perWeek/2 + rng.Int64N(perWeek+1)
		if qty > stock {
			qty = stock
		}
		if qty <= 0 {
			continue
		}
		if err := record(entity.TransactionTypeOUT, qty, product.SellPrice, date); err != nil {
			return count, err
		}
	}
	return count, nil
}
