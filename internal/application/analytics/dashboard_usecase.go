// Package analytics contiene los casos de uso de agregación del ledger:
// el dashboard y el reporte PDF de stock.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/money"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Límites de los widgets del dashboard.
const (
	ChartMonths         = 6
	TopCategories       = 4
	TopProducts         = 5
	LowStockLimit       = 4
	RecentTransactions  = 10
	GrossProfitWindow   = 30 * 24 * time.Hour
	dashboardCacheKeyNS = "dashboard:"
)

// DashboardCache caché opcional del payload del dashboard.
type DashboardCache interface {
	Get(ctx context.Context, key string) (*dto.DashboardResponse, bool)
	Set(ctx context.Context, key string, value *dto.DashboardResponse)
}

// DashboardUseCase agrega ledger y catálogo "a la fecha" (UTC).
//
// Fuente de datos: DashboardRepository (read-only) más los conteos del catálogo.
// Las consultas corren en paralelo; los montos se redondean a 2 decimales solo al final.
type DashboardUseCase struct {
	dashRepo     repository.DashboardRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	policy       inventory.CostPolicy
	cache        DashboardCache
	now          func() time.Time
}

// NewDashboardUseCase construye el caso de uso con la política de costo indicada.
func NewDashboardUseCase(
	dashRepo repository.DashboardRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	policy inventory.CostPolicy,
) *DashboardUseCase {
	return &DashboardUseCase{
		dashRepo:     dashRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		policy:       policy,
		now:          time.Now,
	}
}

// DashboardCacheKey clave de caché del dashboard para una política de costo.
func DashboardCacheKey(policy inventory.CostPolicy) string {
	return dashboardCacheKeyNS + string(policy)
}

// WithCache activa la caché del payload.
func (uc *DashboardUseCase) WithCache(c DashboardCache) *DashboardUseCase {
	uc.cache = c
	return uc
}

// WithClock fija el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// Policy política de costo en uso.
func (uc *DashboardUseCase) Policy() inventory.CostPolicy {
	return uc.policy
}

// GetDashboard construye el payload completo.
func (uc *DashboardUseCase) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	key := DashboardCacheKey(uc.policy)
	if uc.cache != nil {
		if cached, ok := uc.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	now := uc.now().UTC()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	chartStart := monthStart.AddDate(0, -(ChartMonths - 1), 0)
	profitFrom := now.Add(-GrossProfitWindow)
	profitTo := now.Add(time.Second) // incluye lo registrado en este mismo segundo

	var (
		totalProducts, totalSuppliers int64
		stockValue, monthSales        decimal.Decimal
		grossProfit                   decimal.Decimal
		monthly                       []repository.MonthlySalesResult
		byCategory                    []repository.CategorySalesResult
		bestSellers                   []repository.ProductSalesResult
		lowStock                      []repository.LowStockResult
		recent                        []repository.RecentTransactionResult
	)

	// ── Consultas en paralelo ──────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalProducts, err = uc.productRepo.Count(gctx)
		return wrap("conteo de productos", err)
	})
	g.Go(func() (err error) {
		totalSuppliers, err = uc.supplierRepo.Count(gctx)
		return wrap("conteo de proveedores", err)
	})
	g.Go(func() (err error) {
		stockValue, err = uc.dashRepo.StockValue(gctx)
		return wrap("valor de stock", err)
	})
	g.Go(func() (err error) {
		monthSales, err = uc.dashRepo.SalesTotal(gctx, monthStart, nextMonth)
		return wrap("ventas del mes", err)
	})
	g.Go(func() (err error) {
		grossProfit, err = uc.dashRepo.GrossProfit(gctx, profitFrom, profitTo, uc.policy)
		return wrap("utilidad bruta", err)
	})
	g.Go(func() (err error) {
		monthly, err = uc.dashRepo.MonthlySales(gctx, chartStart, nextMonth)
		return wrap("ventas por mes", err)
	})
	g.Go(func() (err error) {
		byCategory, err = uc.dashRepo.SalesByCategory(gctx, TopCategories)
		return wrap("ventas por categoría", err)
	})
	g.Go(func() (err error) {
		bestSellers, err = uc.dashRepo.BestSellers(gctx, TopProducts)
		return wrap("más vendidos", err)
	})
	g.Go(func() (err error) {
		lowStock, err = uc.dashRepo.LowStock(gctx, inventory.LowStockThreshold, LowStockLimit)
		return wrap("stock bajo", err)
	})
	g.Go(func() (err error) {
		recent, err = uc.dashRepo.RecentTransactions(gctx, RecentTransactions)
		return wrap("transacciones recientes", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	out := &dto.DashboardResponse{
		TotalProducts:       totalProducts,
		TotalStockValue:     money.Round2(stockValue),
		SalesSummary:        dto.SalesSummaryDTO{MonthSales: money.Round2(monthSales)},
		SuppliersSummary:    dto.SuppliersSummaryDTO{Total: totalSuppliers},
		GrossProfit:         money.Round2(grossProfit),
		CostPolicy:          string(uc.policy),
		SalesChart:          BuildMonthSeries(chartStart, ChartMonths, monthly),
		SalesByCategory:     make([]dto.CategorySalesDTO, 0, len(byCategory)),
		BestSellingProducts: make([]dto.BestSellerDTO, 0, len(bestSellers)),
		LowStockProducts:    make([]dto.LowStockDTO, 0, len(lowStock)),
		RecentTransactions:  make([]dto.RecentTransactionDTO, 0, len(recent)),
		GeneratedAt:         now,
	}
	for _, c := range byCategory {
		out.SalesByCategory = append(out.SalesByCategory, dto.CategorySalesDTO{
			CategoryID: c.CategoryID, Name: c.CategoryName, Total: money.Round2(c.Total),
		})
	}
	for _, p := range bestSellers {
		out.BestSellingProducts = append(out.BestSellingProducts, dto.BestSellerDTO{
			ProductID: p.ProductID, Name: p.ProductName, Category: p.CategoryName,
			Quantity: p.Quantity, TotalValue: money.Round2(p.TotalValue),
		})
	}
	for _, p := range lowStock {
		out.LowStockProducts = append(out.LowStockProducts, dto.LowStockDTO{
			ID: p.ProductID, Name: p.Name, ImageURL: p.ImageURL, SellPrice: money.Round2(p.SellPrice), Stock: p.Stock,
		})
	}
	for _, t := range recent {
		out.RecentTransactions = append(out.RecentTransactions, dto.RecentTransactionDTO{
			ID: t.ID, Type: t.Type, Product: t.ProductName, Quantity: t.Quantity,
			Value: money.Round2(t.TotalValue), Date: t.Date,
		})
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, key, out)
	}
	return out, nil
}

// BuildMonthSeries arma primero la serie completa de meses desde start y luego
// cruza las sumas: los meses sin ventas quedan en 0.
func BuildMonthSeries(start time.Time, months int, sums []repository.MonthlySalesResult) []dto.MonthlySalesDTO {
	byMonth := make(map[string]decimal.Decimal, len(sums))
	for _, s := range sums {
		byMonth[s.Month] = byMonth[s.Month].Add(s.Total)
	}
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]dto.MonthlySalesDTO, 0, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i, 0)
		key := m.Format("2006-01")
		out = append(out, dto.MonthlySalesDTO{
			Month: key,
			Label: monthLabel(m),
			Total: money.Round2(byMonth[key]),
		})
	}
	return out
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("dashboard: %s: %w", what, err)
}
