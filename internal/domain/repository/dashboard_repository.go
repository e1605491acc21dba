package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// MonthlySalesResult suma de ventas (OUT) de un mes calendario UTC.
type MonthlySalesResult struct {
	Month string // YYYY-MM
	Total decimal.Decimal
}

// CategorySalesResult ingresos por categoría.
type CategorySalesResult struct {
	CategoryID   string
	CategoryName string
	Total        decimal.Decimal
}

// ProductSalesResult unidades e ingresos por producto.
type ProductSalesResult struct {
	ProductID    string
	ProductName  string
	CategoryName string
	Quantity     int64
	TotalValue   decimal.Decimal
}

// LowStockResult producto con stock derivado bajo el umbral.
type LowStockResult struct {
	ProductID string
	Name      string
	ImageURL  string
	SellPrice decimal.Decimal
	Stock     int64
}

// RecentTransactionResult transacción con el nombre del producto.
type RecentTransactionResult struct {
	ID          string
	Type        string
	ProductName string
	Quantity    int64
	TotalValue  decimal.Decimal
	Date        time.Time
}

// DashboardRepository consultas de agregación sobre ledger y catálogo.
// Las implementaciones son read-only; los montos no se redondean aquí.
type DashboardRepository interface {
	// StockValue Σ buy_price × stock derivado, en una sola pasada agrupada.
	StockValue(ctx context.Context) (decimal.Decimal, error)

	// SalesTotal Σ total_value de salidas con from <= date < to.
	SalesTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// GrossProfit Σ (total_value − quantity × costo) de salidas con from <= date < to,
	// con el costo definido por policy.
	GrossProfit(ctx context.Context, from, to time.Time, policy inventory.CostPolicy) (decimal.Decimal, error)

	// MonthlySales ventas agrupadas por mes (UTC) con from <= date < to. Solo meses con ventas.
	MonthlySales(ctx context.Context, from, to time.Time) ([]MonthlySalesResult, error)

	// SalesByCategory top categorías por ingresos, descendente.
	SalesByCategory(ctx context.Context, limit int) ([]CategorySalesResult, error)

	// BestSellers top productos por unidades vendidas, descendente.
	BestSellers(ctx context.Context, limit int) ([]ProductSalesResult, error)

	// LowStock productos con stock < threshold, stock ascendente.
	LowStock(ctx context.Context, threshold int64, limit int) ([]LowStockResult, error)

	// RecentTransactions últimas transacciones por fecha descendente.
	RecentTransactions(ctx context.Context, limit int) ([]RecentTransactionResult, error)
}
