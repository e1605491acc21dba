package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse respuesta de GET /api/dashboard. Montos redondeados a 2 decimales.
type DashboardResponse struct {
	TotalProducts       int64                  `json:"total_products"`
	TotalStockValue     decimal.Decimal        `json:"total_stock_value"`
	SalesSummary        SalesSummaryDTO        `json:"sales_summary"`
	SuppliersSummary    SuppliersSummaryDTO    `json:"suppliers_summary"`
	GrossProfit         decimal.Decimal        `json:"gross_profit"` // últimos 30 días
	CostPolicy          string                 `json:"cost_policy"`
	SalesChart          []MonthlySalesDTO      `json:"sales_chart"` // siempre 6 meses
	SalesByCategory     []CategorySalesDTO     `json:"sales_by_category"`
	BestSellingProducts []BestSellerDTO        `json:"best_selling_products"`
	LowStockProducts    []LowStockDTO          `json:"low_stock_products"`
	RecentTransactions  []RecentTransactionDTO `json:"recent_transactions"`
	GeneratedAt         time.Time              `json:"generated_at"`
}

// SalesSummaryDTO ventas del mes calendario en curso.
type SalesSummaryDTO struct {
	MonthSales decimal.Decimal `json:"month_sales"`
}

// SuppliersSummaryDTO total de proveedores.
type SuppliersSummaryDTO struct {
	Total int64 `json:"total"`
}

// MonthlySalesDTO punto del gráfico de ventas.
type MonthlySalesDTO struct {
	Month string          `json:"month"` // YYYY-MM
	Label string          `json:"label"` // ej. "Mar 2026"
	Total decimal.Decimal `json:"total"`
}

// CategorySalesDTO ingresos de una categoría.
type CategorySalesDTO struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
}

// BestSellerDTO producto más vendido por unidades.
type BestSellerDTO struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int64           `json:"quantity"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// LowStockDTO producto con stock bajo.
type LowStockDTO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Stock     int64           `json:"stock"`
}

// RecentTransactionDTO fila de transacciones recientes.
type RecentTransactionDTO struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Product  string          `json:"product"`
	Quantity int64           `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
	Date     time.Time       `json:"date"`
}
