package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo agregaciones del dashboard. Cada método es una sola consulta agrupada.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

// stockByProduct stock derivado por producto.
const stockByProduct = `
	SELECT product_id, SUM(CASE WHEN type = 'IN' THEN quantity ELSE -quantity END)::bigint AS stock
	FROM transactions GROUP BY product_id`

func (r *DashboardRepo) scalar(ctx context.Context, what, query string, args ...any) (decimal.Decimal, error) {
	var v decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&v); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", what, err)
	}
	return v, nil
}

func (r *DashboardRepo) StockValue(ctx context.Context) (decimal.Decimal, error) {
	return r.scalar(ctx, "stock value", `
		SELECT COALESCE(SUM(p.buy_price * COALESCE(s.stock, 0)), 0)
		FROM products p
		LEFT JOIN (`+stockByProduct+`) s ON s.product_id = p.id`)
}

func (r *DashboardRepo) SalesTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.scalar(ctx, "sales total", `
		SELECT COALESCE(SUM(total_value), 0) FROM transactions
		WHERE type = 'OUT' AND date >= $1 AND date < $2`, from, to)
}

func (r *DashboardRepo) GrossProfit(ctx context.Context, from, to time.Time, policy inventory.CostPolicy) (decimal.Decimal, error) {
	cost := `p.buy_price`
	if policy == inventory.CostPolicyAverageInboundCost {
		// Promedio ponderado de las entradas hasta la fecha de la salida; sin entradas se usa buy_price.
		cost = `COALESCE((
			SELECT SUM(i.quantity * i.unit_price) / NULLIF(SUM(i.quantity), 0)
			FROM transactions i
			WHERE i.product_id = t.product_id AND i.type = 'IN' AND i.date <= t.date
		), p.buy_price)`
	}
	return r.scalar(ctx, "gross profit", `
		SELECT COALESCE(SUM(t.total_value - t.quantity * `+cost+`), 0)
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		WHERE t.type = 'OUT' AND t.date >= $1 AND t.date < $2`, from, to)
}

func (r *DashboardRepo) MonthlySales(ctx context.Context, from, to time.Time) ([]repository.MonthlySalesResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT to_char(date_trunc('month', date AT TIME ZONE 'UTC'), 'YYYY-MM') AS month, SUM(total_value)
		FROM transactions
		WHERE type = 'OUT' AND date >= $1 AND date < $2
		GROUP BY 1 ORDER BY 1`, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	defer rows.Close()
	var list []repository.MonthlySalesResult
	for rows.Next() {
		var m repository.MonthlySalesResult
		if err := rows.Scan(&m.Month, &m.Total); err != nil {
			return nil, fmt.Errorf("scan monthly sales: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *DashboardRepo) SalesByCategory(ctx context.Context, limit int) ([]repository.CategorySalesResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.id, c.name, SUM(t.total_value) AS total
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE t.type = 'OUT'
		GROUP BY c.id, c.name
		ORDER BY total DESC, lower(c.name)
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("sales by category: %w", err)
	}
	defer rows.Close()
	var list []repository.CategorySalesResult
	for rows.Next() {
		var c repository.CategorySalesResult
		if err := rows.Scan(&c.CategoryID, &c.CategoryName, &c.Total); err != nil {
			return nil, fmt.Errorf("scan sales by category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *DashboardRepo) BestSellers(ctx context.Context, limit int) ([]repository.ProductSalesResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, c.name, SUM(t.quantity)::bigint AS units, SUM(t.total_value)
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE t.type = 'OUT'
		GROUP BY p.id, p.name, c.name
		ORDER BY units DESC, lower(p.name), p.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("best sellers: %w", err)
	}
	defer rows.Close()
	var list []repository.ProductSalesResult
	for rows.Next() {
		var p repository.ProductSalesResult
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.CategoryName, &p.Quantity, &p.TotalValue); err != nil {
			return nil, fmt.Errorf("scan best sellers: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *DashboardRepo) LowStock(ctx context.Context, threshold int64, limit int) ([]repository.LowStockResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, p.image_url, p.sell_price, COALESCE(s.stock, 0) AS stock
		FROM products p
		LEFT JOIN (`+stockByProduct+`) s ON s.product_id = p.id
		WHERE COALESCE(s.stock, 0) < $1
		ORDER BY stock ASC, lower(p.name), p.id
		LIMIT $2`, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()
	var list []repository.LowStockResult
	for rows.Next() {
		var l repository.LowStockResult
		if err := rows.Scan(&l.ProductID, &l.Name, &l.ImageURL, &l.SellPrice, &l.Stock); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func (r *DashboardRepo) RecentTransactions(ctx context.Context, limit int) ([]repository.RecentTransactionResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT t.id, t.type, p.name, t.quantity, t.total_value, t.date
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		ORDER BY t.date DESC, t.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()
	var list []repository.RecentTransactionResult
	for rows.Next() {
		var t repository.RecentTransactionResult
		if err := rows.Scan(&t.ID, &t.Type, &t.ProductName, &t.Quantity, &t.TotalValue, &t.Date); err != nil {
			return nil, fmt.Errorf("scan recent transactions: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
