package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/money"
	"github.com/shopspring/decimal"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo agregaciones calculadas recorriendo el ledger en memoria.
type DashboardRepo struct {
	s *Store
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *DashboardRepo) StockValue(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.s.read(ctx, func(d *data) error {
		totals := make(map[string]inventory.Totals)
		for _, tx := range d.transactions {
			totals[tx.ProductID] = totals[tx.ProductID].Add(tx)
		}
		values := make([]decimal.Decimal, 0, len(d.products))
		for _, p := range d.products {
			values = append(values, money.LineTotal(totals[p.ID].Stock(), p.BuyPrice))
		}
		total = money.Sum(values...)
		return nil
	})
	return total, err
}

func (r *DashboardRepo) SalesTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.s.read(ctx, func(d *data) error {
		var values []decimal.Decimal
		for _, tx := range d.transactions {
			if tx.Type == entity.TransactionTypeOUT && inRange(tx.Date, from, to) {
				values = append(values, tx.TotalValue)
			}
		}
		total = money.Sum(values...)
		return nil
	})
	return total, err
}

func (r *DashboardRepo) GrossProfit(ctx context.Context, from, to time.Time, policy inventory.CostPolicy) (decimal.Decimal, error) {
	profit := decimal.Zero
	err := r.s.read(ctx, func(d *data) error {
		byProduct := make(map[string][]entity.Transaction)
		for _, tx := range d.transactions {
			byProduct[tx.ProductID] = append(byProduct[tx.ProductID], tx)
		}
		for _, tx := range d.transactions {
			if tx.Type != entity.TransactionTypeOUT || !inRange(tx.Date, from, to) {
				continue
			}
			cost := d.products[tx.ProductID].BuyPrice
			if policy == inventory.CostPolicyAverageInboundCost {
				if avg, ok := inventory.AverageInboundCost(byProduct[tx.ProductID], tx.Date); ok {
					cost = avg
				}
			}
			profit = profit.Add(tx.TotalValue.Sub(money.LineTotal(tx.Quantity, cost)))
		}
		return nil
	})
	return profit, err
}

func (r *DashboardRepo) MonthlySales(ctx context.Context, from, to time.Time) ([]repository.MonthlySalesResult, error) {
	var out []repository.MonthlySalesResult
	err := r.s.read(ctx, func(d *data) error {
		sums := make(map[string]decimal.Decimal)
		for _, tx := range d.transactions {
			if tx.Type == entity.TransactionTypeOUT && inRange(tx.Date, from, to) {
				key := tx.Date.UTC().Format("2006-01")
				sums[key] = sums[key].Add(tx.TotalValue)
			}
		}
		for month, total := range sums {
			out = append(out, repository.MonthlySalesResult{Month: month, Total: total})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
		return nil
	})
	return out, err
}

func (r *DashboardRepo) SalesByCategory(ctx context.Context, limit int) ([]repository.CategorySalesResult, error) {
	var out []repository.CategorySalesResult
	err := r.s.read(ctx, func(d *data) error {
		sums := make(map[string]decimal.Decimal)
		for _, tx := range d.transactions {
			if tx.Type != entity.TransactionTypeOUT {
				continue
			}
			catID := d.products[tx.ProductID].CategoryID
			sums[catID] = sums[catID].Add(tx.TotalValue)
		}
		for catID, total := range sums {
			out = append(out, repository.CategorySalesResult{CategoryID: catID, CategoryName: d.categories[catID].Name, Total: total})
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].Total.Equal(out[j].Total) {
				return out[i].Total.GreaterThan(out[j].Total)
			}
			return strings.ToLower(out[i].CategoryName) < strings.ToLower(out[j].CategoryName)
		})
		out = window(out, limit, 0)
		return nil
	})
	return out, err
}

func (r *DashboardRepo) BestSellers(ctx context.Context, limit int) ([]repository.ProductSalesResult, error) {
	var out []repository.ProductSalesResult
	err := r.s.read(ctx, func(d *data) error {
		acc := make(map[string]*repository.ProductSalesResult)
		for _, tx := range d.transactions {
			if tx.Type != entity.TransactionTypeOUT {
				continue
			}
			res, ok := acc[tx.ProductID]
			if !ok {
				p := d.products[tx.ProductID]
				res = &repository.ProductSalesResult{
					ProductID:    p.ID,
					ProductName:  p.Name,
					CategoryName: d.categories[p.CategoryID].Name,
					TotalValue:   decimal.Zero,
				}
				acc[tx.ProductID] = res
			}
			res.Quantity += tx.Quantity
			res.TotalValue = res.TotalValue.Add(tx.TotalValue)
		}
		for _, res := range acc {
			out = append(out, *res)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Quantity != out[j].Quantity {
				return out[i].Quantity > out[j].Quantity
			}
			return lessName(out[i].ProductName, out[j].ProductName, out[i].ProductID, out[j].ProductID)
		})
		out = window(out, limit, 0)
		return nil
	})
	return out, err
}

func (r *DashboardRepo) LowStock(ctx context.Context, threshold int64, limit int) ([]repository.LowStockResult, error) {
	var out []repository.LowStockResult
	err := r.s.read(ctx, func(d *data) error {
		totals := make(map[string]inventory.Totals)
		for _, tx := range d.transactions {
			totals[tx.ProductID] = totals[tx.ProductID].Add(tx)
		}
		for _, p := range d.products {
			stock := totals[p.ID].Stock()
			if stock < threshold {
				out = append(out, repository.LowStockResult{
					ProductID: p.ID, Name: p.Name, ImageURL: p.ImageURL, SellPrice: p.SellPrice, Stock: stock,
				})
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Stock != out[j].Stock {
				return out[i].Stock < out[j].Stock
			}
			return lessName(out[i].Name, out[j].Name, out[i].ProductID, out[j].ProductID)
		})
		out = window(out, limit, 0)
		return nil
	})
	return out, err
}

func (r *DashboardRepo) RecentTransactions(ctx context.Context, limit int) ([]repository.RecentTransactionResult, error) {
	var out []repository.RecentTransactionResult
	err := r.s.read(ctx, func(d *data) error {
		for _, tx := range window(newerFirst(d.transactions), limit, 0) {
			out = append(out, repository.RecentTransactionResult{
				ID:          tx.ID,
				Type:        tx.Type,
				ProductName: d.products[tx.ProductID].Name,
				Quantity:    tx.Quantity,
				TotalValue:  tx.TotalValue,
				Date:        tx.Date,
			})
		}
		return nil
	})
	return out, err
}
