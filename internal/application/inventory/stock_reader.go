package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StockReader deriva el stock de los productos a partir del ledger. No tiene efectos secundarios.
type StockReader struct {
	txRepo repository.TransactionRepository
}

// NewStockReader construye el lector.
func NewStockReader(txRepo repository.TransactionRepository) *StockReader {
	return &StockReader{txRepo: txRepo}
}

// Totals sumas IN/OUT de un producto.
func (s *StockReader) Totals(ctx context.Context, productID string) (inventory.Totals, error) {
	t, err := s.txRepo.Totals(ctx, productID)
	if err != nil {
		return inventory.Totals{}, fmt.Errorf("stock de %s: %w", productID, err)
	}
	return t, nil
}

// ComputeStock entradas menos salidas. Un producto sin transacciones tiene stock 0.
func (s *StockReader) ComputeStock(ctx context.Context, productID string) (int64, error) {
	t, err := s.Totals(ctx, productID)
	if err != nil {
		return 0, err
	}
	return t.Stock(), nil
}

// ComputeStocks stock de varios productos con una sola consulta agrupada.
// Todos los ids pedidos aparecen en el resultado.
func (s *StockReader) ComputeStocks(ctx context.Context, productIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	totals, err := s.txRepo.TotalsByProduct(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("stock por producto: %w", err)
	}
	for _, id := range productIDs {
		out[id] = totals[id].Stock()
	}
	return out, nil
}

// HasSufficientStock indica si el stock derivado cubre quantity.
func (s *StockReader) HasSufficientStock(ctx context.Context, productID string, quantity int64) (bool, error) {
	stock, err := s.ComputeStock(ctx, productID)
	if err != nil {
		return false, err
	}
	return inventory.HasSufficient(stock, quantity), nil
}
