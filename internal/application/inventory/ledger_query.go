package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

const (
	defaultLedgerPageSize = 50
	maxLedgerPageSize     = 200
)

// LedgerQueryUseCase lecturas del ledger: listado, detalle y stock de un producto.
type LedgerQueryUseCase struct {
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
	stock       *StockReader
}

// NewLedgerQueryUseCase construye el caso de uso.
func NewLedgerQueryUseCase(txRepo repository.TransactionRepository, productRepo repository.ProductRepository, stock *StockReader) *LedgerQueryUseCase {
	return &LedgerQueryUseCase{txRepo: txRepo, productRepo: productRepo, stock: stock}
}

// List transacciones más recientes primero, con producto, categoría y proveedor.
func (uc *LedgerQueryUseCase) List(ctx context.Context, in dto.TransactionListRequest) (*dto.TransactionListResponse, error) {
	if in.Type != "" && in.Type != entity.TransactionTypeIN && in.Type != entity.TransactionTypeOUT {
		return nil, domain.NewValidationError("type", "debe ser uno de: IN, OUT")
	}
	if in.Limit <= 0 {
		in.Limit = defaultLedgerPageSize
	}
	if in.Limit > maxLedgerPageSize {
		in.Limit = maxLedgerPageSize
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	details, err := uc.txRepo.List(ctx, entity.TransactionFilter{
		ProductID: in.ProductID,
		Type:      in.Type,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar transacciones: %w", err)
	}

	ids := make([]string, 0, len(details))
	seen := make(map[string]struct{}, len(details))
	for _, d := range details {
		if _, ok := seen[d.ProductID]; !ok {
			seen[d.ProductID] = struct{}{}
			ids = append(ids, d.ProductID)
		}
	}
	stocks, err := uc.stock.ComputeStocks(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TransactionResponse, 0, len(details))
	for _, d := range details {
		items = append(items, dto.TransactionFromDetail(d, stocks[d.ProductID]))
	}
	return &dto.TransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// GetByID una transacción con su contexto.
func (uc *LedgerQueryUseCase) GetByID(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	d, err := uc.txRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener transacción: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("transacción %s: %w", id, domain.ErrNotFound)
	}
	stock, err := uc.stock.ComputeStock(ctx, d.ProductID)
	if err != nil {
		return nil, err
	}
	out := dto.TransactionFromDetail(d, stock)
	return &out, nil
}

// Stock desglose IN/OUT de un producto existente.
func (uc *LedgerQueryUseCase) Stock(ctx context.Context, productID string) (*dto.StockResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	t, err := uc.stock.Totals(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.StockResponse{ProductID: productID, Inbound: t.Inbound, Outbound: t.Outbound, Stock: t.Stock()}, nil
}
