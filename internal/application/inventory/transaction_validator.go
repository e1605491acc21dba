package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/money"
	"github.com/jhoicas/stock-ledger-api/pkg/validator"
)

// ValidatedTransaction candidato que pasó todas las reglas, listo para insertarse.
type ValidatedTransaction struct {
	Transaction entity.Transaction // sin ID ni CreatedAt
	Product     *entity.Product
	Available   int64 // stock derivado al momento de validar
}

// TransactionValidator aplica las reglas de una transacción candidata, en orden:
//  1. esquema (tipo, cantidad, precios, fecha no futura)
//  2. el producto existe
//  3. una salida no supera el stock derivado
//  4. total_value se recalcula; si el cliente envía otro valor se rechaza
//
// Solo lee; la verificación definitiva de stock se repite dentro del commit.
type TransactionValidator struct {
	productRepo repository.ProductRepository
	stock       *StockReader
	now         func() time.Time
}

// NewTransactionValidator construye el validador. now puede ser nil (usa time.Now).
func NewTransactionValidator(productRepo repository.ProductRepository, stock *StockReader, now func() time.Time) *TransactionValidator {
	if now == nil {
		now = time.Now
	}
	return &TransactionValidator{productRepo: productRepo, stock: stock, now: now}
}

// Validate devuelve *domain.ValidationError, domain.ErrNotFound o *domain.InsufficientStockError
// según la primera regla que falle.
func (v *TransactionValidator) Validate(ctx context.Context, req dto.CreateTransactionRequest) (*ValidatedTransaction, error) {
	now := v.now()

	// 1. Esquema
	date := now
	var extra []domain.FieldError
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
		if date.After(now) {
			extra = append(extra, domain.FieldError{Path: "date", Message: "no puede ser una fecha futura"})
		}
	}
	if err := dto.ValidationErrorOf(validator.ValidateStruct(req), extra...); err != nil {
		return nil, err
	}

	// 2. Referencia
	product, err := v.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("validar transacción: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", req.ProductID, domain.ErrNotFound)
	}

	// 3. Stock
	available, err := v.stock.ComputeStock(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if req.Type == entity.TransactionTypeOUT && !inventory.HasSufficient(available, req.Quantity) {
		return nil, &domain.InsufficientStockError{ProductID: product.ID, Requested: req.Quantity, Available: available}
	}

	// 4. Total recalculado
	total := money.Round2(money.LineTotal(req.Quantity, req.UnitPrice))
	if req.TotalValue != nil && !money.EqualAtCents(*req.TotalValue, total) {
		return nil, domain.NewValidationError("total_value",
			fmt.Sprintf("no coincide con quantity × unit_price (%s)", total.StringFixed(money.Places)))
	}

	return &ValidatedTransaction{
		Transaction: entity.Transaction{
			Type:           req.Type,
			Quantity:       req.Quantity,
			UnitPrice:      req.UnitPrice,
			TotalValue:     total,
			ProductID:      product.ID,
			Date:           date,
			IdempotencyKey: req.IdempotencyKey,
		},
		Product:   product,
		Available: available,
	}, nil
}
