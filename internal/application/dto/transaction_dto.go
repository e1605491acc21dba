package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransactionRequest body para POST /api/transactions.
// TotalValue es opcional: el servidor siempre lo recalcula y rechaza uno que no coincida.
type CreateTransactionRequest struct {
	Type           string           `json:"type" validate:"required,oneof=IN OUT"`
	Quantity       int64            `json:"quantity" validate:"min=1"`
	UnitPrice      decimal.Decimal  `json:"unit_price" validate:"gte=0"`
	TotalValue     *decimal.Decimal `json:"total_value,omitempty" validate:"omitempty,gte=0"`
	ProductID      string           `json:"product_id" validate:"required,uuid"`
	Date           *time.Time       `json:"date,omitempty"`
	IdempotencyKey string           `json:"idempotency_key,omitempty" validate:"max=200"`
}

// TransactionResponse transacción del ledger con contexto de producto, categoría y proveedor.
type TransactionResponse struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Quantity   int64            `json:"quantity"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	TotalValue decimal.Decimal  `json:"total_value"`
	ProductID  string           `json:"product_id"`
	Date       time.Time        `json:"date"`
	CreatedAt  time.Time        `json:"created_at"`
	Product    *ProductResponse `json:"product,omitempty"`
	// Replayed es true si la clave de idempotencia ya existía y no se insertó nada.
	Replayed bool `json:"replayed,omitempty"`
}

// TransactionListRequest filtros de GET /api/transactions.
type TransactionListRequest struct {
	ProductID string `query:"product_id"`
	Type      string `query:"type"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

// TransactionListResponse página del ledger, más reciente primero.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
