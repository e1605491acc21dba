package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del ledger.
const (
	TransactionTypeIN  = "IN"  // entrada (compra/recepción)
	TransactionTypeOUT = "OUT" // salida (venta/despacho)
)

// Transaction entrada inmutable del ledger. Solo se inserta; nunca se actualiza ni se borra.
type Transaction struct {
	ID             string
	Type           string
	Quantity       int64
	UnitPrice      decimal.Decimal
	TotalValue     decimal.Decimal // siempre Quantity * UnitPrice, recalculado en el servidor
	ProductID      string
	Date           time.Time
	IdempotencyKey string // opcional; deduplica reintentos dentro de una ventana
	CreatedAt      time.Time
}

// TransactionDetail transacción con el contexto de producto, categoría y proveedor.
type TransactionDetail struct {
	Transaction
	Product ProductDetail
}

// TransactionFilter filtros de listado del ledger.
type TransactionFilter struct {
	ProductID string
	Type      string
	Limit     int
	Offset    int
}
