package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

// TransactionRepository puerto del ledger. Solo inserción: no existe Update ni Delete.
type TransactionRepository interface {
	// AppendGuarded inserta la transacción solo si, dentro de la misma sentencia, el stock
	// derivado cubre una salida. Devuelve false (sin insertar) si el guard falla.
	AppendGuarded(ctx context.Context, tx *entity.Transaction) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	GetDetail(ctx context.Context, id string) (*entity.TransactionDetail, error)
	// FindByIdempotencyKey busca una transacción con esa clave creada en o después de since.
	FindByIdempotencyKey(ctx context.Context, key string, since time.Time) (*entity.Transaction, error)
	// Totals sumas IN/OUT de un producto.
	Totals(ctx context.Context, productID string) (inventory.Totals, error)
	// TotalsByProduct sumas IN/OUT de varios productos en una sola consulta agrupada.
	// Productos sin transacciones no aparecen en el mapa.
	TotalsByProduct(ctx context.Context, productIDs []string) (map[string]inventory.Totals, error)
	CountByProduct(ctx context.Context, productID string) (int64, error)
	// List ordena por fecha descendente.
	List(ctx context.Context, filter entity.TransactionFilter) ([]*entity.TransactionDetail, error)
}
