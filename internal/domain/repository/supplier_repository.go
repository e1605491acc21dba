package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// SupplierRepository puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	Delete(ctx context.Context, id string) error
	// List filtra por nombre o email si search no está vacío; ordena por nombre.
	List(ctx context.Context, search string) ([]*entity.Supplier, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.Supplier, error)
}
