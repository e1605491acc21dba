package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos de lectura devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetDetail(ctx context.Context, id string) (*entity.ProductDetail, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	// List ordena por nombre ascendente.
	List(ctx context.Context, limit, offset int) ([]*entity.ProductDetail, error)
	Count(ctx context.Context) (int64, error)
	// Search busca q (sin distinguir mayúsculas) en nombre o descripción.
	Search(ctx context.Context, q string, limit int) ([]*entity.ProductDetail, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	CountBySupplier(ctx context.Context, supplierID string) (int64, error)
}
