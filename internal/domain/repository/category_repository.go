package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Campos válidos para ordenar categorías.
const (
	CategoryOrderByName      = "name"
	CategoryOrderByCreatedAt = "created_at"
)

// CategoryListOptions orden del listado de categorías.
type CategoryListOptions struct {
	OrderBy string // name | created_at
	Desc    bool
}

// CategoryRepository puerto de persistencia para Category.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	// GetByName compara usando entity.FoldName.
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts CategoryListOptions) ([]*entity.CategoryWithCount, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.Category, error)
}
