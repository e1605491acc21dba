package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// CategoryUseCase CRUD de categorías. El nombre es único sin distinguir mayúsculas.
type CategoryUseCase struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
	listeners   []CatalogListener
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, productRepo repository.ProductRepository, listeners ...CatalogListener) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, productRepo: productRepo, listeners: listeners}
}

// Create crea una categoría. Nombre repetido (ignorando mayúsculas) → ErrDuplicateCategoryName.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCategoryName
	}
	now := time.Now()
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicateCategoryName
		}
		return nil, err
	}
	notifyCatalog(ctx, uc.listeners)
	out := dto.CategoryFromEntity(c)
	return &out, nil
}

// GetByID obtiene una categoría.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("categoría %s: %w", id, domain.ErrNotFound)
	}
	out := dto.CategoryFromEntity(c)
	return &out, nil
}

// List categorías con su número de productos. order_by: name|created_at; order: asc|desc.
func (uc *CategoryUseCase) List(ctx context.Context, in dto.CategoryListRequest) ([]dto.CategoryResponse, error) {
	opts := repository.CategoryListOptions{OrderBy: repository.CategoryOrderByName}
	var fields []domain.FieldError
	switch in.OrderBy {
	case "", repository.CategoryOrderByName:
	case repository.CategoryOrderByCreatedAt:
		opts.OrderBy = repository.CategoryOrderByCreatedAt
	default:
		fields = append(fields, domain.FieldError{Path: "order_by", Message: "debe ser uno de: name, created_at"})
	}
	switch strings.ToLower(in.Order) {
	case "", "asc":
	case "desc":
		opts.Desc = true
	default:
		fields = append(fields, domain.FieldError{Path: "order", Message: "debe ser uno de: asc, desc"})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	list, err := uc.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		r := dto.CategoryFromEntity(&c.Category)
		n := c.ProductCount
		r.ProductCount = &n
		out = append(out, r)
	}
	return out, nil
}

// Update renombra o cambia la descripción. Choca con otra categoría → ErrDuplicateCategoryName.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("categoría %s: %w", id, domain.ErrNotFound)
	}
	other, err := uc.repo.GetByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != c.ID {
		return nil, domain.ErrDuplicateCategoryName
	}
	c.Name = in.Name
	c.Description = in.Description
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicateCategoryName
		}
		return nil, err
	}
	notifyCatalog(ctx, uc.listeners)
	out := dto.CategoryFromEntity(c)
	return &out, nil
}

// Delete elimina una categoría sin productos vinculados.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("categoría %s: %w", id, domain.ErrNotFound)
	}
	n, err := uc.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrCategoryInUse
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	notifyCatalog(ctx, uc.listeners)
	return nil
}
