package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
)

// SearchUseCase búsqueda global sobre productos, categorías y proveedores.
type SearchUseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
}

// NewSearchUseCase construye el caso de uso.
func NewSearchUseCase(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, supplierRepo repository.SupplierRepository) *SearchUseCase {
	return &SearchUseCase{productRepo: productRepo, categoryRepo: categoryRepo, supplierRepo: supplierRepo}
}

// Search ejecuta las tres búsquedas en paralelo. limit aplica por tipo (por defecto 5, máximo 20).
// Los resultados salen agrupados: productos, categorías, proveedores; cada grupo por nombre.
func (uc *SearchUseCase) Search(ctx context.Context, q string, limit int) ([]dto.SearchResultDTO, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []dto.SearchResultDTO{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	var (
		products   []*entity.ProductDetail
		categories []*entity.Category
		suppliers  []*entity.Supplier
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = uc.productRepo.Search(gctx, q, limit)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = uc.categoryRepo.Search(gctx, q, limit)
		return err
	})
	g.Go(func() error {
		var err error
		suppliers, err = uc.supplierRepo.Search(gctx, q, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("búsqueda: %w", err)
	}

	out := make([]dto.SearchResultDTO, 0, len(products)+len(categories)+len(suppliers))
	for _, p := range products {
		out = append(out, dto.SearchResultDTO{
			ID: p.ID, Type: dto.SearchTypeProduct, Title: p.Name, Subtitle: p.Category.Name,
			Link: "/products?action=edit&id=" + p.ID,
		})
	}
	for _, c := range categories {
		out = append(out, dto.SearchResultDTO{
			ID: c.ID, Type: dto.SearchTypeCategory, Title: c.Name, Subtitle: c.Description,
			Link: "/categories?action=edit&id=" + c.ID,
		})
	}
	for _, s := range suppliers {
		out = append(out, dto.SearchResultDTO{
			ID: s.ID, Type: dto.SearchTypeSupplier, Title: s.Name, Subtitle: s.Email,
			Link: "/suppliers?action=edit&id=" + s.ID,
		})
	}
	return out, nil
}
