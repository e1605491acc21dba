package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/validator"
)

// ProductUseCase casos de uso CRUD para productos. El stock nunca se edita: se deriva del ledger.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	stock        *inventory.StockReader
	txRunner     inventory.TxRunner
	listeners    []CatalogListener
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	stock *inventory.StockReader,
	txRunner inventory.TxRunner,
	listeners ...CatalogListener,
) *ProductUseCase {
	return &ProductUseCase{
		repo:         repo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		stock:        stock,
		txRunner:     txRunner,
		listeners:    listeners,
	}
}

// Create crea un producto. Su stock inicial es 0 hasta que se registre una entrada.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error) {
	in = normalizeProduct(in)
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	if err := uc.checkReferences(ctx, in); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		BuyPrice:    in.BuyPrice,
		SellPrice:   in.SellPrice,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	notifyCatalog(ctx, uc.listeners)
	return uc.GetByID(ctx, product.ID)
}

// GetByID producto con categoría, proveedor y stock derivado.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	d, err := uc.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	stock, err := uc.stock.ComputeStock(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ProductFromDetail(d, stock)
	return &out, nil
}

// List productos ordenados por nombre con su stock derivado (una consulta agrupada para todo el lote).
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	details, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	stocks, err := uc.stock.ComputeStocks(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(details))
	for _, d := range details {
		items = append(items, dto.ProductFromDetail(d, stocks[d.ID]))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Update reemplaza los datos del producto con las mismas reglas que Create.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.ProductRequest) (*dto.ProductResponse, error) {
	in = normalizeProduct(in)
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	if err := uc.checkReferences(ctx, in); err != nil {
		return nil, err
	}
	product.Name = in.Name
	product.Description = in.Description
	product.ImageURL = in.ImageURL
	product.BuyPrice = in.BuyPrice
	product.SellPrice = in.SellPrice
	product.CategoryID = in.CategoryID
	product.SupplierID = in.SupplierID
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	notifyCatalog(ctx, uc.listeners)
	return uc.GetByID(ctx, id)
}

// Delete elimina un producto sin stock y sin historial. Con la fila bloqueada:
// no existe → ErrNotFound; stock > 0 → ErrProductHasStock; con transacciones → ErrProductHasHistory.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, txRepo repository.TransactionRepository) error {
		product, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		totals, err := txRepo.Totals(ctx, id)
		if err != nil {
			return err
		}
		if totals.Stock() > 0 {
			return domain.ErrProductHasStock
		}
		n, err := txRepo.CountByProduct(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrProductHasHistory
		}
		return productRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	notifyCatalog(ctx, uc.listeners)
	return nil
}

func (uc *ProductUseCase) checkReferences(ctx context.Context, in dto.ProductRequest) error {
	var fields []domain.FieldError
	c, err := uc.categoryRepo.GetByID(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	if c == nil {
		fields = append(fields, domain.FieldError{Path: "category_id", Message: "categoría no encontrada"})
	}
	s, err := uc.supplierRepo.GetByID(ctx, in.SupplierID)
	if err != nil {
		return err
	}
	if s == nil {
		fields = append(fields, domain.FieldError{Path: "supplier_id", Message: "proveedor no encontrado"})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func normalizeProduct(in dto.ProductRequest) dto.ProductRequest {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// validateProduct tags del request más sell_price > buy_price.
func validateProduct(in dto.ProductRequest) error {
	fields := validator.ValidateStruct(in)
	var extra []domain.FieldError
	if !hasField(fields, "sell_price") && !hasField(fields, "buy_price") && !in.SellPrice.GreaterThan(in.BuyPrice) {
		extra = append(extra, domain.FieldError{Path: "sell_price", Message: "debe ser mayor que buy_price"})
	}
	return dto.ValidationErrorOf(fields, extra...)
}

func hasField(fields []validator.FieldError, path string) bool {
	for _, f := range fields {
		if f.Path == path {
			return true
		}
	}
	return false
}
