package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `p.id, p.name, p.description, p.image_url, p.buy_price, p.sell_price, p.category_id, p.supplier_id, p.created_at, p.updated_at`

const productDetailSelect = `
	SELECT ` + productColumns + `,
	       c.id, c.name, c.description, c.created_at, c.updated_at,
	       s.id, s.name, s.contact, s.phone, s.email, s.created_at, s.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id
	JOIN suppliers s ON s.id = p.supplier_id`

func productDest(p *entity.Product) []any {
	return []any{&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.BuyPrice, &p.SellPrice, &p.CategoryID, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt}
}

func productDetailDest(d *entity.ProductDetail) []any {
	dest := productDest(&d.Product)
	return append(dest,
		&d.Category.ID, &d.Category.Name, &d.Category.Description, &d.Category.CreatedAt, &d.Category.UpdatedAt,
		&d.Supplier.ID, &d.Supplier.Name, &d.Supplier.Contact, &d.Supplier.Phone, &d.Supplier.Email, &d.Supplier.CreatedAt, &d.Supplier.UpdatedAt,
	)
}

func scanProductDetails(rows pgx.Rows) ([]*entity.ProductDetail, error) {
	defer rows.Close()
	list := []*entity.ProductDetail{}
	for rows.Next() {
		var d entity.ProductDetail
		if err := rows.Scan(productDetailDest(&d)...); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, name, description, image_url, buy_price, sell_price, category_id, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.ImageURL, p.BuyPrice, p.SellPrice,
		p.CategoryID, p.SupplierID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert product: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila hasta el fin de la tx (SELECT FOR UPDATE).
// Serializa escrituras concurrentes del ledger sobre el mismo producto.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	var p entity.Product
	if err := r.q.QueryRow(ctx, query, id).Scan(productDest(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetDetail producto con categoría y proveedor.
func (r *ProductRepo) GetDetail(ctx context.Context, id string) (*entity.ProductDetail, error) {
	var d entity.ProductDetail
	if err := r.q.QueryRow(ctx, productDetailSelect+` WHERE p.id = $1`, id).Scan(productDetailDest(&d)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product detail: %w", err)
	}
	return &d, nil
}

// Update actualiza un producto existente. El stock no se toca: se deriva del ledger.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, image_url = $4, buy_price = $5, sell_price = $6,
		       category_id = $7, supplier_id = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.ImageURL, p.BuyPrice, p.SellPrice, p.CategoryID, p.SupplierID, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("update product: %w", domain.ErrConflict)
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete elimina un producto por ID. La FK del ledger impide borrar productos con historial.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductHasHistory
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// List lista productos por nombre con paginación.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.ProductDetail, error) {
	rows, err := r.q.Query(ctx, productDetailSelect+` ORDER BY lower(p.name), p.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return scanProductDetails(rows)
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *ProductRepo) Search(ctx context.Context, q string, limit int) ([]*entity.ProductDetail, error) {
	rows, err := r.q.Query(ctx, productDetailSelect+`
		WHERE p.name ILIKE '%' || $1 || '%' OR p.description ILIKE '%' || $1 || '%'
		ORDER BY lower(p.name), p.id LIMIT $2`, escapeLike(q), limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return scanProductDetails(rows)
}

func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}
	return n, nil
}

func (r *ProductRepo) CountBySupplier(ctx context.Context, supplierID string) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE supplier_id = $1`, supplierID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products by supplier: %w", err)
	}
	return n, nil
}
