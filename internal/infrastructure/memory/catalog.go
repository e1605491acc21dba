package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

func containsFold(s, q string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(q))
}

func lessName(a, b, idA, idB string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return idA < idB
}

func window[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Productos ────────────────────────────────────────────────────────────────

// ProductRepo productos en memoria.
type ProductRepo struct {
	s    *Store
	inTx bool
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.s.write(ctx, r.inTx, func(d *data) error {
		if _, ok := d.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		if err := checkProductRefs(d, p); err != nil {
			return err
		}
		d.products[p.ID] = *p
		return nil
	})
}

func checkProductRefs(d *data, p *entity.Product) error {
	if _, ok := d.categories[p.CategoryID]; !ok {
		return fmt.Errorf("categoría %s: %w", p.CategoryID, domain.ErrConflict)
	}
	if _, ok := d.suppliers[p.SupplierID]; !ok {
		return fmt.Errorf("proveedor %s: %w", p.SupplierID, domain.ErrConflict)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.read(ctx, func(d *data) error {
		if p, ok := d.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de TxRunner el bloqueo ya lo da writeMu.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetDetail(ctx context.Context, id string) (*entity.ProductDetail, error) {
	var out *entity.ProductDetail
	err := r.s.read(ctx, func(d *data) error {
		if p, ok := d.products[id]; ok {
			det := productDetail(d, p)
			out = &det
		}
		return nil
	})
	return out, err
}

func productDetail(d *data, p entity.Product) entity.ProductDetail {
	return entity.ProductDetail{Product: p, Category: d.categories[p.CategoryID], Supplier: d.suppliers[p.SupplierID]}
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.s.write(ctx, r.inTx, func(d *data) error {
		if _, ok := d.products[p.ID]; !ok {
			return nil
		}
		if err := checkProductRefs(d, p); err != nil {
			return err
		}
		d.products[p.ID] = *p
		return nil
	})
}

// Delete rechaza el borrado si hay transacciones que lo referencian (como la FK RESTRICT).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, r.inTx, func(d *data) error {
		for _, tx := range d.transactions {
			if tx.ProductID == id {
				return domain.ErrProductHasHistory
			}
		}
		delete(d.products, id)
		return nil
	})
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.ProductDetail, error) {
	var out []*entity.ProductDetail
	err := r.s.read(ctx, func(d *data) error {
		all := make([]*entity.ProductDetail, 0, len(d.products))
		for _, p := range d.products {
			det := productDetail(d, p)
			all = append(all, &det)
		}
		sort.Slice(all, func(i, j int) bool { return lessName(all[i].Name, all[j].Name, all[i].ID, all[j].ID) })
		out = window(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.read(ctx, func(d *data) error {
		n = int64(len(d.products))
		return nil
	})
	return n, err
}

func (r *ProductRepo) Search(ctx context.Context, q string, limit int) ([]*entity.ProductDetail, error) {
	var out []*entity.ProductDetail
	err := r.s.read(ctx, func(d *data) error {
		for _, p := range d.products {
			if containsFold(p.Name, q) || containsFold(p.Description, q) {
				det := productDetail(d, p)
				out = append(out, &det)
			}
		}
		sort.Slice(out, func(i, j int) bool { return lessName(out[i].Name, out[j].Name, out[i].ID, out[j].ID) })
		out = window(out, limit, 0)
		return nil
	})
	return out, err
}

func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := r.s.read(ctx, func(d *data) error {
		for _, p := range d.products {
			if p.CategoryID == categoryID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ProductRepo) CountBySupplier(ctx context.Context, supplierID string) (int64, error) {
	var n int64
	err := r.s.read(ctx, func(d *data) error {
		for _, p := range d.products {
			if p.SupplierID == supplierID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// ── Categorías ───────────────────────────────────────────────────────────────

// CategoryRepo categorías en memoria; el nombre plegado es único.
type CategoryRepo struct {
	s *Store
}

func nameTaken(d *data, name, exceptID string) bool {
	folded := entity.FoldName(name)
	for _, c := range d.categories {
		if c.ID != exceptID && entity.FoldName(c.Name) == folded {
			return true
		}
	}
	return false
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	return r.s.write(ctx, false, func(d *data) error {
		if _, ok := d.categories[c.ID]; ok || nameTaken(d, c.Name, "") {
			return domain.ErrDuplicate
		}
		d.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.read(ctx, func(d *data) error {
		if c, ok := d.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	folded := entity.FoldName(name)
	err := r.s.read(ctx, func(d *data) error {
		for _, c := range d.categories {
			if entity.FoldName(c.Name) == folded {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	return r.s.write(ctx, false, func(d *data) error {
		if _, ok := d.categories[c.ID]; !ok {
			return nil
		}
		if nameTaken(d, c.Name, c.ID) {
			return domain.ErrDuplicate
		}
		d.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, false, func(d *data) error {
		for _, p := range d.products {
			if p.CategoryID == id {
				return domain.ErrCategoryInUse
			}
		}
		delete(d.categories, id)
		return nil
	})
}

func (r *CategoryRepo) List(ctx context.Context, opts repository.CategoryListOptions) ([]*entity.CategoryWithCount, error) {
	var out []*entity.CategoryWithCount
	err := r.s.read(ctx, func(d *data) error {
		counts := make(map[string]int64)
		for _, p := range d.products {
			counts[p.CategoryID]++
		}
		for _, c := range d.categories {
			out = append(out, &entity.CategoryWithCount{Category: c, ProductCount: counts[c.ID]})
		}
		sort.Slice(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if opts.Desc {
				a, b = b, a
			}
			if opts.OrderBy == repository.CategoryOrderByCreatedAt && !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return lessName(a.Name, b.Name, a.ID, b.ID)
		})
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Search(ctx context.Context, q string, limit int) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.s.read(ctx, func(d *data) error {
		for _, c := range d.categories {
			if containsFold(c.Name, q) {
				c := c
				out = append(out, &c)
			}
		}
		sort.Slice(out, func(i, j int) bool { return lessName(out[i].Name, out[j].Name, out[i].ID, out[j].ID) })
		out = window(out, limit, 0)
		return nil
	})
	return out, err
}

// ── Proveedores ──────────────────────────────────────────────────────────────

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	s *Store
}

func (r *SupplierRepo) Create(ctx context.Context, sp *entity.Supplier) error {
	return r.s.write(ctx, false, func(d *data) error {
		if _, ok := d.suppliers[sp.ID]; ok {
			return domain.ErrDuplicate
		}
		d.suppliers[sp.ID] = *sp
		return nil
	})
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.s.read(ctx, func(d *data) error {
		if sp, ok := d.suppliers[id]; ok {
			out = &sp
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) Update(ctx context.Context, sp *entity.Supplier) error {
	return r.s.write(ctx, false, func(d *data) error {
		if _, ok := d.suppliers[sp.ID]; ok {
			d.suppliers[sp.ID] = *sp
		}
		return nil
	})
}

func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, false, func(d *data) error {
		for _, p := range d.products {
			if p.SupplierID == id {
				return domain.ErrSupplierInUse
			}
		}
		delete(d.suppliers, id)
		return nil
	})
}

func (r *SupplierRepo) List(ctx context.Context, search string) ([]*entity.Supplier, error) {
	return r.filter(ctx, search, 0)
}

func (r *SupplierRepo) Search(ctx context.Context, q string, limit int) ([]*entity.Supplier, error) {
	return r.filter(ctx, q, limit)
}

func (r *SupplierRepo) filter(ctx context.Context, q string, limit int) ([]*entity.Supplier, error) {
	out := []*entity.Supplier{}
	err := r.s.read(ctx, func(d *data) error {
		for _, sp := range d.suppliers {
			if q == "" || containsFold(sp.Name, q) || containsFold(sp.Email, q) {
				sp := sp
				out = append(out, &sp)
			}
		}
		sort.Slice(out, func(i, j int) bool { return lessName(out[i].Name, out[j].Name, out[i].ID, out[j].ID) })
		out = window(out, limit, 0)
		return nil
	})
	return out, err
}

func (r *SupplierRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.read(ctx, func(d *data) error {
		n = int64(len(d.suppliers))
		return nil
	})
	return n, err
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

// UserRepo usuarios en memoria; email único.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.s.write(ctx, false, func(d *data) error {
		for _, existing := range d.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return domain.ErrDuplicate
			}
		}
		d.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.s.read(ctx, func(d *data) error {
		if u, ok := d.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.s.read(ctx, func(d *data) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}
