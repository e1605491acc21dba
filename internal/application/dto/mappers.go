package dto

import (
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/pkg/money"
)

// ProductFromEntity mapea un producto con su stock derivado.
func ProductFromEntity(p *entity.Product, quantity int64) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		BuyPrice:    money.Round2(p.BuyPrice),
		SellPrice:   money.Round2(p.SellPrice),
		CategoryID:  p.CategoryID,
		SupplierID:  p.SupplierID,
		Quantity:    quantity,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProductFromDetail mapea un producto con categoría y proveedor embebidos.
func ProductFromDetail(d *entity.ProductDetail, quantity int64) ProductResponse {
	out := ProductFromEntity(&d.Product, quantity)
	if d.Category.ID != "" {
		c := CategoryFromEntity(&d.Category)
		out.Category = &c
	}
	if d.Supplier.ID != "" {
		s := SupplierFromEntity(&d.Supplier)
		out.Supplier = &s
	}
	return out
}

// CategoryFromEntity mapea una categoría.
func CategoryFromEntity(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// SupplierFromEntity mapea un proveedor.
func SupplierFromEntity(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Contact:   s.Contact,
		Phone:     s.Phone,
		Email:     s.Email,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// TransactionFromEntity mapea una transacción sin contexto de producto.
func TransactionFromEntity(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:         t.ID,
		Type:       t.Type,
		Quantity:   t.Quantity,
		UnitPrice:  t.UnitPrice,
		TotalValue: money.Round2(t.TotalValue),
		ProductID:  t.ProductID,
		Date:       t.Date,
		CreatedAt:  t.CreatedAt,
	}
}

// TransactionFromDetail mapea una transacción con producto, categoría y proveedor.
// stock es el stock derivado actual del producto.
func TransactionFromDetail(d *entity.TransactionDetail, stock int64) TransactionResponse {
	out := TransactionFromEntity(&d.Transaction)
	if d.Product.ID != "" {
		p := ProductFromDetail(&d.Product, stock)
		out.Product = &p
	}
	return out
}
