package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// No tiene campo de stock: la cantidad disponible se deriva siempre del ledger de transacciones.
type Product struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	BuyPrice    decimal.Decimal // precio de compra (costo actual)
	SellPrice   decimal.Decimal // precio de venta, siempre mayor que BuyPrice
	CategoryID  string
	SupplierID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductDetail producto con su categoría y proveedor (lectura).
type ProductDetail struct {
	Product
	Category Category
	Supplier Supplier
}
