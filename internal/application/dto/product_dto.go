package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest entrada para crear o reemplazar (PUT) un producto.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	BuyPrice    decimal.Decimal `json:"buy_price" validate:"gte=0"`
	SellPrice   decimal.Decimal `json:"sell_price" validate:"gte=0"`
	CategoryID  string          `json:"category_id" validate:"required,uuid"`
	SupplierID  string          `json:"supplier_id" validate:"required,uuid"`
}

// ProductResponse salida de un producto con su stock derivado.
type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url"`
	BuyPrice    decimal.Decimal   `json:"buy_price"`
	SellPrice   decimal.Decimal   `json:"sell_price"`
	CategoryID  string            `json:"category_id"`
	SupplierID  string            `json:"supplier_id"`
	Quantity    int64             `json:"quantity"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Supplier    *SupplierResponse `json:"supplier,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// StockResponse desglose del stock derivado de un producto.
type StockResponse struct {
	ProductID string `json:"product_id"`
	Inbound   int64  `json:"inbound"`
	Outbound  int64  `json:"outbound"`
	Stock     int64  `json:"stock"`
}
