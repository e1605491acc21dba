package entity

import "time"

// Supplier proveedor de productos.
type Supplier struct {
	ID        string
	Name      string
	Contact   string // persona de contacto
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
