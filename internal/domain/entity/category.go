package entity

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Category agrupa productos. Name es único sin distinguir mayúsculas/minúsculas.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryWithCount categoría con el número de productos que la referencian.
type CategoryWithCount struct {
	Category
	ProductCount int64
}

// FoldName normaliza un nombre para la comparación de unicidad (case folding Unicode).
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
