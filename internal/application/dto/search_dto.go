package dto

// Tipos de resultado de búsqueda.
const (
	SearchTypeProduct  = "product"
	SearchTypeCategory = "category"
	SearchTypeSupplier = "supplier"
)

// SearchResultDTO resultado de la búsqueda global.
type SearchResultDTO struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Link     string `json:"link"`
}
