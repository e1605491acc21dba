package dto

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
// Error es un texto o, en errores de validación, una lista de FieldErrorDTO.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Error   interface{}            `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// FieldErrorDTO error de validación direccionable a un campo del payload.
type FieldErrorDTO struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// MessageResponse confirmación simple (ej. borrado).
type MessageResponse struct {
	Message string `json:"message"`
}
