package dto

import (
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/validator"
)

// Validate aplica los tags validate del struct y devuelve *domain.ValidationError (o nil).
func Validate(in interface{}) error {
	return ValidationErrorOf(validator.ValidateStruct(in))
}

// ValidationErrorOf convierte errores de campo en *domain.ValidationError. nil si no hay errores.
func ValidationErrorOf(fields []validator.FieldError, extra ...domain.FieldError) error {
	if len(fields) == 0 && len(extra) == 0 {
		return nil
	}
	out := make([]domain.FieldError, 0, len(fields)+len(extra))
	for _, f := range fields {
		out = append(out, domain.FieldError{Path: f.Path, Message: f.Message})
	}
	out = append(out, extra...)
	return &domain.ValidationError{Fields: out}
}
