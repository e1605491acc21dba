package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// Reglas de negocio que bloquean una operación. Todas responden a errors.Is(err, ErrConflict).
var (
	ErrCategoryInUse         = &ConflictError{Code: "CATEGORY_IN_USE", Message: "la categoría tiene productos vinculados"}
	ErrSupplierInUse         = &ConflictError{Code: "SUPPLIER_IN_USE", Message: "el proveedor tiene productos vinculados"}
	ErrProductHasStock       = &ConflictError{Code: "PRODUCT_HAS_STOCK", Message: "el producto aún tiene stock"}
	ErrProductHasHistory     = &ConflictError{Code: "PRODUCT_HAS_HISTORY", Message: "el producto tiene transacciones registradas"}
	ErrDuplicateCategoryName = &ConflictError{Code: "DUPLICATE_CATEGORY", Message: "ya existe una categoría con ese nombre", duplicate: true}
	ErrIdempotencyKeyReused  = &ConflictError{Code: "IDEMPOTENCY_KEY_REUSED", Message: "la clave de idempotencia ya se usó con otra transacción", duplicate: true}
)

// FieldError error direccionable a un campo del payload (path + mensaje).
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError agrupa errores de campo. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError construye un ValidationError con un único campo.
func NewValidationError(path, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Path: path, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	return "validación: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// InsufficientStockError salida rechazada porque supera el stock derivado.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

// Shortfall unidades que faltan para cubrir la salida.
func (e *InsufficientStockError) Shortfall() int64 {
	if e.Requested <= e.Available {
		return 0
	}
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d", e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock || target == ErrConflict
}

// ConflictError violación de una regla de negocio (borrado bloqueado, nombre duplicado).
type ConflictError struct {
	Code      string
	Message   string
	duplicate bool
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool {
	if target == ErrConflict {
		return true
	}
	if target == ErrDuplicate {
		return e.duplicate
	}
	t, ok := target.(*ConflictError)
	return ok && t.Code == e.Code
}
