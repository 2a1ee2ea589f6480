package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los cinco primeros son fallos duros: abortan la transacción y llegan tal cual al llamador.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrVersionConflict   = errors.New("la factura fue modificada por otro usuario")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflictingLink   = errors.New("el envío ya está vinculado a otra factura")

	// ErrPersistence es un fallo blando (historial/auditoría): se registra y nunca aborta la mutación.
	ErrPersistence = errors.New("no se pudo persistir el registro auxiliar")
)

// ErrValidation es el nombre del taxón de validación; comparte identidad con ErrInvalidInput.
var ErrValidation = ErrInvalidInput

// Códigos estables para los adaptadores (HTTP, logs).
const (
	KindNotFound          = "NOT_FOUND"
	KindVersionConflict   = "VERSION_CONFLICT"
	KindInvalidTransition = "INVALID_TRANSITION"
	KindValidation        = "VALIDATION"
	KindConflictingLink   = "CONFLICTING_LINK"
	KindPersistence       = "PERSISTENCE"
	KindInternal          = "INTERNAL"
)

// Kind clasifica err dentro de la taxonomía de errores de la factura.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrVersionConflict):
		return KindVersionConflict
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrConflictingLink):
		return KindConflictingLink
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}

// IsRetryable indica si el llamador puede reintentar releyendo el estado (solo conflictos de versión).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
