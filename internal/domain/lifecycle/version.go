package lifecycle

import (
	"fmt"

	"github.com/jhoicas/Facturas-api/internal/domain"
)

// InitialVersion versión de toda factura recién creada.
const InitialVersion = 1

// CheckVersion compara la versión almacenada con la esperada por el llamador.
// expected nil significa "sin control" (ruta de creación).
func CheckVersion(current int, expected *int) error {
	if expected == nil {
		return nil
	}
	if *expected != current {
		return fmt.Errorf("%w: esperada %d, actual %d", domain.ErrVersionConflict, *expected, current)
	}
	return nil
}

// NextVersion versión resultante de una mutación confirmada.
func NextVersion(current int) int {
	return current + 1
}
