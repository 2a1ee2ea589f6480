package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewInvoiceNumber genera el número de documento asignado al crear: INV-XXXXXXXX-<millis>.
func NewInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%d", randomHex(8), now.UnixMilli())
}

// NewFiscalFolio genera el folio fiscal asignado en la emisión: FISCAL-<16 hex>-<millis>.
// Combina 64 bits aleatorios con el instante para evitar colisiones entre procesos.
func NewFiscalFolio(now time.Time) string {
	return fmt.Sprintf("FISCAL-%s-%d", randomHex(16), now.UnixMilli())
}

func randomHex(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(s[:n])
}
