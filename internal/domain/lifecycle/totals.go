package lifecycle

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturas-api/internal/domain"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// Totals importes agregados de una factura.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// MaxQuantity cantidad máxima por línea (columna INTEGER de invoice_items).
const MaxQuantity = math.MaxInt32

// ValidateItems comprueba la estructura de las líneas: lista no vacía, descripción,
// cantidad entre 1 y MaxQuantity y precio unitario > 0.
func ValidateItems(items []entity.InvoiceItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: la factura requiere al menos un ítem", domain.ErrInvalidInput)
	}
	for i, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			return fmt.Errorf("%w: ítem %d sin descripción", domain.ErrInvalidInput, i)
		}
		if it.Quantity < 1 || it.Quantity > MaxQuantity {
			return fmt.Errorf("%w: ítem %d con cantidad %d", domain.ErrInvalidInput, i, it.Quantity)
		}
		if !it.UnitPrice.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: ítem %d con precio unitario %s", domain.ErrInvalidInput, i, it.UnitPrice)
		}
	}
	return nil
}

// ValidateShipmentIDs rechaza referencias vacías o repetidas dentro de la misma solicitud.
func ValidateShipmentIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: referencia de envío vacía", domain.ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: envío %s repetido", domain.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ComputeTotals recalcula TotalPrice de cada ítem (in place) y agrega subtotal y total.
func ComputeTotals(items []entity.InvoiceItem, tax decimal.Decimal) (Totals, error) {
	if tax.IsNegative() {
		return Totals{}, fmt.Errorf("%w: impuesto negativo", domain.ErrInvalidInput)
	}
	subtotal := decimal.Zero
	for i := range items {
		items[i].CalculateTotal()
		subtotal = subtotal.Add(items[i].TotalPrice)
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}

// CheckTotals verifica los invariantes subtotal == Σ TotalPrice y total == subtotal + tax.
func CheckTotals(inv *entity.Invoice) error {
	sum := decimal.Zero
	for _, it := range inv.Items {
		if !it.TotalPrice.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
			return fmt.Errorf("%w: total de ítem %s inconsistente", domain.ErrInvalidInput, it.ID)
		}
		sum = sum.Add(it.TotalPrice)
	}
	if !sum.Equal(inv.Subtotal) {
		return fmt.Errorf("%w: subtotal %s != suma de ítems %s", domain.ErrInvalidInput, inv.Subtotal, sum)
	}
	if !inv.Subtotal.Add(inv.TaxAmount).Equal(inv.TotalAmount) {
		return fmt.Errorf("%w: total %s != subtotal + impuesto", domain.ErrInvalidInput, inv.TotalAmount)
	}
	return nil
}
