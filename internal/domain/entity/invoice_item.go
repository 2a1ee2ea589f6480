package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItem representa una línea de una factura. Solo conoce el ID de su factura.
type InvoiceItem struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	ShipmentID  string          `json:"shipment_id,omitempty"` // referencia informativa, sin unicidad
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CalculateTotal recalcula TotalPrice = Quantity * UnitPrice.
func (it *InvoiceItem) CalculateTotal() {
	it.TotalPrice = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
