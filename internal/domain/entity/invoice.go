package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado del ciclo de vida de la factura.
type InvoiceStatus string

// Estados de la factura. PAID y CANCELLED están reservados: no existen transiciones hacia ellos.
const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Valid indica si s pertenece al espacio de estados declarado.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// DefaultCurrency moneda por defecto cuando el request no la indica.
const DefaultCurrency = "USD"

// Invoice representa la cabecera de una factura con su composición (ítems y envíos vinculados).
type Invoice struct {
	ID            string          `json:"id"`
	FiscalFolio   string          `json:"fiscal_folio,omitempty"` // vacío hasta la emisión; nunca se reasigna
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	ClientNIT     string          `json:"client_nit,omitempty"`
	ClientAddress string          `json:"client_address,omitempty"`
	ClientEmail   string          `json:"client_email,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Observations  string          `json:"observations,omitempty"`
	Currency      string          `json:"currency"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        InvoiceStatus   `json:"status"`
	Version       int             `json:"version"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Items     []InvoiceItem     `json:"items"`
	Shipments []InvoiceShipment `json:"shipments"`
}

// ShipmentIDs devuelve los envíos vinculados en orden.
func (i *Invoice) ShipmentIDs() []string {
	ids := make([]string, 0, len(i.Shipments))
	for _, s := range i.Shipments {
		ids = append(ids, s.ShipmentID)
	}
	return ids
}

// Clone copia profunda (ítems y envíos incluidos).
func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}
	c := *i
	c.Items = append([]InvoiceItem(nil), i.Items...)
	c.Shipments = append([]InvoiceShipment(nil), i.Shipments...)
	return &c
}
