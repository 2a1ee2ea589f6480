package entity

import (
	"encoding/json"
	"time"
)

// InvoiceSnapshot copia inmutable de una factura tal como estaba antes de la mutación
// que produjo la versión siguiente. Clave natural: (InvoiceID, Version).
type InvoiceSnapshot struct {
	ID                 string          `json:"id"`
	InvoiceID          string          `json:"invoice_id"`
	Version            int             `json:"version"`
	FiscalFolio        string          `json:"fiscal_folio,omitempty"`
	InvoiceNumber      string          `json:"invoice_number"`
	InvoiceData        json.RawMessage `json:"invoice_data"`
	CreatedBy          string          `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
	SupersededByRevert bool            `json:"superseded_by_revert"` // reservado para revert
}
