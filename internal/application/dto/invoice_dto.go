package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// DateLayout formato de fechas de factura en requests y respuestas.
const DateLayout = "2006-01-02"

// InvoiceRequest body para POST /api/invoices y PUT /api/invoices/:id.
// Version es la versión que el cliente leyó; si se omite en una edición no se controla.
type InvoiceRequest struct {
	ClientName    string               `json:"client_name" validate:"required"`
	ClientNIT     string               `json:"client_nit,omitempty"`
	ClientAddress string               `json:"client_address,omitempty"`
	ClientEmail   string               `json:"client_email,omitempty" validate:"omitempty,email"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	Observations  string               `json:"observations,omitempty"`
	Currency      string               `json:"currency,omitempty" validate:"omitempty,len=3"`
	InvoiceDate   string               `json:"invoice_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate       string               `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TaxAmount     decimal.Decimal      `json:"tax_amount"`
	Items         []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	ShipmentIDs   []string             `json:"shipment_ids,omitempty" validate:"omitempty,dive,required"`
	Version       *int                 `json:"version,omitempty" validate:"omitempty,min=1"`
}

// InvoiceItemRequest línea de factura.
type InvoiceItemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity" validate:"min=1,max=2147483647"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ShipmentID  string          `json:"shipment_id,omitempty"`
}

// InvoiceResponse factura con su composición.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	FiscalFolio   string                `json:"fiscal_folio,omitempty"`
	Status        string                `json:"status"`
	Version       int                   `json:"version"`
	ClientName    string                `json:"client_name"`
	ClientNIT     string                `json:"client_nit,omitempty"`
	ClientAddress string                `json:"client_address,omitempty"`
	ClientEmail   string                `json:"client_email,omitempty"`
	PaymentMethod string                `json:"payment_method,omitempty"`
	Observations  string                `json:"observations,omitempty"`
	Currency      string                `json:"currency"`
	InvoiceDate   string                `json:"invoice_date"`
	DueDate       string                `json:"due_date,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Items         []InvoiceItemResponse `json:"items"`
	ShipmentIDs   []string              `json:"shipment_ids"`
	CreatedBy     string                `json:"created_by"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// InvoiceItemResponse línea en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ShipmentID  string          `json:"shipment_id,omitempty"`
}

// NewInvoiceResponse arma la respuesta desde la entidad con ítems y envíos cargados.
func NewInvoiceResponse(inv *entity.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		FiscalFolio:   inv.FiscalFolio,
		Status:        string(inv.Status),
		Version:       inv.Version,
		ClientName:    inv.ClientName,
		ClientNIT:     inv.ClientNIT,
		ClientAddress: inv.ClientAddress,
		ClientEmail:   inv.ClientEmail,
		PaymentMethod: inv.PaymentMethod,
		Observations:  inv.Observations,
		Currency:      inv.Currency,
		InvoiceDate:   inv.InvoiceDate.Format(DateLayout),
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		Items:         make([]InvoiceItemResponse, 0, len(inv.Items)),
		ShipmentIDs:   inv.ShipmentIDs(),
		CreatedBy:     inv.CreatedBy,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	if !inv.DueDate.IsZero() {
		resp.DueDate = inv.DueDate.Format(DateLayout)
	}
	for _, it := range inv.Items {
		resp.Items = append(resp.Items, InvoiceItemResponse{
			ID:          it.ID,
			Position:    it.Position,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			ShipmentID:  it.ShipmentID,
		})
	}
	return resp
}

// InvoiceSummaryResponse fila de listados por estado.
type InvoiceSummaryResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	FiscalFolio   string          `json:"fiscal_folio,omitempty"`
	Status        string          `json:"status"`
	Version       int             `json:"version"`
	ClientName    string          `json:"client_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewInvoiceSummaryResponse fila de listado desde la cabecera.
func NewInvoiceSummaryResponse(inv *entity.Invoice) InvoiceSummaryResponse {
	return InvoiceSummaryResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		FiscalFolio:   inv.FiscalFolio,
		Status:        string(inv.Status),
		Version:       inv.Version,
		ClientName:    inv.ClientName,
		TotalAmount:   inv.TotalAmount,
		CreatedAt:     inv.CreatedAt,
	}
}

// SnapshotResponse versión histórica de una factura.
type SnapshotResponse struct {
	ID            string          `json:"id"`
	InvoiceID     string          `json:"invoice_id"`
	Version       int             `json:"version"`
	FiscalFolio   string          `json:"fiscal_folio,omitempty"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceData   json.RawMessage `json:"invoice_data"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	IsReverted    bool            `json:"is_reverted"`
}

// NewSnapshotResponse desde la entidad.
func NewSnapshotResponse(s *entity.InvoiceSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:            s.ID,
		InvoiceID:     s.InvoiceID,
		Version:       s.Version,
		FiscalFolio:   s.FiscalFolio,
		InvoiceNumber: s.InvoiceNumber,
		InvoiceData:   s.InvoiceData,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
		IsReverted:    s.SupersededByRevert,
	}
}

// HistoryCountResponse cuerpo de GET /api/invoices/:id/history/count.
type HistoryCountResponse struct {
	InvoiceID string `json:"invoice_id"`
	Count     int64  `json:"count"`
}

// AuditLogResponse evento de auditoría.
type AuditLogResponse struct {
	ID            string          `json:"id"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Action        string          `json:"action"`
	ChangedBy     string          `json:"changed_by"`
	OldData       json.RawMessage `json:"old_data,omitempty"`
	NewData       json.RawMessage `json:"new_data,omitempty"`
	ChangeSummary string          `json:"change_summary,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewAuditLogResponse desde la entidad.
func NewAuditLogResponse(e *entity.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:            e.ID,
		EntityType:    e.EntityType,
		EntityID:      e.EntityID,
		Action:        string(e.Action),
		ChangedBy:     e.ChangedBy,
		OldData:       e.OldData,
		NewData:       e.NewData,
		ChangeSummary: e.ChangeSummary,
		CreatedAt:     e.CreatedAt,
	}
}
