package entity

import (
	"encoding/json"
	"time"
)

// AuditAction acción registrada en la auditoría.
type AuditAction string

// Acciones de auditoría. DELETE, REVERT y PUBLISH están declaradas pero ningún flujo las emite.
const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionUpdate  AuditAction = "UPDATE"
	AuditActionDelete  AuditAction = "DELETE"
	AuditActionIssue   AuditAction = "ISSUE"
	AuditActionRevert  AuditAction = "REVERT"
	AuditActionPublish AuditAction = "PUBLISH"
)

// Valid indica si a es una acción conocida.
func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete,
		AuditActionIssue, AuditActionRevert, AuditActionPublish:
		return true
	}
	return false
}

// EntityTypeInvoice tipo de entidad usado en la auditoría de facturas.
const EntityTypeInvoice = "Invoice"

// AuditLog evento de auditoría (solo inserción; nunca se modifica ni se borra).
type AuditLog struct {
	ID            string          `json:"id"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Action        AuditAction     `json:"action"`
	ChangedBy     string          `json:"changed_by"`
	OldData       json.RawMessage `json:"old_data,omitempty"`
	NewData       json.RawMessage `json:"new_data,omitempty"`
	ChangeSummary string          `json:"change_summary"`
	CreatedAt     time.Time       `json:"created_at"`
}
