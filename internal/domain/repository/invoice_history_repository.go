package repository

import (
	"context"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// InvoiceHistoryRepository almacén de snapshots (solo inserción).
type InvoiceHistoryRepository interface {
	Create(ctx context.Context, snapshot *entity.InvoiceSnapshot) error
	// ListByInvoiceID ordenado por versión descendente.
	ListByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceSnapshot, error)
	// GetByVersion devuelve nil si no existe.
	GetByVersion(ctx context.Context, invoiceID string, version int) (*entity.InvoiceSnapshot, error)
	// GetLatest devuelve nil si no hay historial.
	GetLatest(ctx context.Context, invoiceID string) (*entity.InvoiceSnapshot, error)
	CountByInvoiceID(ctx context.Context, invoiceID string) (int64, error)
}
