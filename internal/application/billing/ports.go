package billing

import (
	"context"

	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

// InvoiceTxRunner ejecuta fn dentro de una transacción con repos atados a ella.
// Si fn devuelve error, ninguna escritura hecha a través de los repos persiste.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		shipmentRepo repository.ShipmentRepository,
	) error) error
	// ReadInvoice ejecuta fn sobre una vista consistente de solo lectura: ningún commit
	// concurrente es visible a mitad de fn.
	ReadInvoice(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error
}

// EventPublisher publica eventos de dominio tras un commit (best-effort).
type EventPublisher interface {
	Publish(ctx context.Context, key string, value any) error
}
