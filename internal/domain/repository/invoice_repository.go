package repository

import (
	"context"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para la factura y su composición.
// Las implementaciones deben poder atarse a una transacción (ver InvoiceTxRunner).
type InvoiceRepository interface {
	// Create inserta la cabecera (sin ítems ni envíos).
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateItem(ctx context.Context, item *entity.InvoiceItem) error
	// CreateShipmentLink inserta el vínculo; si el envío ya pertenece a otra factura
	// devuelve domain.ErrConflictingLink (restricción única del almacén).
	CreateShipmentLink(ctx context.Context, link *entity.InvoiceShipment) error

	// GetByID devuelve la cabecera o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	GetItemsByInvoiceID(ctx context.Context, invoiceID string) ([]entity.InvoiceItem, error)
	GetShipmentsByInvoiceID(ctx context.Context, invoiceID string) ([]entity.InvoiceShipment, error)
	// ListByStatus cabeceras con el estado dado, más recientes primero.
	ListByStatus(ctx context.Context, status entity.InvoiceStatus) ([]*entity.Invoice, error)
	// ListAll todas las cabeceras, más recientes primero.
	ListAll(ctx context.Context) ([]*entity.Invoice, error)

	DeleteItemsByInvoiceID(ctx context.Context, invoiceID string) error
	DeleteShipmentsByInvoiceID(ctx context.Context, invoiceID string) error
	// FindShipmentOwner devuelve el ID de la factura que tiene vinculado el envío, o "".
	FindShipmentOwner(ctx context.Context, shipmentID string) (string, error)

	// UpdateWithVersion escribe la cabecera con invoice.Version = expectedVersion+1
	// solo si la versión almacenada sigue siendo expectedVersion; si no, domain.ErrVersionConflict.
	UpdateWithVersion(ctx context.Context, invoice *entity.Invoice, expectedVersion int) error
}
