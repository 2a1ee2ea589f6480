package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturas-api/internal/domain"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/lifecycle"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo opera sobre la copia de una transacción (tx != nil) o sobre los datos publicados.
type InvoiceRepo struct {
	store    *Store
	tx       *ledger
	readOnly bool
}

var errReadOnly = errors.New("write in read-only transaction")

func (r *InvoiceRepo) read(fn func(l *ledger)) {
	if r.tx != nil {
		fn(r.tx)
		return
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	fn(r.store.ledger)
}

func (r *InvoiceRepo) write(fn func(l *ledger) error) error {
	if r.readOnly {
		return errReadOnly
	}
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.ledger)
}

// Create inserta la cabecera; número y folio son únicos.
func (r *InvoiceRepo) Create(_ context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	return r.write(func(l *ledger) error {
		if _, exists := l.invoices[invoice.ID]; exists {
			return fmt.Errorf("insert invoice: id %s already exists", invoice.ID)
		}
		for _, other := range l.invoices {
			if other.InvoiceNumber == invoice.InvoiceNumber {
				return fmt.Errorf("invoice number already exists: %s", invoice.InvoiceNumber)
			}
			if invoice.FiscalFolio != "" && other.FiscalFolio == invoice.FiscalFolio {
				return fmt.Errorf("fiscal folio already exists: %s", invoice.FiscalFolio)
			}
		}
		header := invoice.Clone()
		header.Items, header.Shipments = nil, nil
		l.invoices[invoice.ID] = header
		return nil
	})
}

// CreateItem agrega una línea a una factura existente.
func (r *InvoiceRepo) CreateItem(_ context.Context, item *entity.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return r.write(func(l *ledger) error {
		if _, ok := l.invoices[item.InvoiceID]; !ok {
			return fmt.Errorf("insert invoice item: invoice %s not found", item.InvoiceID)
		}
		l.items[item.InvoiceID] = append(l.items[item.InvoiceID], *item)
		return nil
	})
}

// CreateShipmentLink vincula el envío; un envío ya vinculado devuelve ErrConflictingLink.
func (r *InvoiceRepo) CreateShipmentLink(_ context.Context, link *entity.InvoiceShipment) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	return r.write(func(l *ledger) error {
		if _, ok := l.invoices[link.InvoiceID]; !ok {
			return fmt.Errorf("insert invoice shipment: invoice %s not found", link.InvoiceID)
		}
		if owner, taken := l.links[link.ShipmentID]; taken {
			return fmt.Errorf("insert invoice shipment %s (factura %s): %w", link.ShipmentID, owner.InvoiceID, domain.ErrConflictingLink)
		}
		l.links[link.ShipmentID] = *link
		return nil
	})
}

// GetByID devuelve una copia de la cabecera o nil.
func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	var inv *entity.Invoice
	r.read(func(l *ledger) {
		inv = l.invoices[id].Clone()
	})
	return inv, nil
}

// GetForUpdate equivale a GetByID: la transacción ya tiene acceso exclusivo.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

// GetItemsByInvoiceID líneas ordenadas por posición.
func (r *InvoiceRepo) GetItemsByInvoiceID(_ context.Context, invoiceID string) ([]entity.InvoiceItem, error) {
	items := make([]entity.InvoiceItem, 0)
	r.read(func(l *ledger) {
		items = append(items, l.items[invoiceID]...)
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

// GetShipmentsByInvoiceID vínculos de la factura en orden de creación.
func (r *InvoiceRepo) GetShipmentsByInvoiceID(_ context.Context, invoiceID string) ([]entity.InvoiceShipment, error) {
	links := make([]entity.InvoiceShipment, 0)
	r.read(func(l *ledger) {
		for _, link := range l.links {
			if link.InvoiceID == invoiceID {
				links = append(links, link)
			}
		}
	})
	sort.Slice(links, func(i, j int) bool {
		if links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].ShipmentID < links[j].ShipmentID
		}
		return links[i].CreatedAt.Before(links[j].CreatedAt)
	})
	return links, nil
}

// ListByStatus cabeceras con el estado dado, más recientes primero.
func (r *InvoiceRepo) ListByStatus(_ context.Context, status entity.InvoiceStatus) ([]*entity.Invoice, error) {
	return r.list(func(inv *entity.Invoice) bool { return inv.Status == status }), nil
}

// ListAll todas las cabeceras, más recientes primero.
func (r *InvoiceRepo) ListAll(_ context.Context) ([]*entity.Invoice, error) {
	return r.list(func(*entity.Invoice) bool { return true }), nil
}

func (r *InvoiceRepo) list(match func(inv *entity.Invoice) bool) []*entity.Invoice {
	list := make([]*entity.Invoice, 0)
	r.read(func(l *ledger) {
		for _, inv := range l.invoices {
			if match(inv) {
				list = append(list, inv.Clone())
			}
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// DeleteItemsByInvoiceID elimina las líneas de la factura.
func (r *InvoiceRepo) DeleteItemsByInvoiceID(_ context.Context, invoiceID string) error {
	return r.write(func(l *ledger) error {
		delete(l.items, invoiceID)
		return nil
	})
}

// DeleteShipmentsByInvoiceID libera los envíos de la factura.
func (r *InvoiceRepo) DeleteShipmentsByInvoiceID(_ context.Context, invoiceID string) error {
	return r.write(func(l *ledger) error {
		for shipmentID, link := range l.links {
			if link.InvoiceID == invoiceID {
				delete(l.links, shipmentID)
			}
		}
		return nil
	})
}

// FindShipmentOwner ID de la factura dueña del envío, o "".
func (r *InvoiceRepo) FindShipmentOwner(_ context.Context, shipmentID string) (string, error) {
	var owner string
	r.read(func(l *ledger) {
		if link, ok := l.links[shipmentID]; ok {
			owner = link.InvoiceID
		}
	})
	return owner, nil
}

// UpdateWithVersion reemplaza la cabecera si la versión almacenada es expectedVersion.
func (r *InvoiceRepo) UpdateWithVersion(_ context.Context, invoice *entity.Invoice, expectedVersion int) error {
	return r.write(func(l *ledger) error {
		current, ok := l.invoices[invoice.ID]
		if !ok || current.Version != expectedVersion {
			return fmt.Errorf("%w: factura %s versión %d", domain.ErrVersionConflict, invoice.ID, expectedVersion)
		}
		if invoice.FiscalFolio != "" {
			for id, other := range l.invoices {
				if id != invoice.ID && other.FiscalFolio == invoice.FiscalFolio {
					return fmt.Errorf("fiscal folio already exists: %s", invoice.FiscalFolio)
				}
			}
		}
		header := invoice.Clone()
		header.Items, header.Shipments = nil, nil
		header.Version = lifecycle.NextVersion(expectedVersion)
		header.InvoiceNumber = current.InvoiceNumber
		header.CreatedAt = current.CreatedAt
		header.CreatedBy = current.CreatedBy
		l.invoices[invoice.ID] = header
		invoice.Version = header.Version
		return nil
	})
}
