// Package memory implementa los puertos de persistencia en proceso, con la misma semántica
// transaccional que PostgreSQL: las escrituras de una transacción se aplican solo al confirmar.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Facturas-api/internal/application/billing"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

var _ billing.InvoiceTxRunner = (*Store)(nil)

// Store almacén en memoria. Las transacciones se serializan con txMu y trabajan sobre una copia
// del libro de facturas; mu protege los datos publicados.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	ledger    *ledger
	shipments map[string]struct{}
	history   map[string][]*entity.InvoiceSnapshot
	audit     []*entity.AuditLog
}

// ledger datos transaccionales: cabeceras, líneas y vínculos de envío.
type ledger struct {
	invoices map[string]*entity.Invoice
	items    map[string][]entity.InvoiceItem
	links    map[string]entity.InvoiceShipment // clave: shipment_id
}

func newLedger() *ledger {
	return &ledger{
		invoices: make(map[string]*entity.Invoice),
		items:    make(map[string][]entity.InvoiceItem),
		links:    make(map[string]entity.InvoiceShipment),
	}
}

func (l *ledger) clone() *ledger {
	c := newLedger()
	for id, inv := range l.invoices {
		c.invoices[id] = inv.Clone()
	}
	for id, items := range l.items {
		c.items[id] = append([]entity.InvoiceItem(nil), items...)
	}
	for id, link := range l.links {
		c.links[id] = link
	}
	return c
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		ledger:    newLedger(),
		shipments: make(map[string]struct{}),
		history:   make(map[string][]*entity.InvoiceSnapshot),
	}
}

// RegisterShipment da de alta envíos en el catálogo (lo gestiona un servicio externo en producción).
func (s *Store) RegisterShipment(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.shipments[id] = struct{}{}
	}
}

// RunInvoice ejecuta fn sobre una copia privada del libro y la publica solo si fn no falla.
func (s *Store) RunInvoice(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	shipmentRepo repository.ShipmentRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	staged := s.ledger.clone()
	s.mu.RUnlock()

	if err := fn(&InvoiceRepo{store: s, tx: staged}, &ShipmentRepo{store: s}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.ledger = staged
	s.mu.Unlock()
	return nil
}

// ReadInvoice ejecuta fn sobre el libro publicado manteniendo el bloqueo de lectura,
// de modo que cabecera, líneas y vínculos corresponden al mismo commit.
func (s *Store) ReadInvoice(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&InvoiceRepo{store: s, tx: s.ledger, readOnly: true})
}

// Invoices repositorio fuera de transacción (lecturas y escrituras directas).
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{store: s} }

// Shipments repositorio del catálogo de envíos.
func (s *Store) Shipments() *ShipmentRepo { return &ShipmentRepo{store: s} }

// History repositorio de snapshots.
func (s *Store) History() *InvoiceHistoryRepo { return &InvoiceHistoryRepo{store: s} }

// AuditLogs repositorio de auditoría.
func (s *Store) AuditLogs() *AuditLogRepo { return &AuditLogRepo{store: s} }
