package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturas-api/internal/domain"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/lifecycle"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, invoice_number, fiscal_folio, client_name, client_nit, client_address, client_email,
	payment_method, observations, currency, invoice_date, due_date, subtotal, tax_amount, total_amount,
	status, version, created_by, created_at, updated_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.InvoiceNumber, nullIfEmpty(invoice.FiscalFolio), invoice.ClientName,
		nullIfEmpty(invoice.ClientNIT), nullIfEmpty(invoice.ClientAddress), nullIfEmpty(invoice.ClientEmail),
		nullIfEmpty(invoice.PaymentMethod), nullIfEmpty(invoice.Observations), invoice.Currency,
		invoice.InvoiceDate, nullIfZeroTime(invoice.DueDate), invoice.Subtotal, invoice.TaxAmount, invoice.TotalAmount,
		string(invoice.Status), invoice.Version, invoice.CreatedBy, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la factura.
func (r *InvoiceRepo) CreateItem(ctx context.Context, item *entity.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_items (id, invoice_id, shipment_id, position, description, quantity, unit_price, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.InvoiceID, nullIfEmpty(item.ShipmentID), item.Position, item.Description,
		item.Quantity, item.UnitPrice, item.TotalPrice, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// CreateShipmentLink vincula un envío; la restricción única sobre shipment_id se traduce a ErrConflictingLink.
func (r *InvoiceRepo) CreateShipmentLink(ctx context.Context, link *entity.InvoiceShipment) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_shipments (id, invoice_id, shipment_id, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, link.ID, link.InvoiceID, link.ShipmentID, link.CreatedAt)
	if err != nil {
		if mapped := mapLinkError(err); mapped != err {
			return fmt.Errorf("insert invoice shipment %s: %w", link.ShipmentID, mapped)
		}
		return fmt.Errorf("insert invoice shipment: %w", err)
	}
	return nil
}

// mapLinkError traduce la violación de unicidad del vínculo de envío al error de dominio.
func mapLinkError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) && isConstraint(err, constraintShipmentLinkUnique) {
		return domain.ErrConflictingLink
	}
	return err
}

// GetByID obtiene la cabecera; retorna nil, nil si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE) hasta el fin de la transacción.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *InvoiceRepo) getOne(ctx context.Context, query, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var folio, nit, address, email, payment, observations *string
	var dueDate *time.Time
	var status string
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &folio, &inv.ClientName, &nit, &address, &email,
		&payment, &observations, &inv.Currency, &inv.InvoiceDate, &dueDate,
		&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount,
		&status, &inv.Version, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.FiscalFolio = derefStr(folio)
	inv.ClientNIT = derefStr(nit)
	inv.ClientAddress = derefStr(address)
	inv.ClientEmail = derefStr(email)
	inv.PaymentMethod = derefStr(payment)
	inv.Observations = derefStr(observations)
	inv.DueDate = derefTime(dueDate)
	inv.Status = entity.InvoiceStatus(status)
	return &inv, nil
}

// GetItemsByInvoiceID devuelve las líneas en orden de posición.
func (r *InvoiceRepo) GetItemsByInvoiceID(ctx context.Context, invoiceID string) ([]entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, shipment_id, position, description, quantity, unit_price, total_price, created_at
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position ASC`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()

	items := make([]entity.InvoiceItem, 0)
	for rows.Next() {
		var it entity.InvoiceItem
		var shipmentID *string
		if err := rows.Scan(&it.ID, &it.InvoiceID, &shipmentID, &it.Position, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		it.ShipmentID = derefStr(shipmentID)
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetShipmentsByInvoiceID devuelve los envíos vinculados en orden de inserción.
func (r *InvoiceRepo) GetShipmentsByInvoiceID(ctx context.Context, invoiceID string) ([]entity.InvoiceShipment, error) {
	query := `
		SELECT id, invoice_id, shipment_id, created_at
		FROM invoice_shipments WHERE invoice_id = $1 ORDER BY created_at ASC, shipment_id ASC`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice shipments: %w", err)
	}
	defer rows.Close()

	links := make([]entity.InvoiceShipment, 0)
	for rows.Next() {
		var l entity.InvoiceShipment
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ShipmentID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice shipment: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ListByStatus lista cabeceras por estado, más recientes primero.
func (r *InvoiceRepo) ListByStatus(ctx context.Context, status entity.InvoiceStatus) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE status = $1 ORDER BY created_at DESC, id ASC`
	rows, err := r.q.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list invoices by status: %w", err)
	}
	return collectInvoices(rows)
}

// ListAll lista todas las cabeceras, más recientes primero.
func (r *InvoiceRepo) ListAll(ctx context.Context) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC, id ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return collectInvoices(rows)
}

func collectInvoices(rows pgx.Rows) ([]*entity.Invoice, error) {
	defer rows.Close()

	list := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// DeleteItemsByInvoiceID elimina todas las líneas de la factura.
func (r *InvoiceRepo) DeleteItemsByInvoiceID(ctx context.Context, invoiceID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return nil
}

// DeleteShipmentsByInvoiceID libera todos los envíos vinculados a la factura.
func (r *InvoiceRepo) DeleteShipmentsByInvoiceID(ctx context.Context, invoiceID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_shipments WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice shipments: %w", err)
	}
	return nil
}

// FindShipmentOwner devuelve el ID de la factura que tiene el envío, o "" si está libre.
func (r *InvoiceRepo) FindShipmentOwner(ctx context.Context, shipmentID string) (string, error) {
	var owner string
	err := r.q.QueryRow(ctx, `SELECT invoice_id FROM invoice_shipments WHERE shipment_id = $1`, shipmentID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find shipment owner: %w", err)
	}
	return owner, nil
}

// UpdateWithVersion escribe la cabecera avanzando la versión solo si sigue siendo expectedVersion.
func (r *InvoiceRepo) UpdateWithVersion(ctx context.Context, invoice *entity.Invoice, expectedVersion int) error {
	query := `
		UPDATE invoices
		SET fiscal_folio   = $3,
		    client_name    = $4,
		    client_nit     = $5,
		    client_address = $6,
		    client_email   = $7,
		    payment_method = $8,
		    observations   = $9,
		    currency       = $10,
		    invoice_date   = $11,
		    due_date       = $12,
		    subtotal       = $13,
		    tax_amount     = $14,
		    total_amount   = $15,
		    status         = $16,
		    updated_at     = $17,
		    version        = $18
		WHERE id = $1 AND version = $2`
	next := lifecycle.NextVersion(expectedVersion)
	tag, err := r.q.Exec(ctx, query,
		invoice.ID, expectedVersion, nullIfEmpty(invoice.FiscalFolio), invoice.ClientName,
		nullIfEmpty(invoice.ClientNIT), nullIfEmpty(invoice.ClientAddress), nullIfEmpty(invoice.ClientEmail),
		nullIfEmpty(invoice.PaymentMethod), nullIfEmpty(invoice.Observations), invoice.Currency,
		invoice.InvoiceDate, nullIfZeroTime(invoice.DueDate), invoice.Subtotal, invoice.TaxAmount,
		invoice.TotalAmount, string(invoice.Status), invoice.UpdatedAt, next,
	)
	if err != nil {
		if isUniqueViolation(err) && isConstraint(err, constraintFiscalFolioUnique) {
			return fmt.Errorf("fiscal folio already exists: %w", err)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: factura %s versión %d", domain.ErrVersionConflict, invoice.ID, expectedVersion)
	}
	invoice.Version = next
	return nil
}
