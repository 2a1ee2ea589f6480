package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

var _ repository.InvoiceHistoryRepository = (*InvoiceHistoryRepo)(nil)

// InvoiceHistoryRepo almacén de snapshots sobre la tabla invoice_history (solo inserción).
type InvoiceHistoryRepo struct {
	q Querier
}

// NewInvoiceHistoryRepository construye el adaptador.
func NewInvoiceHistoryRepository(q Querier) *InvoiceHistoryRepo {
	return &InvoiceHistoryRepo{q: q}
}

const historyColumns = `id, invoice_id, version, fiscal_folio, invoice_number, invoice_data, created_by, created_at, is_reverted`

// Create inserta un snapshot; (invoice_id, version) es único.
func (r *InvoiceHistoryRepo) Create(ctx context.Context, s *entity.InvoiceSnapshot) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query := `INSERT INTO invoice_history (` + historyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.InvoiceID, s.Version, nullIfEmpty(s.FiscalFolio), s.InvoiceNumber,
		nullJSON(s.InvoiceData), s.CreatedBy, s.CreatedAt, s.SupersededByRevert,
	)
	if err != nil {
		if isUniqueViolation(err) && isConstraint(err, constraintHistoryVersion) {
			return fmt.Errorf("snapshot %s v%d already exists: %w", s.InvoiceID, s.Version, err)
		}
		return fmt.Errorf("insert invoice snapshot: %w", err)
	}
	return nil
}

// ListByInvoiceID devuelve los snapshots de la factura, versión descendente.
func (r *InvoiceHistoryRepo) ListByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceSnapshot, error) {
	query := `SELECT ` + historyColumns + ` FROM invoice_history WHERE invoice_id = $1 ORDER BY version DESC`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice history: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.InvoiceSnapshot, 0)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice snapshot: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByVersion retorna nil, nil si la versión no existe.
func (r *InvoiceHistoryRepo) GetByVersion(ctx context.Context, invoiceID string, version int) (*entity.InvoiceSnapshot, error) {
	query := `SELECT ` + historyColumns + ` FROM invoice_history WHERE invoice_id = $1 AND version = $2`
	return r.getOne(ctx, query, invoiceID, version)
}

// GetLatest retorna el snapshot de mayor versión o nil.
func (r *InvoiceHistoryRepo) GetLatest(ctx context.Context, invoiceID string) (*entity.InvoiceSnapshot, error) {
	query := `SELECT ` + historyColumns + ` FROM invoice_history WHERE invoice_id = $1 ORDER BY version DESC LIMIT 1`
	return r.getOne(ctx, query, invoiceID)
}

func (r *InvoiceHistoryRepo) getOne(ctx context.Context, query string, args ...any) (*entity.InvoiceSnapshot, error) {
	s, err := scanSnapshot(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice snapshot: %w", err)
	}
	return s, nil
}

// CountByInvoiceID número de snapshots de la factura.
func (r *InvoiceHistoryRepo) CountByInvoiceID(ctx context.Context, invoiceID string) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoice_history WHERE invoice_id = $1`, invoiceID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoice history: %w", err)
	}
	return n, nil
}

func scanSnapshot(row pgx.Row) (*entity.InvoiceSnapshot, error) {
	var s entity.InvoiceSnapshot
	var folio *string
	var data []byte
	if err := row.Scan(&s.ID, &s.InvoiceID, &s.Version, &folio, &s.InvoiceNumber,
		&data, &s.CreatedBy, &s.CreatedAt, &s.SupersededByRevert); err != nil {
		return nil, err
	}
	s.FiscalFolio = derefStr(folio)
	s.InvoiceData = data
	return &s, nil
}
