package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Facturas-api/internal/domain"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
	"github.com/jhoicas/Facturas-api/pkg/logger"
)

// HistoryService guarda y consulta snapshots de facturas.
type HistoryService struct {
	repo repository.InvoiceHistoryRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewHistoryService construye el servicio.
func NewHistoryService(repo repository.InvoiceHistoryRepository, log *logger.Logger) *HistoryService {
	return &HistoryService{repo: repo, log: log.Named("history"), now: time.Now}
}

// Snapshot guarda el estado completo de inv (cabecera, ítems y envíos) bajo inv.Version.
func (s *HistoryService) Snapshot(ctx context.Context, inv *entity.Invoice, actor string) RecordResult {
	data, err := json.Marshal(inv)
	if err != nil {
		return s.fail(inv, actor, fmt.Errorf("%w: serializar snapshot: %v", domain.ErrPersistence, err))
	}
	snap := &entity.InvoiceSnapshot{
		InvoiceID:     inv.ID,
		Version:       inv.Version,
		FiscalFolio:   inv.FiscalFolio,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceData:   data,
		CreatedBy:     actor,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, snap); err != nil {
		return s.fail(inv, actor, fmt.Errorf("%w: %v", domain.ErrPersistence, err))
	}
	return RecordResult{ID: snap.ID}
}

func (s *HistoryService) fail(inv *entity.Invoice, actor string, err error) RecordResult {
	s.log.Warn().Err(err).
		Str("invoice_id", inv.ID).
		Int("version", inv.Version).
		Str("actor", actor).
		Msg("no se pudo guardar el snapshot de la factura")
	return RecordResult{Err: err}
}

// GetHistory snapshots de la factura, versión descendente (vacío si no hay).
func (s *HistoryService) GetHistory(ctx context.Context, invoiceID string) ([]*entity.InvoiceSnapshot, error) {
	return s.repo.ListByInvoiceID(ctx, invoiceID)
}

// GetVersion snapshot exacto; ErrNotFound si no existe.
func (s *HistoryService) GetVersion(ctx context.Context, invoiceID string, version int) (*entity.InvoiceSnapshot, error) {
	if version < 1 {
		return nil, fmt.Errorf("%w: versión %d", domain.ErrInvalidInput, version)
	}
	snap, err := s.repo.GetByVersion(ctx, invoiceID, version)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot %s v%d", domain.ErrNotFound, invoiceID, version)
	}
	return snap, nil
}

// GetLatest snapshot más reciente; ErrNotFound si la factura no tiene historial.
func (s *HistoryService) GetLatest(ctx context.Context, invoiceID string) (*entity.InvoiceSnapshot, error) {
	snap, err := s.repo.GetLatest(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: historial de %s", domain.ErrNotFound, invoiceID)
	}
	return snap, nil
}

// Count número de snapshots de la factura.
func (s *HistoryService) Count(ctx context.Context, invoiceID string) (int64, error) {
	return s.repo.CountByInvoiceID(ctx, invoiceID)
}
