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

// Entry evento a registrar. Old y New se serializan a JSON si no son nil.
type Entry struct {
	EntityType string
	EntityID   string
	Action     entity.AuditAction
	Actor      string
	Old        any
	New        any
	Summary    string
}

// TrailService registro de auditoría solo inserción.
type TrailService struct {
	repo repository.AuditLogRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewTrailService construye el servicio.
func NewTrailService(repo repository.AuditLogRepository, log *logger.Logger) *TrailService {
	return &TrailService{repo: repo, log: log.Named("audit"), now: time.Now}
}

// Record agrega un evento. Los fallos se registran en el log y se devuelven en el resultado.
func (s *TrailService) Record(ctx context.Context, e Entry) RecordResult {
	if !e.Action.Valid() {
		return s.fail(e, fmt.Errorf("%w: acción de auditoría %q", domain.ErrPersistence, e.Action))
	}
	oldData, err := marshalOptional(e.Old)
	if err != nil {
		return s.fail(e, fmt.Errorf("%w: serializar estado anterior: %v", domain.ErrPersistence, err))
	}
	newData, err := marshalOptional(e.New)
	if err != nil {
		return s.fail(e, fmt.Errorf("%w: serializar estado nuevo: %v", domain.ErrPersistence, err))
	}
	event := &entity.AuditLog{
		EntityType:    e.EntityType,
		EntityID:      e.EntityID,
		Action:        e.Action,
		ChangedBy:     e.Actor,
		OldData:       oldData,
		NewData:       newData,
		ChangeSummary: e.Summary,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return s.fail(e, fmt.Errorf("%w: %v", domain.ErrPersistence, err))
	}
	return RecordResult{ID: event.ID}
}

func (s *TrailService) fail(e Entry, err error) RecordResult {
	s.log.Warn().Err(err).
		Str("entity_type", e.EntityType).
		Str("entity_id", e.EntityID).
		Str("action", string(e.Action)).
		Str("actor", e.Actor).
		Msg("no se pudo registrar el evento de auditoría")
	return RecordResult{Err: err}
}

func marshalOptional(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// ByEntity eventos de una entidad, más recientes primero.
func (s *TrailService) ByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditLog, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID)
}

// ByAction eventos con la acción dada.
func (s *TrailService) ByAction(ctx context.Context, action entity.AuditAction) ([]*entity.AuditLog, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: acción %q", domain.ErrInvalidInput, action)
	}
	return s.repo.ListByAction(ctx, action)
}

// ByActor eventos de un usuario.
func (s *TrailService) ByActor(ctx context.Context, actor string) ([]*entity.AuditLog, error) {
	if actor == "" {
		return nil, fmt.Errorf("%w: actor requerido", domain.ErrInvalidInput)
	}
	return s.repo.ListByActor(ctx, actor)
}

// ByDateRange eventos en [from, to].
func (s *TrailService) ByDateRange(ctx context.Context, from, to time.Time) ([]*entity.AuditLog, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	return s.repo.ListByDateRange(ctx, from, to)
}
