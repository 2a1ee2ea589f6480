package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo auditoría en memoria, solo inserción.
type AuditLogRepo struct {
	store *Store
}

// Create agrega el evento al final del registro.
func (r *AuditLogRepo) Create(_ context.Context, event *entity.AuditLog) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	c := *event
	r.store.mu.Lock()
	r.store.audit = append(r.store.audit, &c)
	r.store.mu.Unlock()
	return nil
}

func (r *AuditLogRepo) ListByEntity(_ context.Context, entityType, entityID string) ([]*entity.AuditLog, error) {
	return r.filter(func(e *entity.AuditLog) bool {
		return e.EntityType == entityType && e.EntityID == entityID
	}), nil
}

func (r *AuditLogRepo) ListByAction(_ context.Context, action entity.AuditAction) ([]*entity.AuditLog, error) {
	return r.filter(func(e *entity.AuditLog) bool { return e.Action == action }), nil
}

func (r *AuditLogRepo) ListByActor(_ context.Context, actor string) ([]*entity.AuditLog, error) {
	return r.filter(func(e *entity.AuditLog) bool { return e.ChangedBy == actor }), nil
}

// ListByDateRange incluye ambos extremos.
func (r *AuditLogRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]*entity.AuditLog, error) {
	return r.filter(func(e *entity.AuditLog) bool {
		return !e.CreatedAt.Before(from) && !e.CreatedAt.After(to)
	}), nil
}

// filter devuelve copias de los eventos que cumplen match, más recientes primero
// (a igual instante, el último insertado va primero).
func (r *AuditLogRepo) filter(match func(e *entity.AuditLog) bool) []*entity.AuditLog {
	r.store.mu.RLock()
	list := make([]*entity.AuditLog, 0)
	for i := len(r.store.audit) - 1; i >= 0; i-- {
		if e := r.store.audit[i]; match(e) {
			c := *e
			list = append(list, &c)
		}
	}
	r.store.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}
