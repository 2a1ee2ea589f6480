package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// AuditLogRepository almacén de eventos de auditoría. Todas las consultas devuelven los más recientes primero.
type AuditLogRepository interface {
	Create(ctx context.Context, event *entity.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditLog, error)
	ListByAction(ctx context.Context, action entity.AuditAction) ([]*entity.AuditLog, error)
	ListByActor(ctx context.Context, actor string) ([]*entity.AuditLog, error)
	// ListByDateRange incluye ambos extremos.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*entity.AuditLog, error)
}
