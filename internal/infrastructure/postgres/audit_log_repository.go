package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo persistencia de auditoría sobre audit_logs (solo inserción).
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

const auditColumns = `id, entity_type, entity_id, action, changed_by, old_data, new_data, change_summary, created_at`

// Create inserta el evento.
func (r *AuditLogRepo) Create(ctx context.Context, e *entity.AuditLog) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `INSERT INTO audit_logs (` + auditColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.EntityType, e.EntityID, string(e.Action), e.ChangedBy,
		nullJSON(e.OldData), nullJSON(e.NewData), nullIfEmpty(e.ChangeSummary), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListByEntity eventos de una entidad, más recientes primero.
func (r *AuditLogRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditLog, error) {
	return r.list(ctx, `WHERE entity_type = $1 AND entity_id = $2`, entityType, entityID)
}

// ListByAction eventos con la acción dada.
func (r *AuditLogRepo) ListByAction(ctx context.Context, action entity.AuditAction) ([]*entity.AuditLog, error) {
	return r.list(ctx, `WHERE action = $1`, string(action))
}

// ListByActor eventos registrados por un usuario.
func (r *AuditLogRepo) ListByActor(ctx context.Context, actor string) ([]*entity.AuditLog, error) {
	return r.list(ctx, `WHERE changed_by = $1`, actor)
}

// ListByDateRange eventos con created_at en [from, to].
func (r *AuditLogRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]*entity.AuditLog, error) {
	return r.list(ctx, `WHERE created_at BETWEEN $1 AND $2`, from, to)
}

func (r *AuditLogRepo) list(ctx context.Context, where string, args ...any) ([]*entity.AuditLog, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs ` + where + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.AuditLog, 0)
	for rows.Next() {
		e, err := scanAuditLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanAuditLog(row pgx.Row) (*entity.AuditLog, error) {
	var e entity.AuditLog
	var action string
	var summary *string
	var oldData, newData []byte
	if err := row.Scan(&e.ID, &e.EntityType, &e.EntityID, &action, &e.ChangedBy,
		&oldData, &newData, &summary, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Action = entity.AuditAction(action)
	e.OldData = oldData
	e.NewData = newData
	e.ChangeSummary = derefStr(summary)
	return &e, nil
}
