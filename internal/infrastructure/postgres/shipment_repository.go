package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo consulta la tabla shipments (mantenida por el servicio de envíos).
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador.
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

// Exists indica si el envío está registrado.
func (r *ShipmentRepo) Exists(ctx context.Context, shipmentID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shipments WHERE id = $1)`, shipmentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check shipment: %w", err)
	}
	return exists, nil
}
