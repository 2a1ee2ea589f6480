package memory

import (
	"context"

	"github.com/jhoicas/Facturas-api/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo catálogo de envíos registrado con Store.RegisterShipment.
type ShipmentRepo struct {
	store *Store
}

// Exists indica si el envío fue registrado.
func (r *ShipmentRepo) Exists(_ context.Context, shipmentID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.shipments[shipmentID]
	return ok, nil
}
