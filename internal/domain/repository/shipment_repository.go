package repository

import "context"

// ShipmentRepository consulta de solo lectura sobre el catálogo de envíos (gestionado fuera del núcleo).
type ShipmentRepository interface {
	Exists(ctx context.Context, shipmentID string) (bool, error)
}
