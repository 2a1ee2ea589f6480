package entity

import "time"

// InvoiceShipment vincula un envío externo con una factura. Un envío pertenece a lo sumo a una factura.
type InvoiceShipment struct {
	ID         string    `json:"id"`
	InvoiceID  string    `json:"invoice_id"`
	ShipmentID string    `json:"shipment_id"`
	CreatedAt  time.Time `json:"created_at"`
}
