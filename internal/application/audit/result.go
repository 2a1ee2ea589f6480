// Package audit agrupa los canales laterales de una mutación de factura: historial de versiones
// y registro de auditoría. Sus escrituras nunca abortan la mutación que las origina.
package audit

// RecordResult resultado de una escritura lateral. Err envuelve domain.ErrPersistence.
type RecordResult struct {
	ID  string
	Err error
}

// OK indica si el registro se persistió.
func (r RecordResult) OK() bool { return r.Err == nil }
