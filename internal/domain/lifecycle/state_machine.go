// Package lifecycle concentra las reglas del ciclo de vida de la factura:
// tabla de transiciones, guardas, control de versión y cálculo de totales.
// Todas las funciones son puras; la persistencia vive en la capa de aplicación.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturas-api/internal/domain"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// Action acción que intenta mover una factura dentro del ciclo de vida.
type Action string

// Acciones del ciclo de vida. Pay, Cancel y Revert están declaradas sin transiciones.
const (
	ActionEdit   Action = "edit"
	ActionIssue  Action = "issue"
	ActionPay    Action = "pay"
	ActionCancel Action = "cancel"
	ActionRevert Action = "revert"
)

// transitions es la única fuente de verdad sobre qué (estado, acción) son legales.
var transitions = map[entity.InvoiceStatus]map[Action]entity.InvoiceStatus{
	entity.InvoiceStatusDraft: {
		ActionEdit:  entity.InvoiceStatusDraft,
		ActionIssue: entity.InvoiceStatusIssued,
	},
	entity.InvoiceStatusIssued:    {},
	entity.InvoiceStatusPaid:      {},
	entity.InvoiceStatusCancelled: {},
}

// Initial estado de toda factura recién creada.
func Initial() entity.InvoiceStatus {
	return entity.InvoiceStatusDraft
}

// Next devuelve el estado destino de aplicar action sobre from, o ErrInvalidTransition.
func Next(from entity.InvoiceStatus, action Action) (entity.InvoiceStatus, error) {
	to, ok := transitions[from][action]
	if !ok {
		return "", fmt.Errorf("%w: %s desde %s", domain.ErrInvalidTransition, action, from)
	}
	return to, nil
}

// IssueGuard valida los datos mínimos para emitir: subtotal > 0, al menos un ítem y cliente informado.
func IssueGuard(inv *entity.Invoice) error {
	switch {
	case !inv.Subtotal.GreaterThan(decimal.Zero):
		return fmt.Errorf("%w: subtotal debe ser mayor que cero", domain.ErrInvalidTransition)
	case len(inv.Items) == 0:
		return fmt.Errorf("%w: la factura no tiene ítems", domain.ErrInvalidTransition)
	case strings.TrimSpace(inv.ClientName) == "":
		return fmt.Errorf("%w: cliente requerido", domain.ErrInvalidTransition)
	}
	return nil
}

// Issue valida la transición DRAFT→ISSUED con su guarda.
func Issue(inv *entity.Invoice) (entity.InvoiceStatus, error) {
	to, err := Next(inv.Status, ActionIssue)
	if err != nil {
		return "", err
	}
	if err := IssueGuard(inv); err != nil {
		return "", err
	}
	return to, nil
}
