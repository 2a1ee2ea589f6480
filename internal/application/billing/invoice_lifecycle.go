package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturas-api/internal/application/audit"
	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/domain"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/internal/domain/lifecycle"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
	"github.com/jhoicas/Facturas-api/pkg/logger"
)

// EventInvoiceIssued tipo del evento publicado tras emitir una factura.
const EventInvoiceIssued = "invoice.issued"

// InvoiceIssuedEvent payload publicado tras una emisión confirmada.
type InvoiceIssuedEvent struct {
	Type          string    `json:"type"`
	InvoiceID     string    `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	FiscalFolio   string    `json:"fiscal_folio"`
	Version       int       `json:"version"`
	TotalAmount   string    `json:"total_amount"`
	Currency      string    `json:"currency"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// InvoiceLifecycleUseCase coordina creación, edición y emisión de facturas.
// Cada mutación corre en una única transacción; historial, auditoría y eventos se escriben
// después del commit y sus fallos solo se registran en el log.
type InvoiceLifecycleUseCase struct {
	txRunner    InvoiceTxRunner
	invoiceRepo repository.InvoiceRepository
	history     *audit.HistoryService
	trail       *audit.TrailService
	publisher   EventPublisher
	log         *logger.Logger
	now         func() time.Time
}

// NewInvoiceLifecycleUseCase construye el caso de uso. publisher puede ser nil.
func NewInvoiceLifecycleUseCase(
	txRunner InvoiceTxRunner,
	invoiceRepo repository.InvoiceRepository,
	history *audit.HistoryService,
	trail *audit.TrailService,
	publisher EventPublisher,
	log *logger.Logger,
) *InvoiceLifecycleUseCase {
	return &InvoiceLifecycleUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		history:     history,
		trail:       trail,
		publisher:   publisher,
		log:         log.Named("invoice_lifecycle"),
		now:         time.Now,
	}
}

// composition contenido reemplazable de una factura ya validado.
type composition struct {
	header      entity.Invoice
	items       []entity.InvoiceItem
	shipmentIDs []string
}

// CreateInvoice crea una factura DRAFT en versión 1 con sus ítems y envíos.
func (uc *InvoiceLifecycleUseCase) CreateInvoice(ctx context.Context, actor string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	comp, err := buildComposition(in, now)
	if err != nil {
		return nil, err
	}

	inv := comp.header
	inv.ID = uuid.New().String()
	inv.InvoiceNumber = lifecycle.NewInvoiceNumber(now)
	inv.Status = lifecycle.Initial()
	inv.Version = lifecycle.InitialVersion
	inv.CreatedBy = actor
	inv.CreatedAt = now
	inv.UpdatedAt = now

	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, shipmentRepo repository.ShipmentRepository) error {
		if err := checkShipmentsExist(ctx, shipmentRepo, comp); err != nil {
			return err
		}
		if err := invoiceRepo.Create(ctx, &inv); err != nil {
			return err
		}
		return writeComposition(ctx, invoiceRepo, &inv, comp, now)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("invoice_id", inv.ID).Str("invoice_number", inv.InvoiceNumber).Str("actor", actor).Msg("factura creada")
	_ = uc.trail.Record(ctx, audit.Entry{
		EntityType: entity.EntityTypeInvoice,
		EntityID:   inv.ID,
		Action:     entity.AuditActionCreate,
		Actor:      actor,
		New:        &inv,
		Summary:    "Created draft invoice",
	})
	return dto.NewInvoiceResponse(&inv), nil
}

// UpdateInvoice reemplaza cabecera, ítems y envíos de una factura DRAFT.
// in.Version es la versión leída por el llamador; nil omite el control.
func (uc *InvoiceLifecycleUseCase) UpdateInvoice(ctx context.Context, id, actor string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	var before, after *entity.Invoice

	err := uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, shipmentRepo repository.ShipmentRepository) error {
		current, err := loadForUpdate(ctx, invoiceRepo, id)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckVersion(current.Version, in.Version); err != nil {
			return err
		}
		if _, err := lifecycle.Next(current.Status, lifecycle.ActionEdit); err != nil {
			return err
		}
		comp, err := buildComposition(in, now)
		if err != nil {
			return err
		}
		if err := checkShipmentsExist(ctx, shipmentRepo, comp); err != nil {
			return err
		}

		if err := invoiceRepo.DeleteItemsByInvoiceID(ctx, id); err != nil {
			return err
		}
		if err := invoiceRepo.DeleteShipmentsByInvoiceID(ctx, id); err != nil {
			return err
		}

		next := comp.header
		next.ID = current.ID
		next.InvoiceNumber = current.InvoiceNumber
		next.FiscalFolio = current.FiscalFolio
		next.Status = current.Status
		next.Version = current.Version
		next.CreatedBy = current.CreatedBy
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = now
		if err := writeComposition(ctx, invoiceRepo, &next, comp, now); err != nil {
			return err
		}
		if err := invoiceRepo.UpdateWithVersion(ctx, &next, current.Version); err != nil {
			return err
		}
		before, after = current, &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("invoice_id", id).Int("version", after.Version).Str("actor", actor).Msg("factura actualizada")
	_ = uc.history.Snapshot(ctx, before, actor)
	_ = uc.trail.Record(ctx, audit.Entry{
		EntityType: entity.EntityTypeInvoice,
		EntityID:   id,
		Action:     entity.AuditActionUpdate,
		Actor:      actor,
		Old:        before,
		New:        after,
		Summary:    "Updated draft invoice",
	})
	return dto.NewInvoiceResponse(after), nil
}

// IssueInvoice emite la factura: DRAFT -> ISSUED, asignando el folio fiscal si aún no tiene.
func (uc *InvoiceLifecycleUseCase) IssueInvoice(ctx context.Context, id, actor string) (*dto.InvoiceResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	var before, after *entity.Invoice

	err := uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, _ repository.ShipmentRepository) error {
		current, err := loadForUpdate(ctx, invoiceRepo, id)
		if err != nil {
			return err
		}
		to, err := lifecycle.Issue(current)
		if err != nil {
			return err
		}

		next := current.Clone()
		if next.FiscalFolio == "" {
			next.FiscalFolio = lifecycle.NewFiscalFolio(now)
		}
		next.Status = to
		next.UpdatedAt = now
		if err := invoiceRepo.UpdateWithVersion(ctx, next, current.Version); err != nil {
			return err
		}
		before, after = current, next
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("invoice_id", id).Str("fiscal_folio", after.FiscalFolio).Str("actor", actor).Msg("factura emitida")
	_ = uc.history.Snapshot(ctx, before, actor)
	_ = uc.trail.Record(ctx, audit.Entry{
		EntityType: entity.EntityTypeInvoice,
		EntityID:   id,
		Action:     entity.AuditActionIssue,
		Actor:      actor,
		Old:        before,
		New:        after,
		Summary:    "Issued invoice",
	})
	uc.publishIssued(ctx, after, actor, now)
	return dto.NewInvoiceResponse(after), nil
}

func (uc *InvoiceLifecycleUseCase) publishIssued(ctx context.Context, inv *entity.Invoice, actor string, now time.Time) {
	if uc.publisher == nil {
		return
	}
	event := InvoiceIssuedEvent{
		Type:          EventInvoiceIssued,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		FiscalFolio:   inv.FiscalFolio,
		Version:       inv.Version,
		TotalAmount:   inv.TotalAmount.String(),
		Currency:      inv.Currency,
		Actor:         actor,
		OccurredAt:    now,
	}
	if err := uc.publisher.Publish(ctx, inv.ID, event); err != nil {
		uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo publicar invoice.issued")
	}
}

// GetInvoice devuelve la factura con su composición o ErrNotFound.
// Cabecera, ítems y envíos se leen en la misma vista para no mezclar versiones.
func (uc *InvoiceLifecycleUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	var inv *entity.Invoice
	err := uc.txRunner.ReadInvoice(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		var err error
		inv, err = invoiceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return fmt.Errorf("%w: factura %s", domain.ErrNotFound, id)
		}
		return loadComposition(ctx, invoiceRepo, inv)
	})
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

// ListAll cabeceras de todas las facturas, más recientes primero.
func (uc *InvoiceLifecycleUseCase) ListAll(ctx context.Context) ([]dto.InvoiceSummaryResponse, error) {
	list, err := uc.invoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toSummaries(list), nil
}

// ListByStatus cabeceras con el estado dado, más recientes primero.
func (uc *InvoiceLifecycleUseCase) ListByStatus(ctx context.Context, status entity.InvoiceStatus) ([]dto.InvoiceSummaryResponse, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	list, err := uc.invoiceRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return toSummaries(list), nil
}

func toSummaries(list []*entity.Invoice) []dto.InvoiceSummaryResponse {
	out := make([]dto.InvoiceSummaryResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, dto.NewInvoiceSummaryResponse(inv))
	}
	return out
}

func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return fmt.Errorf("%w: usuario requerido", domain.ErrInvalidInput)
	}
	return nil
}

// loadForUpdate bloquea la cabecera y carga ítems y envíos.
func loadForUpdate(ctx context.Context, invoiceRepo repository.InvoiceRepository, id string) (*entity.Invoice, error) {
	inv, err := invoiceRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, id)
	}
	if err := loadComposition(ctx, invoiceRepo, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func loadComposition(ctx context.Context, invoiceRepo repository.InvoiceRepository, inv *entity.Invoice) error {
	items, err := invoiceRepo.GetItemsByInvoiceID(ctx, inv.ID)
	if err != nil {
		return err
	}
	links, err := invoiceRepo.GetShipmentsByInvoiceID(ctx, inv.ID)
	if err != nil {
		return err
	}
	inv.Items, inv.Shipments = items, links
	return nil
}

// buildComposition valida el request y calcula totales; no toca el almacén.
func buildComposition(in dto.InvoiceRequest, now time.Time) (*composition, error) {
	if strings.TrimSpace(in.ClientName) == "" {
		return nil, fmt.Errorf("%w: nombre de cliente requerido", domain.ErrInvalidInput)
	}
	items := make([]entity.InvoiceItem, 0, len(in.Items))
	for i, it := range in.Items {
		items = append(items, entity.InvoiceItem{
			ShipmentID:  strings.TrimSpace(it.ShipmentID),
			Position:    i + 1,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	if err := lifecycle.ValidateItems(items); err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateShipmentIDs(in.ShipmentIDs); err != nil {
		return nil, err
	}
	totals, err := lifecycle.ComputeTotals(items, in.TaxAmount)
	if err != nil {
		return nil, err
	}

	invoiceDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if in.InvoiceDate != "" {
		if invoiceDate, err = time.Parse(dto.DateLayout, in.InvoiceDate); err != nil {
			return nil, fmt.Errorf("%w: invoice_date %q", domain.ErrInvalidInput, in.InvoiceDate)
		}
	}
	var dueDate time.Time
	if in.DueDate != "" {
		if dueDate, err = time.Parse(dto.DateLayout, in.DueDate); err != nil {
			return nil, fmt.Errorf("%w: due_date %q", domain.ErrInvalidInput, in.DueDate)
		}
		if dueDate.Before(invoiceDate) {
			return nil, fmt.Errorf("%w: due_date anterior a invoice_date", domain.ErrInvalidInput)
		}
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = entity.DefaultCurrency
	}

	return &composition{
		header: entity.Invoice{
			ClientName:    strings.TrimSpace(in.ClientName),
			ClientNIT:     in.ClientNIT,
			ClientAddress: in.ClientAddress,
			ClientEmail:   in.ClientEmail,
			PaymentMethod: in.PaymentMethod,
			Observations:  in.Observations,
			Currency:      currency,
			InvoiceDate:   invoiceDate,
			DueDate:       dueDate,
			Subtotal:      totals.Subtotal,
			TaxAmount:     totals.Tax,
			TotalAmount:   totals.Total,
		},
		items:       items,
		shipmentIDs: append([]string(nil), in.ShipmentIDs...),
	}, nil
}

// checkShipmentsExist verifica los envíos vinculados y los referenciados por ítems.
func checkShipmentsExist(ctx context.Context, shipmentRepo repository.ShipmentRepository, comp *composition) error {
	refs := append([]string(nil), comp.shipmentIDs...)
	for _, it := range comp.items {
		if it.ShipmentID != "" {
			refs = append(refs, it.ShipmentID)
		}
	}
	for _, ref := range refs {
		ok, err := shipmentRepo.Exists(ctx, ref)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: envío %s", domain.ErrNotFound, ref)
		}
	}
	return nil
}

// writeComposition verifica que ningún envío pertenezca a otra factura y luego inserta ítems y vínculos.
// Debe ejecutarse después de borrar la composición anterior.
func writeComposition(ctx context.Context, invoiceRepo repository.InvoiceRepository, inv *entity.Invoice, comp *composition, now time.Time) error {
	for _, shipmentID := range comp.shipmentIDs {
		owner, err := invoiceRepo.FindShipmentOwner(ctx, shipmentID)
		if err != nil {
			return err
		}
		if owner != "" && owner != inv.ID {
			return fmt.Errorf("%w: envío %s pertenece a la factura %s", domain.ErrConflictingLink, shipmentID, owner)
		}
	}

	inv.Items = make([]entity.InvoiceItem, 0, len(comp.items))
	for _, it := range comp.items {
		item := it
		item.ID = uuid.New().String()
		item.InvoiceID = inv.ID
		item.CreatedAt = now
		if err := invoiceRepo.CreateItem(ctx, &item); err != nil {
			return err
		}
		inv.Items = append(inv.Items, item)
	}

	inv.Shipments = make([]entity.InvoiceShipment, 0, len(comp.shipmentIDs))
	for _, shipmentID := range comp.shipmentIDs {
		link := entity.InvoiceShipment{
			ID:         uuid.New().String(),
			InvoiceID:  inv.ID,
			ShipmentID: shipmentID,
			CreatedAt:  now,
		}
		if err := invoiceRepo.CreateShipmentLink(ctx, &link); err != nil {
			return err
		}
		inv.Shipments = append(inv.Shipments, link)
	}
	return lifecycle.CheckTotals(inv)
}
