package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturas-api/internal/application/billing"
	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// InvoiceHandler maneja las peticiones HTTP del ciclo de vida de facturas (protegido).
type InvoiceHandler struct {
	uc *billing.InvoiceLifecycleUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceLifecycleUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create crea una factura en borrador.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	invoice, err := h.uc.CreateInvoice(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// Update reemplaza el contenido de un borrador. El body lleva la versión leída.
// PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	invoice, err := h.uc.UpdateInvoice(c.Context(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// Issue emite la factura.
// POST /api/invoices/:id/issue
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	invoice, err := h.uc.IssueInvoice(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// GetByID obtiene la factura con ítems y envíos.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.uc.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// List lista todas las facturas, o solo las del estado indicado.
// GET /api/invoices | GET /api/invoices?status=ISSUED
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var (
		list []dto.InvoiceSummaryResponse
		err  error
	)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		list, err = h.uc.ListByStatus(c.Context(), entity.InvoiceStatus(strings.ToUpper(status)))
	} else {
		list, err = h.uc.ListAll(c.Context())
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(list))
}
