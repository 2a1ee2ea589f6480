package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturas-api/internal/application/audit"
	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/domain"
)

// HistoryHandler consultas del historial de versiones de una factura.
type HistoryHandler struct {
	svc *audit.HistoryService
}

// NewHistoryHandler construye el handler.
func NewHistoryHandler(svc *audit.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// List GET /api/invoices/:id/history
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	list, err := h.svc.GetHistory(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SnapshotResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewSnapshotResponse(s))
	}
	return c.JSON(dto.NewListResponse(out))
}

// Latest GET /api/invoices/:id/history/latest
func (h *HistoryHandler) Latest(c *fiber.Ctx) error {
	snap, err := h.svc.GetLatest(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSnapshotResponse(snap))
}

// Count GET /api/invoices/:id/history/count
func (h *HistoryHandler) Count(c *fiber.Ctx) error {
	id := c.Params("id")
	n, err := h.svc.Count(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.HistoryCountResponse{InvoiceID: id, Count: n})
}

// Version GET /api/invoices/:id/history/:version
func (h *HistoryHandler) Version(c *fiber.Ctx) error {
	version, err := strconv.Atoi(c.Params("version"))
	if err != nil {
		return writeError(c, fmt.Errorf("%w: versión %q", domain.ErrInvalidInput, c.Params("version")))
	}
	snap, err := h.svc.GetVersion(c.Context(), c.Params("id"), version)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSnapshotResponse(snap))
}
