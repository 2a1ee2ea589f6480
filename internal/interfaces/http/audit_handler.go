package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturas-api/internal/application/audit"
	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/domain"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// AuditHandler consultas del registro de auditoría.
type AuditHandler struct {
	svc *audit.TrailService
}

// NewAuditHandler construye el handler.
func NewAuditHandler(svc *audit.TrailService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// ByEntity GET /api/audit/:entityType/:entityId
func (h *AuditHandler) ByEntity(c *fiber.Ctx) error {
	logs, err := h.svc.ByEntity(c.Context(), c.Params("entityType"), c.Params("entityId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAuditResponses(logs))
}

// Search GET /api/audit?action=ISSUE | ?actor=u1 | ?from=<RFC3339>&to=<RFC3339>
func (h *AuditHandler) Search(c *fiber.Ctx) error {
	var (
		logs []*entity.AuditLog
		err  error
	)
	switch {
	case c.Query("action") != "":
		logs, err = h.svc.ByAction(c.Context(), entity.AuditAction(strings.ToUpper(c.Query("action"))))
	case c.Query("actor") != "":
		logs, err = h.svc.ByActor(c.Context(), c.Query("actor"))
	case c.Query("from") != "" || c.Query("to") != "":
		var from, to time.Time
		if from, err = time.Parse(time.RFC3339, c.Query("from")); err != nil {
			return writeError(c, fmt.Errorf("%w: from debe ser RFC3339", domain.ErrInvalidInput))
		}
		if to, err = time.Parse(time.RFC3339, c.Query("to")); err != nil {
			return writeError(c, fmt.Errorf("%w: to debe ser RFC3339", domain.ErrInvalidInput))
		}
		logs, err = h.svc.ByDateRange(c.Context(), from, to)
	default:
		return writeError(c, fmt.Errorf("%w: indique action, actor o from/to", domain.ErrInvalidInput))
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAuditResponses(logs))
}

func toAuditResponses(logs []*entity.AuditLog) dto.ListResponse[dto.AuditLogResponse] {
	out := make([]dto.AuditLogResponse, 0, len(logs))
	for _, e := range logs {
		out = append(out, dto.NewAuditLogResponse(e))
	}
	return dto.NewListResponse(out)
}
