package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturas-api/internal/application/audit"
	"github.com/jhoicas/Facturas-api/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC *billing.InvoiceLifecycleUseCase
	History   *audit.HistoryService
	Trail     *audit.TrailService
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Post("/:id/issue", invoiceHandler.Issue)

	// Historial de versiones
	historyHandler := NewHistoryHandler(deps.History)
	invoices.Get("/:id/history", historyHandler.List)
	invoices.Get("/:id/history/latest", historyHandler.Latest)
	invoices.Get("/:id/history/count", historyHandler.Count)
	invoices.Get("/:id/history/:version", historyHandler.Version)

	// Auditoría
	auditGroup := protected.Group("/audit")
	auditHandler := NewAuditHandler(deps.Trail)
	auditGroup.Get("/", auditHandler.Search)
	auditGroup.Get("/:entityType/:entityId", auditHandler.ByEntity)
}
