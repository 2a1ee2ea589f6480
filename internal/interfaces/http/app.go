package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/domain"
)

// NewApp crea la aplicación Fiber con la configuración común y registra las rutas.
// Immutable evita que los parámetros de ruta apunten a buffers reutilizados por fasthttp,
// ya que terminan persistidos en auditoría e historial.
func NewApp(name string, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: domain.KindInternal, Message: "error interno"})
		},
	})
	app.Use(recover.New())
	Router(app, deps)
	return app
}
