package http

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/domain"
)

var validate = validator.New()

// statusByKind código HTTP para cada tipo de error de dominio.
var statusByKind = map[string]int{
	domain.KindValidation:        fiber.StatusBadRequest,
	domain.KindNotFound:          fiber.StatusNotFound,
	domain.KindVersionConflict:   fiber.StatusConflict,
	domain.KindConflictingLink:   fiber.StatusConflict,
	domain.KindInvalidTransition: fiber.StatusUnprocessableEntity,
}

// writeError traduce err a ErrorResponse con el código estable de domain.Kind.
func writeError(c *fiber.Ctx, err error) error {
	kind := domain.Kind(err)
	status, ok := statusByKind[kind]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: domain.KindInternal, Message: "error interno"})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: kind, Message: err.Error()})
}

// parseBody decodifica y valida el cuerpo con las etiquetas validate del DTO.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
