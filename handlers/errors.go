package handlers

import (
	"errors"

	"guild-review-system/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the core error taxonomy onto HTTP statuses:
// ValidationError 400, NotFoundError 404, InvalidStateError and
// ConflictError 409. Anything else is a storage/internal failure.
func respondError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		body := fiber.Map{"error": ve.Error()}
		if len(ve.Suggestions) > 0 {
			body["suggestions"] = ve.Suggestions
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	var nfe *services.NotFoundError
	if errors.As(err, &nfe) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": nfe.Error()})
	}

	var ise *services.InvalidStateError
	if errors.As(err, &ise) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": ise.Error(),
			"mine":  ise.Mine,
		})
	}

	var ce *services.ConflictError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": ce.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
