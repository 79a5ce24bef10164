package server

import (
	"strconv"

	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// clientIDHeader lets callers pin feature-flag rollouts to a stable identity.
const clientIDHeader = "X-Client-ID"

// respondError writes err with the status its AppError code maps to.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// requestSubject identifies the caller for feature-flag evaluation.
func requestSubject(c *fiber.Ctx) string {
	if id := c.Get(clientIDHeader); id != "" {
		return id
	}
	return c.IP()
}

// parseOptionalBool reads a boolean query parameter. A missing parameter
// yields nil; a malformed one is a validation error.
func parseOptionalBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, models.NewValidationError("Invalid " + key + " value")
	}
	return &v, nil
}
