package handlers

import (
	"errors"
	"fmt"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// statusFor maps domain sentinels onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, types.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, types.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, types.ErrInvalidTransition), errors.Is(err, types.ErrAlreadyAssigned):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the mapped status. Client errors echo the message,
// server errors are logged and answered with the fallback text.
func respondError(c *fiber.Ctx, log logger.Logger, err error, fallback string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		_ = log.Err(fallback, err)
		return c.Status(status).JSON(fiber.Map{"error": fallback})
	}

	log.Info("request rejected", "status", status, "error", err.Error())
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", types.ErrInvalidInput, name)
	}
	return id, nil
}

func badBody(c *fiber.Ctx, log logger.Logger, err error) error {
	log.Warn("Invalid request body", "error", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}
