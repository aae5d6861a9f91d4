package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/crimecast/crimecast/internal/logging"
	"github.com/crimecast/crimecast/internal/models"
	"github.com/crimecast/crimecast/internal/services"
)

// StatusForCode maps a service error code to an HTTP status
func StatusForCode(code string) int {
	switch code {
	case services.CodeInvalidRequest, services.CodeInvalidHorizon:
		return fiber.StatusBadRequest
	case services.CodeSeriesNotFound, services.CodeNotFound:
		return fiber.StatusNotFound
	case services.CodeInvalidSeries:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler returns a custom error handler middleware. Service errors
// keep their code; fiber errors keep their status.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
		}

		var svcErr *services.ServiceError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &svcErr):
			code = StatusForCode(svcErr.Code)
			detail = models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Details: svcErr.Details,
			}
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			detail.Message = fiberErr.Message
		}

		log := logger.WithContext(c.UserContext())
		fields := []interface{}{
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"error", err,
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("Request error", fields...)
		} else {
			log.Debug("Request rejected", fields...)
		}

		return c.Status(code).JSON(models.ErrorResponse{Error: detail})
	}
}
