package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/crimecast/crimecast/internal/models"
	"github.com/crimecast/crimecast/internal/services"
)

// Forecast handles GET forecast requests
// GET /v1/forecast?jurisdiction=&category=&horizon=
func (h *Handler) Forecast(c *fiber.Ctx) error {
	horizon, err := h.parseHorizon(c.Query("horizon"))
	if err != nil {
		return err
	}

	return h.executeForecast(c, &services.ForecastRequest{
		Jurisdiction: strings.TrimSpace(c.Query("jurisdiction")),
		Category:     strings.TrimSpace(c.Query("category")),
		Horizon:      horizon,
	})
}

// ForecastPost handles POST forecast requests
// POST /v1/forecast
func (h *Handler) ForecastPost(c *fiber.Ctx) error {
	var body models.ForecastRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_JSON",
				Message: "Failed to parse JSON body",
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
	}

	horizon := h.defaultHorizon
	if body.Horizon != nil {
		horizon = *body.Horizon
	}

	return h.executeForecast(c, &services.ForecastRequest{
		Jurisdiction: strings.TrimSpace(body.Jurisdiction),
		Category:     strings.TrimSpace(body.Category),
		Horizon:      horizon,
	})
}

// executeForecast runs the request and picks the status: 422 when every
// family failed, 200 otherwise with per-family errors in the body
func (h *Handler) executeForecast(c *fiber.Ctx, req *services.ForecastRequest) error {
	result, err := h.forecastService.Execute(c.UserContext(), req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if result.AllFailed() {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(result)
}

// parseHorizon returns the default for an absent value and rejects
// anything that is not an integer
func (h *Handler) parseHorizon(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return h.defaultHorizon, nil
	}
	horizon, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.NewServiceError(services.CodeInvalidHorizon,
			fmt.Sprintf("horizon must be an integer, got %q", raw))
	}
	return horizon, nil
}
