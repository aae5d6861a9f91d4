package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/crimecast/crimecast/internal/middleware"
	"github.com/crimecast/crimecast/internal/services"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

type pageData struct {
	Jurisdictions []string
	Categories    []string
	Jurisdiction  string
	Category      string
	Horizon       int
	Result        *services.ForecastResponse
	Error         string
}

// Page renders the HTML selection form and, once a jurisdiction and
// category are chosen, both forecasts next to the observed series
// GET /
func (h *Handler) Page(c *fiber.Ctx) error {
	data := pageData{
		Jurisdictions: h.datasetService.Jurisdictions(),
		Jurisdiction:  strings.TrimSpace(c.Query("jurisdiction")),
		Category:      strings.TrimSpace(c.Query("category")),
		Horizon:       h.defaultHorizon,
	}
	status := fiber.StatusOK

	if data.Jurisdiction != "" {
		if cats, err := h.datasetService.Categories(data.Jurisdiction); err == nil {
			data.Categories = cats
		}
	}

	horizon, err := h.parseHorizon(c.Query("horizon"))
	if err == nil {
		data.Horizon = horizon
	}

	if err == nil && data.Jurisdiction != "" && data.Category != "" {
		var result *services.ForecastResponse
		result, err = h.forecastService.Execute(c.UserContext(), &services.ForecastRequest{
			Jurisdiction: data.Jurisdiction,
			Category:     data.Category,
			Horizon:      horizon,
		})
		if err == nil {
			data.Result = result
			if result.AllFailed() {
				status = fiber.StatusUnprocessableEntity
			}
		}
	}

	if err != nil {
		var svcErr *services.ServiceError
		if !errors.As(err, &svcErr) {
			return err
		}
		data.Error = svcErr.Message
		status = middleware.StatusForCode(svcErr.Code)
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		return err
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}
