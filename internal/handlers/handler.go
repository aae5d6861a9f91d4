package handlers

import (
	"html/template"

	"github.com/crimecast/crimecast/internal/logging"
	"github.com/crimecast/crimecast/internal/services"
	"github.com/crimecast/crimecast/internal/utils"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger          *logging.Logger
	forecastService *services.ForecastService
	datasetService  *services.DatasetService
	defaultHorizon  int
	page            *template.Template
}

// New creates a new handler instance
func New(logger *logging.Logger, forecastService *services.ForecastService,
	datasetService *services.DatasetService, defaultHorizon int,
) *Handler {
	if defaultHorizon <= 0 {
		defaultHorizon = utils.DefaultHorizon
	}
	return &Handler{
		logger:          logger,
		forecastService: forecastService,
		datasetService:  datasetService,
		defaultHorizon:  defaultHorizon,
		page:            pageTemplate,
	}
}
