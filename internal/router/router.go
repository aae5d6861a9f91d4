package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/crimecast/crimecast/internal/config"
	"github.com/crimecast/crimecast/internal/handlers"
	"github.com/crimecast/crimecast/internal/logging"
	"github.com/crimecast/crimecast/internal/metrics"
	"github.com/crimecast/crimecast/internal/middleware"
	"github.com/crimecast/crimecast/internal/services"
)

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	Forecast *services.ForecastService
	Dataset  *services.DatasetService
	Metrics  *metrics.Metrics
}

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, deps Dependencies, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, deps.Forecast, deps.Dataset, cfg.Forecast.DefaultHorizon)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check and metrics (no auth required)
	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))

	limiter := middleware.RateLimit(cfg.RateLimit)

	// HTML page
	app.Get("/", limiter, h.Page)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", limiter, middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled))

	// Dataset Routes
	v1.Get("/jurisdictions", h.ListJurisdictions)
	v1.Get("/jurisdictions/:jurisdiction/categories", h.ListCategories)

	// Forecast Routes
	v1.Get("/forecast", h.Forecast)
	v1.Post("/forecast", h.ForecastPost)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, deps Dependencies, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "crimecast",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, deps, cfg)

	return app
}
