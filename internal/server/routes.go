package server

import (
	"github.com/labstack/echo/v4"

	"example.com/learningmate-ops/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	collectionHandler *handlers.CollectionHandler,
	settingsHandler *handlers.SettingsHandler,
	statsHandler *handlers.StatsHandler,
	exportHandler *handlers.ExportHandler,
	eventsHandler *handlers.EventsHandler,
	writeRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")

	collections := api.Group("/collections")
	collections.GET("/:name", collectionHandler.Get)
	collections.PUT("/:name", collectionHandler.Replace, writeRateLimiter)

	settings := api.Group("/settings")
	settings.GET("/monthly-target", settingsHandler.GetMonthlyTarget)
	settings.PUT("/monthly-target", settingsHandler.SetMonthlyTarget, writeRateLimiter)

	stats := api.Group("/stats")
	stats.GET("/overview", statsHandler.Overview)

	exports := api.Group("/export")
	exports.GET("/xlsx", exportHandler.XLSX)
	exports.GET("/csv", exportHandler.CSV)

	events := api.Group("/events")
	events.GET("/stream", eventsHandler.Stream)
}
