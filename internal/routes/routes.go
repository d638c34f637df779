package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/handlers"
)

// SetupRoutes configures all application routes with dependencies
func SetupRoutes(app *fiber.App, healthHandler *handlers.HealthHandler, profileHandler *handlers.ProfileHandler) {
	// Health check endpoint
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/profiles", profileHandler.GetProfile)
		api.Get("/profiles/:user_id", profileHandler.GetProfile)
	}
}
