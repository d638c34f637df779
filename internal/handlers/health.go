package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/database"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/hotstore"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/rabbitmq"
)

// HealthHandler reports the status of the service's backing stores.
type HealthHandler struct {
	DB       *gorm.DB
	HotStore *hotstore.Store
	RabbitMQ *rabbitmq.Connection
}

// NewHealthHandler creates a new health handler with dependencies
func NewHealthHandler(db *gorm.DB, hot *hotstore.Store, rmq *rabbitmq.Connection) *HealthHandler {
	return &HealthHandler{
		DB:       db,
		HotStore: hot,
		RabbitMQ: rmq,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	status := "healthy"

	if err := database.HealthCheck(ctx, h.DB); err != nil {
		services["postgres"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		services["postgres"] = "healthy"
	}

	if err := h.HotStore.HealthCheck(ctx); err != nil {
		services["redis"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		services["redis"] = "healthy"
	}

	if h.RabbitMQ == nil || !h.RabbitMQ.IsHealthy() {
		services["rabbitmq"] = "unhealthy: connection closed"
		status = "unhealthy"
	} else {
		services["rabbitmq"] = "healthy"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	}

	if status == "unhealthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}

	return c.JSON(response)
}
