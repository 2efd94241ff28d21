package handlers

import (
	"github.com/codecanvas/projectdb/internal/config"
	"github.com/codecanvas/projectdb/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler serves the service health probe
type HealthHandler struct {
	Cfg *config.Config
	// DB is nil when running on the in-memory backend
	DB *gorm.DB
}

// Health handles GET /api/health
// @Summary Health check
// @Description Report storage backend and AI gateway health
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
