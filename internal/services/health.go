package services

import (
	"fmt"
	"log"

	"github.com/codecanvas/projectdb/internal/config"
	"github.com/codecanvas/projectdb/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Storage      string            `json:"storage"`
	AI           string            `json:"ai"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a comprehensive health check of the service. db is nil
// when the service runs on the in-memory backend.
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check storage backend
	if db == nil {
		result.Storage = "ok"
		result.Details["storage_backend"] = "memory"
	} else {
		sqlDB, err := db.DB()
		if err != nil {
			result.Status = "unhealthy"
			result.Storage = "error"
			result.Details["database_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
			log.Printf("Health check failed - database connection: %v", err)
		} else {
			if err := sqlDB.Ping(); err != nil {
				result.Status = "unhealthy"
				result.Storage = "unreachable"
				result.Details["database_ping_error"] = err.Error()
				result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
				log.Printf("Health check failed - database ping: %v", err)
			} else {
				result.Storage = "ok"
				result.Details["storage_backend"] = "database"
				result.Details["database_type"] = cfg.DBType
				result.Details["database_name"] = cfg.DBDatabase
			}
		}
	}

	// Check AI gateway connectivity when one is configured
	if cfg.AIAPIKey == "" {
		result.AI = "disabled"
	} else if cfg.AIBaseURL == "" {
		result.AI = "ok"
	} else if err := utils.PingAIGateway(cfg.AIBaseURL); err != nil {
		result.Status = "unhealthy"
		result.AI = "unreachable"
		result.Details["ai_gateway_error"] = err.Error()
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("AI gateway ping failed: %v", err)
		} else {
			result.ErrorMessage += fmt.Sprintf("; AI gateway ping failed: %v", err)
		}
		log.Printf("Health check failed - ai gateway ping: %v", err)
	} else {
		result.AI = "ok"
		result.Details["ai_gateway_url"] = cfg.AIBaseURL
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
