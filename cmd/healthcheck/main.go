package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/codecanvas/projectdb/internal/config"
	"github.com/codecanvas/projectdb/internal/database"
	"github.com/codecanvas/projectdb/internal/services"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to the database only when one is configured; the in-memory
	// backend has nothing to probe
	var db *gorm.DB
	if cfg.HasDatabase() {
		db, err = database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)
	}

	// Perform health check
	result := services.HealthCheck(cfg, db)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
