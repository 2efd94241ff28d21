package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"gorm.io/gorm"

	"github.com/codecanvas/projectdb/internal/ai"
	"github.com/codecanvas/projectdb/internal/config"
	"github.com/codecanvas/projectdb/internal/database"
	"github.com/codecanvas/projectdb/internal/handlers"
	"github.com/codecanvas/projectdb/internal/middleware"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/types"

	_ "github.com/codecanvas/projectdb/docs/api" // Swagger docs
)

// @title ProjectDB API
// @version 1.0.0
// @description Project persistence and versioning service for AI-assisted code generation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/codecanvas/projectdb

// @host localhost:3000
// @BasePath /api
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Pick the storage backend: relational when a database is configured,
	// in-memory otherwise
	var store storage.Storage
	var db *gorm.DB
	if cfg.HasDatabase() {
		db, err = database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		store = storage.NewDatabase(db)
		log.Printf("Using %s database backend", cfg.DBType)
	} else {
		store = storage.NewMemory()
		log.Println("Using in-memory backend (no database configured)")
	}

	// AI collaborator
	assistant := ai.NewClient(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
	if assistant.Available() {
		log.Printf("AI assistant enabled (model %s)", cfg.AIModel)
	} else {
		log.Println("AI assistant disabled (no API key configured)")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("projectdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	projectHandler := &handlers.ProjectHandler{Store: store}
	fileHandler := &handlers.FileHandler{Store: store}
	messageHandler := &handlers.MessageHandler{Store: store}
	testHandler := &handlers.TestHandler{Store: store}
	analysisHandler := &handlers.AnalysisHandler{Store: store, Assistant: assistant}
	assistantHandler := &handlers.AssistantHandler{Store: store, Assistant: assistant}
	gitHandler := &handlers.GitHandler{Store: store}
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db}

	// Project routes
	api.Post("/projects", projectHandler.CreateProject)
	api.Get("/projects", projectHandler.ListProjects)
	api.Get("/projects/:id", projectHandler.GetProject)
	api.Patch("/projects/:id", projectHandler.UpdateProject)
	api.Delete("/projects/:id", projectHandler.DeleteProject)

	// File routes
	api.Post("/files", fileHandler.CreateFile)
	api.Get("/projects/:projectId/files", fileHandler.ListProjectFiles)
	api.Get("/files/:id", fileHandler.GetFile)
	api.Patch("/files/:id", fileHandler.UpdateFileContent)
	api.Delete("/files/:id", fileHandler.DeleteFile)

	// Version routes
	api.Get("/files/:fileId/versions", fileHandler.ListFileVersions)
	api.Post("/files/:fileId/restore/:versionId", fileHandler.RestoreFileVersion)

	// Message routes
	api.Post("/projects/:projectId/messages", messageHandler.CreateMessage)
	api.Get("/projects/:projectId/messages", messageHandler.ListMessages)
	api.Delete("/projects/:projectId/messages", messageHandler.DeleteMessages)

	// Test routes
	api.Post("/tests", testHandler.CreateTest)
	api.Get("/files/:fileId/tests", testHandler.ListFileTests)
	api.Patch("/tests/:id", testHandler.UpdateTest)
	api.Delete("/tests/:id", testHandler.DeleteTest)

	// Analysis routes
	api.Post("/files/:fileId/analyses", analysisHandler.AnalyzeFile)
	api.Get("/files/:fileId/analyses", analysisHandler.ListFileAnalyses)
	api.Get("/files/:fileId/analyses/latest", analysisHandler.GetLatestAnalysis)

	// Assistant routes
	api.Post("/chat", assistantHandler.Chat)
	api.Post("/generate-code", assistantHandler.GenerateCode)

	// Git projection routes
	git := api.Group("/git/:projectId")
	git.Get("/status", gitHandler.Status)
	git.Get("/commits", gitHandler.Commits)
	git.Get("/branches", gitHandler.Branches)
	git.Post("/branches", gitHandler.CreateBranch)
	git.Post("/checkout", gitHandler.Checkout)
	git.Post("/commit", gitHandler.Commit)
	git.Post("/pull", gitHandler.Pull)
	git.Post("/push", gitHandler.Push)

	// Health route
	api.Get("/health", healthHandler.Health)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	// Check for domain errors that escaped the handlers
	var customErr *types.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	}
	if errors.Is(err, storage.ErrNotFound) {
		code = fiber.StatusNotFound
		message = "Resource Not Found"
		errorType = "notFound"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
