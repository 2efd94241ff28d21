package integration_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/codecanvas/projectdb/internal/config"
	"github.com/codecanvas/projectdb/internal/database"
	"github.com/codecanvas/projectdb/internal/models"
	"github.com/codecanvas/projectdb/internal/services"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/tests/helpers"
)

// TestWithMariaDB exercises the relational backend against a real MariaDB container
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	dbImage := os.Getenv("DB_IMAGE")
	if dbImage == "" {
		dbImage = "mariadb:11"
	}

	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dbImage,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	runStorageSuite(t, db)
}

// TestWithPostgreSQL exercises the relational backend against a real PostgreSQL container
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	pgImage := os.Getenv("POSTGRES_IMAGE")
	if pgImage == "" {
		pgImage = "postgres:16"
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(2 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	runStorageSuite(t, db)
}

// runStorageSuite runs the contract checks that need a real database engine
func runStorageSuite(t *testing.T, db *gorm.DB) {
	store := storage.NewDatabase(db)

	t.Run("VersionHistory", func(t *testing.T) {
		testVersionHistory(t, store)
	})
	t.Run("CascadeDelete", func(t *testing.T) {
		testCascadeDelete(t, store)
	})
	t.Run("JSONColumns", func(t *testing.T) {
		testJSONColumns(t, store)
	})
}

// testVersionHistory verifies snapshot-before-overwrite against a real engine
func testVersionHistory(t *testing.T, store storage.Storage) {
	ctx := context.Background()

	project := helpers.CreateTestProject(t, store, "history")
	file := helpers.CreateTestFile(t, store, project.ID, "main.go", "src/main.go", "v1")

	helpers.UpdateTestFileContent(t, store, file.ID, "v2")
	helpers.UpdateTestFileContent(t, store, file.ID, "v3")

	versions, err := store.ListFileVersions(ctx, file.ID)
	if err != nil {
		t.Fatalf("ListFileVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("Expected 2 versions, got %d", len(versions))
	}
	if versions[0].Version != 2 || versions[0].Content != "v2" {
		t.Errorf("Expected newest {2 v2}, got {%d %q}", versions[0].Version, versions[0].Content)
	}

	restored, err := store.RestoreFileVersion(ctx, file.ID, versions[1].ID)
	if err != nil {
		t.Fatalf("RestoreFileVersion: %v", err)
	}
	if restored.Content != "v1" {
		t.Errorf("Expected restored content v1, got %q", restored.Content)
	}
	after, _ := store.ListFileVersions(ctx, file.ID)
	if len(after) != 2 {
		t.Errorf("Restore must not grow history, got %d versions", len(after))
	}
}

// testCascadeDelete verifies transactional project teardown
func testCascadeDelete(t *testing.T, store storage.Storage) {
	ctx := context.Background()

	project := helpers.CreateTestProject(t, store, "teardown")
	file := helpers.CreateTestFile(t, store, project.ID, "app.js", "src/app.js", "one")
	helpers.UpdateTestFileContent(t, store, file.ID, "two")
	helpers.CreateTestMessage(t, store, project.ID, models.RoleUser, "hello")

	if err := store.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	if _, err := store.GetFile(ctx, file.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("File survived cascade: %v", err)
	}
	if versions, _ := store.ListFileVersions(ctx, file.ID); len(versions) != 0 {
		t.Errorf("Versions survived cascade: %d", len(versions))
	}
	if messages, _ := store.ListMessagesByProject(ctx, project.ID); len(messages) != 0 {
		t.Errorf("Messages survived cascade: %d", len(messages))
	}
}

// testJSONColumns verifies the portable JSON column round-trips on this dialect
func testJSONColumns(t *testing.T, store storage.Storage) {
	ctx := context.Background()

	project := helpers.CreateTestProject(t, store, "json")
	file := helpers.CreateTestFile(t, store, project.ID, "x.ts", "x.ts", "let x")

	created, err := store.CreateAiAnalysis(ctx, &models.InsertAiAnalysis{
		FileID:       file.ID,
		AnalysisType: "code-review",
		Result:       models.NewJSON([]byte(`{"overallRating":8,"summary":"good"}`)),
	})
	if err != nil {
		t.Fatalf("CreateAiAnalysis: %v", err)
	}

	fetched, err := store.GetLatestAnalysis(ctx, file.ID, "code-review")
	if err != nil {
		t.Fatalf("GetLatestAnalysis: %v", err)
	}
	if fetched.ID != created.ID {
		t.Errorf("Expected id %d, got %d", created.ID, fetched.ID)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(fetched.Result.JSON, &decoded); err != nil {
		t.Fatalf("Failed to decode stored result: %v", err)
	}
	if decoded["summary"] != "good" {
		t.Errorf("JSON column did not round-trip: %v", decoded)
	}
}

// TestHealthCheck verifies the probe against a live database and a dead AI gateway
func TestHealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	dbImage := os.Getenv("DB_IMAGE")
	if dbImage == "" {
		dbImage = "mariadb:11"
	}

	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dbImage,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:     "mysql",
		DBHost:     host,
		DBPort:     port.Port(),
		DBDatabase: "testdb",
		DBUser:     "testuser",
		DBPassword: "testpass",
		AIAPIKey:   "test-key",
		AIBaseURL:  "http://localhost:9999", // Non-existent gateway
	}

	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	result := services.HealthCheck(cfg, db)

	if result.Storage != "ok" {
		t.Errorf("Expected storage to be ok, got: %s", result.Storage)
	}
	if result.AI != "unreachable" {
		t.Errorf("Expected AI gateway to be unreachable, got: %s", result.AI)
	}
	if result.Status != "unhealthy" {
		t.Errorf("Expected status to be unhealthy, got: %s", result.Status)
	}
}
