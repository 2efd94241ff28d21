package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/codecanvas/projectdb/internal/config"
	"github.com/codecanvas/projectdb/internal/database"
	"github.com/codecanvas/projectdb/internal/services"
	"github.com/codecanvas/projectdb/tests/helpers"
)

// TestE2EWithFullStack tests the entire service stack
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ctx := context.Background()

	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	serviceHost, _ := tc.ProjectDBContainer.Host(ctx)
	servicePort, _ := tc.ProjectDBContainer.MappedPort(ctx, "3000")
	baseURL := fmt.Sprintf("http://%s:%s", serviceHost, servicePort.Port())

	// Wait a bit for everything to stabilize
	time.Sleep(5 * time.Second)

	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, tc)
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, baseURL)
	})

	t.Run("ProjectFileFlow", func(t *testing.T) {
		testProjectFileFlow(t, baseURL)
	})

	t.Run("NotFoundShape", func(t *testing.T) {
		testNotFoundShape(t, baseURL)
	})
}

func testHealthCheck(t *testing.T, tc *helpers.TestContainers) {
	ctx := context.Background()

	// Point the config at the mapped ports on localhost, not the
	// internal container network names
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	dbHost, _ := tc.DBContainer.Host(ctx)
	dbPort, _ := tc.DBContainer.MappedPort(ctx, "3306")
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()

	gormDB, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	defer database.Close(gormDB)

	result := services.HealthCheck(cfg, gormDB)

	if result.Status != "healthy" {
		t.Errorf("Health check failed: %+v", result)
	}

	t.Logf("Health check passed: status=%s, storage=%s, ai=%s",
		result.Status, result.Storage, result.AI)
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for metrics, got %d. Body: %s", resp.StatusCode, string(body))
	}

	t.Logf("Metrics endpoint working, found %d bytes of metrics", len(body))
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to get Swagger UI: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for Swagger UI, got %d", resp.StatusCode)
	}
}

// testProjectFileFlow drives the primary persistence path over HTTP:
// project -> file -> content updates -> version history -> restore
func testProjectFileFlow(t *testing.T, baseURL string) {
	client := &http.Client{Timeout: 10 * time.Second}

	postJSON := func(url string, payload interface{}) *http.Response {
		t.Helper()
		body, _ := json.Marshal(payload)
		resp, err := client.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST %s: %v", url, err)
		}
		return resp
	}
	patchJSON := func(url string, payload interface{}) *http.Response {
		t.Helper()
		body, _ := json.Marshal(payload)
		req, _ := http.NewRequest(http.MethodPatch, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("PATCH %s: %v", url, err)
		}
		return resp
	}

	// Create a project
	resp := postJSON(baseURL+"/api/projects", map[string]interface{}{
		"name":        "e2e-project",
		"description": "created during end to end run",
	})
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var project struct {
		ID uint64 `json:"id"`
	}
	helpers.ParseJSON(t, resp, &project)
	if project.ID == 0 {
		t.Fatal("Project id missing from create response")
	}

	// Create a file and update it twice
	resp = postJSON(baseURL+"/api/files", map[string]interface{}{
		"projectId": project.ID,
		"name":      "main.go",
		"path":      "src/main.go",
		"content":   "v1",
		"type":      "file",
	})
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var file struct {
		ID uint64 `json:"id"`
	}
	helpers.ParseJSON(t, resp, &file)

	for _, content := range []string{"v2", "v3"} {
		resp = patchJSON(fmt.Sprintf("%s/api/files/%d", baseURL, file.ID), map[string]string{"content": content})
		helpers.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	// Version history holds the two superseded snapshots, newest first
	resp, err := client.Get(fmt.Sprintf("%s/api/files/%d/versions", baseURL, file.ID))
	if err != nil {
		t.Fatalf("GET versions: %v", err)
	}
	helpers.AssertStatus(t, resp, http.StatusOK)
	var versions []struct {
		ID      uint64 `json:"id"`
		Version int    `json:"version"`
		Content string `json:"content"`
	}
	helpers.ParseJSON(t, resp, &versions)
	if len(versions) != 2 {
		t.Fatalf("Expected 2 versions, got %d", len(versions))
	}
	if versions[0].Version != 2 || versions[1].Version != 1 {
		t.Errorf("Versions not newest first: %+v", versions)
	}

	// Restore the oldest snapshot
	resp = postJSON(fmt.Sprintf("%s/api/files/%d/restore/%d", baseURL, file.ID, versions[1].ID), nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var restored struct {
		Content string `json:"content"`
	}
	helpers.ParseJSON(t, resp, &restored)
	if restored.Content != "v1" {
		t.Errorf("Expected restored content v1, got %q", restored.Content)
	}

	// Delete the project
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/projects/%d", baseURL, project.ID), nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE project: %v", err)
	}
	helpers.AssertStatus(t, resp, http.StatusOK)
	var deleted struct {
		Success bool `json:"success"`
	}
	helpers.ParseJSON(t, resp, &deleted)
	if !deleted.Success {
		t.Error("Expected success true on project delete")
	}
}

func testNotFoundShape(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/api/projects/999999")
	if err != nil {
		t.Fatalf("Failed to access API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		t.Logf("Response body: %s", string(body))
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	// Verify the error envelope is valid JSON with the expected fields
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Errorf("Response is not valid JSON: %v", err)
	}
	if _, present := result["message"]; !present {
		t.Errorf("Error envelope missing message: %v", result)
	}
}
