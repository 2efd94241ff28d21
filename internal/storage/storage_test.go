package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codecanvas/projectdb/internal/database"
	"github.com/codecanvas/projectdb/internal/models"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/types"
)

// newBackends returns a fresh instance of every backend under test. Both must
// satisfy identical contract semantics.
func newBackends(t *testing.T) map[string]storage.Storage {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return map[string]storage.Storage{
		"memory":   storage.NewMemory(),
		"database": storage.NewDatabase(db),
	}
}

func mustProject(t *testing.T, store storage.Storage, name string) *models.Project {
	t.Helper()
	p, err := store.CreateProject(context.Background(), &models.InsertProject{Name: name})
	if err != nil {
		t.Fatalf("CreateProject(%s): %v", name, err)
	}
	return p
}

func mustFile(t *testing.T, store storage.Storage, projectID uint64, path, content string) *models.File {
	t.Helper()
	f, err := store.CreateFile(context.Background(), &models.InsertFile{
		ProjectID: projectID,
		Name:      path,
		Path:      path,
		Content:   content,
		Type:      models.FileTypeFile,
	})
	if err != nil {
		t.Fatalf("CreateFile(%s): %v", path, err)
	}
	return f
}

func TestProjectLifecycle(t *testing.T) {
	for name, store := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := mustProject(t, store, "first")
			second := mustProject(t, store, "second")
			if first.ID == 0 || second.ID <= first.ID {
				t.Errorf("Expected monotonic ids from 1, got %d then %d", first.ID, second.ID)
			}

			got, err := store.GetProject(ctx, first.ID)
			if err != nil {
				t.Fatalf("GetProject: %v", err)
			}
			if got.Name != "first" {
				t.Errorf("Expected name 'first', got %q", got.Name)
			}

			// Newest-first listing
			all, err := store.ListProjects(ctx)
			if err != nil {
				t.Fatalf("ListProjects: %v", err)
			}
			if len(all) != 2 {
				t.Fatalf("Expected 2 projects, got %d", len(all))
			}
			if all[0].ID != second.ID || all[1].ID != first.ID {
				t.Errorf("Expected newest-first order [%d %d], got [%d %d]",
					second.ID, first.ID, all[0].ID, all[1].ID)
			}

			// Partial update leaves unnamed fields and CreatedAt untouched
			desc := "renamed project"
			updated, err := store.UpdateProject(ctx, first.ID, &models.ProjectPatch{Description: &desc})
			if err != nil {
				t.Fatalf("UpdateProject: %v", err)
			}
			if updated.Name != "first" {
				t.Errorf("Name changed on description-only patch: %q", updated.Name)
			}
			if updated.Description == nil || *updated.Description != desc {
				t.Errorf("Description not applied: %v", updated.Description)
			}
			if updated.CreatedAt.UnixMilli() != first.CreatedAt.UnixMilli() {
				t.Errorf("CreatedAt changed on update: %v vs %v", updated.CreatedAt, first.CreatedAt)
			}

			if _, err := store.GetProject(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Expected ErrNotFound for missing project, got %v", err)
			}
			if err := store.DeleteProject(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Expected ErrNotFound deleting missing project, got %v", err)
			}
		})
	}
}

func TestCreateProjectValidation(t *testing.T) {
	for name, store := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.CreateProject(context.Background(), &models.InsertProject{Name: "  "})
			var customErr *types.CustomError
			if !errors.As(err, &customErr) {
				t.Fatalf("Expected *types.CustomError, got %v", err)
			}
			if customErr.Code != 400 {
				t.Errorf("Expected code 400, got %d", customErr.Code)
			}
		})
	}
}

// TestVersionRoundTrip walks the canonical edit history: content v1 -> v2 ->
// v3 leaves two snapshots (the pre-overwrite contents), and restoring the
// oldest brings v1 back without growing the history.
func TestVersionRoundTrip(t *testing.T) {
	for name, store := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			project := mustProject(t, store, "versioned")
			file := mustFile(t, store, project.ID, "main.go", "v1")

			if _, err := store.UpdateFileContent(ctx, file.ID, "v2"); err != nil {
				t.Fatalf("UpdateFileContent v2: %v", err)
			}
			updated, err := store.UpdateFileContent(ctx, file.ID, "v3")
			if err != nil {
				t.Fatalf("UpdateFileContent v3: %v", err)
			}
			if updated.Content != "v3" {
				t.Errorf("Expected live content v3, got %q", updated.Content)
			}

			versions, err := store.ListFileVersions(ctx, file.ID)
			if err != nil {
				t.Fatalf("ListFileVersions: %v", err)
			}
			if len(versions) != 2 {
				t.Fatalf("Expected 2 versions, got %d", len(versions))
			}
			// Newest version first, numbered gap-free from 1
			if versions[0].Version != 2 || versions[0].Content != "v2" {
				t.Errorf("Expected newest {2 v2}, got {%d %q}", versions[0].Version, versions[0].Content)
			}
			if versions[1].Version != 1 || versions[1].Content != "v1" {
				t.Errorf("Expected oldest {1 v1}, got {%d %q}", versions[1].Version, versions[1].Content)
			}

			// Restore version 1: content copied back, history unchanged
			restored, err := store.RestoreFileVersion(ctx, file.ID, versions[1].ID)
			if err != nil {
				t.Fatalf("RestoreFileVersion: %v", err)
			}
			if restored.Content != "v1" {
				t.Errorf("Expected restored content v1, got %q", restored.Content)
			}

			after, err := store.ListFileVersions(ctx, file.ID)
			if err != nil {
				t.Fatalf("ListFileVersions after restore: %v", err)
			}
			if len(after) != 2 {
				t.Errorf("Restore created a snapshot: %d versions", len(after))
			}

			// The next edit keeps numbering monotonic
			if _, err := store.UpdateFileContent(ctx, file.ID, "v4"); err != nil {
				t.Fatalf("UpdateFileContent v4: %v", err)
			}
			final, _ := store.ListFileVersions(ctx, file.ID)
			if len(final) != 3 || final[0].Version != 3 {
				t.Errorf("Expected version 3 on top after restore+edit, got %+v", final)
			}
			if final[0].Content != "v1" {
				t.Errorf("Expected snapshot of restored content v1, got %q", final[0].Content)
			}
		})
	}
}

func TestRestoreRejectsForeignVersion(t *testing.T) {
	for name, store := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			project := mustProject(t, store, "ownership")
			a := mustFile(t, store, project.ID, "a.go", "a1")
			b := mustFile(t, store, project.ID, "b.go", "b1")

			if _, err := store.UpdateFileContent(ctx, a.ID, "a2"); err != nil {
				t.Fatalf("UpdateFileContent: %v", err)
			}
			versionsOfA, err := store.ListFileVersions(ctx, a.ID)
			if err != nil || len(versionsOfA) != 1 {
				t.Fatalf("Expected one version of a, got %v (%v)", versionsOfA, err)
			}

			// Version record exists, but belongs to a different file
			if _, err := store.RestoreFileVersion(ctx, b.ID, versionsOfA[0].ID); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Expected ErrNotFound restoring foreign version, got %v", err)
			}

			// Target file unchanged
			got, _ := store.GetFile(ctx, b.ID)
			if got.Content != "b1" {
				t.Errorf("Foreign restore mutated file: %q", got.Content)
			}
		})
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	for name, store := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			project := mustProject(t, store, "doomed")
			keeper := mustProject(t, store, "keeper")

			file := mustFile(t, store, project.ID, "index.js", "one")
			if _, err := store.UpdateFileContent(ctx, file.ID, "two"); err != nil {
				t.Fatalf("UpdateFileContent: %v", err)
			}
			if _, err := store.CreateMessage(ctx, &models.InsertMessage{
				ProjectID: project.ID, Role: models.RoleUser, Content: "hello",
			}); err != nil {
				t.Fatalf("CreateMessage: %v", err)
			}
			if _, err := store.CreateTest(ctx, &models.InsertTest{
				FileID: file.ID, Name: "smoke", Content: "assert(true)",
			}); err != nil {
				t.Fatalf("CreateTest: %v", err)
			}
			if _, err := store.CreateAiAnalysis(ctx, &models.InsertAiAnalysis{
				FileID:       file.ID,
				AnalysisType: "code-review",
				Result:       models.NewJSON([]byte(`{"summary":"ok"}`)),
			}); err != nil {
				t.Fatalf("CreateAiAnalysis: %v", err)
			}

			keeperFile := mustFile(t, store, keeper.ID, "keep.js", "kept")

			if err := store.DeleteProject(ctx, project.ID); err != nil {
				t.Fatalf("DeleteProject: %v", err)
			}

			if _, err := store.GetProject(ctx, project.ID); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Project survived delete: %v", err)
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
			if tests, _ := store.ListTestsByFile(ctx, file.ID); len(tests) != 0 {
				t.Errorf("Tests survived cascade: %d", len(tests))
			}
			if analyses, _ := store.ListAnalysesByFile(ctx, file.ID); len(analyses) != 0 {
				t.Errorf("Analyses survived cascade: %d", len(analyses))
			}

			// Unrelated project untouched
			if _, err := store.GetFile(ctx, keeperFile.ID); err != nil {
				t.Errorf("Cascade leaked into another project: %v", err)
			}
		})
	}
}

func TestMessagesOrderAndBulkDelete(t *testing.T) {
	for name, store := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			project := mustProject(t, store, "chat")

			for _, content := range []string{"one", "two", "three"} {
				if _, err := store.CreateMessage(ctx, &models.InsertMessage{
					ProjectID: project.ID, Role: models.RoleUser, Content: content,
				}); err != nil {
					t.Fatalf("CreateMessage(%s): %v", content, err)
				}
			}

			messages, err := store.ListMessagesByProject(ctx, project.ID)
			if err != nil {
				t.Fatalf("ListMessagesByProject: %v", err)
			}
			if len(messages) != 3 {
				t.Fatalf("Expected 3 messages, got %d", len(messages))
			}
			// Chronological order
			for i, want := range []string{"one", "two", "three"} {
				if messages[i].Content != want {
					t.Errorf("Position %d: expected %q, got %q", i, want, messages[i].Content)
				}
			}

			if err := store.DeleteMessagesByProject(ctx, project.ID); err != nil {
				t.Fatalf("DeleteMessagesByProject: %v", err)
			}
			if remaining, _ := store.ListMessagesByProject(ctx, project.ID); len(remaining) != 0 {
				t.Errorf("Messages remained after bulk delete: %d", len(remaining))
			}
			// Second delete of nothing still succeeds
			if err := store.DeleteMessagesByProject(ctx, project.ID); err != nil {
				t.Errorf("Bulk delete not idempotent: %v", err)
			}
		})
	}
}

func TestTestRecordLifecycle(t *testing.T) {
	for name, store := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			project := mustProject(t, store, "tested")
			file := mustFile(t, store, project.ID, "sum.go", "func Sum() {}")

			created, err := store.CreateTest(ctx, &models.InsertTest{
				FileID: file.ID, Name: "sum works", Content: "Sum()",
			})
			if err != nil {
				t.Fatalf("CreateTest: %v", err)
			}
			if created.Status != models.TestStatusPending {
				t.Errorf("Expected default status pending, got %q", created.Status)
			}

			// Partial update merges only supplied fields
			status := models.TestStatusPassed
			result := "3 assertions passed"
			updated, err := store.UpdateTest(ctx, created.ID, &models.TestPatch{
				Status: &status, Result: &result,
			})
			if err != nil {
				t.Fatalf("UpdateTest: %v", err)
			}
			if updated.Status != models.TestStatusPassed {
				t.Errorf("Status not applied: %q", updated.Status)
			}
			if updated.Result == nil || *updated.Result != result {
				t.Errorf("Result not applied: %v", updated.Result)
			}
			if updated.Name != "sum works" {
				t.Errorf("Name changed on status patch: %q", updated.Name)
			}

			bad := "exploded"
			if _, err := store.UpdateTest(ctx, created.ID, &models.TestPatch{Status: &bad}); err == nil {
				t.Error("Expected validation error for unknown status")
			}

			if err := store.DeleteTest(ctx, created.ID); err != nil {
				t.Fatalf("DeleteTest: %v", err)
			}
			if err := store.DeleteTest(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Expected ErrNotFound on double delete, got %v", err)
			}
		})
	}
}

func TestAnalysisHistory(t *testing.T) {
	for name, store := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			project := mustProject(t, store, "analyzed")
			file := mustFile(t, store, project.ID, "app.ts", "let x = 1")

			for _, raw := range []string{`{"pass":1}`, `{"pass":2}`} {
				if _, err := store.CreateAiAnalysis(ctx, &models.InsertAiAnalysis{
					FileID:       file.ID,
					AnalysisType: "code-review",
					Result:       models.NewJSON([]byte(raw)),
				}); err != nil {
					t.Fatalf("CreateAiAnalysis: %v", err)
				}
			}
			if _, err := store.CreateAiAnalysis(ctx, &models.InsertAiAnalysis{
				FileID:       file.ID,
				AnalysisType: "security",
				Result:       models.NewJSON([]byte(`{"riskLevel":"safe"}`)),
			}); err != nil {
				t.Fatalf("CreateAiAnalysis: %v", err)
			}

			all, err := store.ListAnalysesByFile(ctx, file.ID)
			if err != nil {
				t.Fatalf("ListAnalysesByFile: %v", err)
			}
			if len(all) != 3 {
				t.Fatalf("Expected 3 analyses, got %d", len(all))
			}
			// Newest first
			if all[0].AnalysisType != "security" {
				t.Errorf("Expected newest analysis first, got %q", all[0].AnalysisType)
			}

			latest, err := store.GetLatestAnalysis(ctx, file.ID, "code-review")
			if err != nil {
				t.Fatalf("GetLatestAnalysis: %v", err)
			}
			if string(latest.Result.JSON) != `{"pass":2}` {
				t.Errorf("Expected latest code-review {\"pass\":2}, got %s", latest.Result.JSON)
			}

			if _, err := store.GetLatestAnalysis(ctx, file.ID, "performance"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Expected ErrNotFound for absent type, got %v", err)
			}
		})
	}
}
