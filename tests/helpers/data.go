package helpers

import (
	"context"
	"testing"

	"github.com/codecanvas/projectdb/internal/models"
	"github.com/codecanvas/projectdb/internal/storage"
)

// CreateTestProject creates a project through the storage contract
func CreateTestProject(t *testing.T, store storage.Storage, name string) *models.Project {
	t.Helper()
	project, err := store.CreateProject(context.Background(), &models.InsertProject{Name: name})
	if err != nil {
		t.Fatalf("Failed to create project %s: %v", name, err)
	}
	return project
}

// CreateTestFile creates a file with content in a project
func CreateTestFile(t *testing.T, store storage.Storage, projectID uint64, name, path, content string) *models.File {
	t.Helper()
	file, err := store.CreateFile(context.Background(), &models.InsertFile{
		ProjectID: projectID,
		Name:      name,
		Path:      path,
		Content:   content,
		Type:      models.FileTypeFile,
	})
	if err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	return file
}

// UpdateTestFileContent overwrites a file's content, producing a version snapshot
func UpdateTestFileContent(t *testing.T, store storage.Storage, fileID uint64, content string) *models.File {
	t.Helper()
	file, err := store.UpdateFileContent(context.Background(), fileID, content)
	if err != nil {
		t.Fatalf("Failed to update file %d: %v", fileID, err)
	}
	return file
}

// CreateTestMessage appends a conversation message to a project
func CreateTestMessage(t *testing.T, store storage.Storage, projectID uint64, role, content string) *models.Message {
	t.Helper()
	message, err := store.CreateMessage(context.Background(), &models.InsertMessage{
		ProjectID: projectID,
		Role:      role,
		Content:   content,
	})
	if err != nil {
		t.Fatalf("Failed to create message: %v", err)
	}
	return message
}
