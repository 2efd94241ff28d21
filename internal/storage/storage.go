package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/codecanvas/projectdb/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist, or when a
// version id exists but belongs to a different file. It is an expected,
// recoverable outcome that the HTTP surface maps to 404.
var ErrNotFound = errors.New("not found")

// StorageError wraps a backend-level failure (connectivity, transaction). The
// HTTP surface maps it to 500.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Storage is the persistence contract shared by the in-memory and relational
// backends. The backend is chosen once at boot and injected into callers; both
// implementations satisfy identical semantics.
//
// UpdateFileContent is the sole trigger for version creation: it snapshots the
// file's content *before* applying the new one. RestoreFileVersion overwrites
// the live content without creating a snapshot of its own.
type Storage interface {
	CreateProject(ctx context.Context, in *models.InsertProject) (*models.Project, error)
	GetProject(ctx context.Context, id uint64) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	UpdateProject(ctx context.Context, id uint64, patch *models.ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, id uint64) error

	CreateFile(ctx context.Context, in *models.InsertFile) (*models.File, error)
	GetFile(ctx context.Context, id uint64) (*models.File, error)
	ListFilesByProject(ctx context.Context, projectID uint64) ([]models.File, error)
	UpdateFileContent(ctx context.Context, id uint64, content string) (*models.File, error)
	DeleteFile(ctx context.Context, id uint64) error

	ListFileVersions(ctx context.Context, fileID uint64) ([]models.FileVersion, error)
	RestoreFileVersion(ctx context.Context, fileID, versionID uint64) (*models.File, error)

	CreateMessage(ctx context.Context, in *models.InsertMessage) (*models.Message, error)
	ListMessagesByProject(ctx context.Context, projectID uint64) ([]models.Message, error)
	DeleteMessagesByProject(ctx context.Context, projectID uint64) error

	CreateTest(ctx context.Context, in *models.InsertTest) (*models.Test, error)
	ListTestsByFile(ctx context.Context, fileID uint64) ([]models.Test, error)
	UpdateTest(ctx context.Context, id uint64, patch *models.TestPatch) (*models.Test, error)
	DeleteTest(ctx context.Context, id uint64) error

	CreateAiAnalysis(ctx context.Context, in *models.InsertAiAnalysis) (*models.AiAnalysis, error)
	ListAnalysesByFile(ctx context.Context, fileID uint64) ([]models.AiAnalysis, error)
	GetLatestAnalysis(ctx context.Context, fileID uint64, analysisType string) (*models.AiAnalysis, error)
}
