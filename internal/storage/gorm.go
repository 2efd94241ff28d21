package storage

import (
	"context"
	"errors"

	"github.com/codecanvas/projectdb/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Database is the relational backend over GORM. One table per entity, plain
// integer foreign key columns; cascades are application-level and run inside
// a transaction so no partial delete is visible.
//
// Version numbering counts existing rows for the file before insert. The
// count-then-insert is transactional but not serialized across requests:
// callers get the single-writer-per-file contract only.
type Database struct {
	db *gorm.DB
}

// NewDatabase wraps an established GORM connection.
func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

var _ Storage = (*Database)(nil)

func (s *Database) CreateProject(ctx context.Context, in *models.InsertProject) (*models.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p := models.Project{
		Name:        in.Name,
		Description: in.Description,
		Template:    in.Template,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, storageErr("createProject", err)
	}
	return &p, nil
}

func (s *Database) GetProject(ctx context.Context, id uint64) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("getProject", err)
	}
	return &p, nil
}

func (s *Database) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&projects).Error; err != nil {
		return nil, storageErr("listProjects", err)
	}
	return projects, nil
}

func (s *Database) UpdateProject(ctx context.Context, id uint64, patch *models.ProjectPatch) (*models.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Template != nil {
		updates["template"] = *patch.Template
	}

	var p models.Project
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("updateProject", err)
	}
	if len(updates) == 0 {
		return &p, nil
	}
	if err := s.db.WithContext(ctx).Model(&p).Updates(updates).Error; err != nil {
		return nil, storageErr("updateProject", err)
	}
	return &p, nil
}

func (s *Database) DeleteProject(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		var fileIDs []uint64
		if err := tx.Model(&models.File{}).
			Where("project_id = ?", id).
			Pluck("id", &fileIDs).Error; err != nil {
			return err
		}
		if len(fileIDs) > 0 {
			if err := deleteFileChildren(tx, fileIDs); err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).
				Delete(&models.File{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("project_id = ?", id).Delete(&models.Message{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return storageErr("deleteProject", err)
	}
	return nil
}

// deleteFileChildren removes version history, tests, and analyses for a set
// of files inside the caller's transaction.
func deleteFileChildren(tx *gorm.DB, fileIDs []uint64) error {
	if err := tx.Where("file_id IN ?", fileIDs).Delete(&models.FileVersion{}).Error; err != nil {
		return err
	}
	if err := tx.Where("file_id IN ?", fileIDs).Delete(&models.Test{}).Error; err != nil {
		return err
	}
	return tx.Where("file_id IN ?", fileIDs).Delete(&models.AiAnalysis{}).Error
}

func (s *Database) CreateFile(ctx context.Context, in *models.InsertFile) (*models.File, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	f := models.File{
		ProjectID: in.ProjectID,
		Name:      in.Name,
		Path:      in.Path,
		Content:   in.Content,
		Type:      in.Type,
	}
	if err := s.db.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, storageErr("createFile", err)
	}
	return &f, nil
}

func (s *Database) GetFile(ctx context.Context, id uint64) (*models.File, error) {
	var f models.File
	if err := s.db.WithContext(ctx).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("getFile", err)
	}
	return &f, nil
}

func (s *Database) ListFilesByProject(ctx context.Context, projectID uint64) ([]models.File, error) {
	var files []models.File
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&files).Error; err != nil {
		return nil, storageErr("listFilesByProject", err)
	}
	return files, nil
}

func (s *Database) UpdateFileContent(ctx context.Context, id uint64, content string) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&file, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Snapshot the prior content before overwriting
		var count int64
		if err := tx.Model(&models.FileVersion{}).
			Where("file_id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		snapshot := models.FileVersion{
			FileID:  id,
			Content: file.Content,
			Version: uint64(count) + 1,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		if err := tx.Model(&file).
			Updates(map[string]interface{}{"content": content}).Error; err != nil {
			return err
		}
		return tx.First(&file, id).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("updateFileContent", err)
	}
	return &file, nil
}

func (s *Database) DeleteFile(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.File{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return deleteFileChildren(tx, []uint64{id})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return storageErr("deleteFile", err)
	}
	return nil
}

func (s *Database) ListFileVersions(ctx context.Context, fileID uint64) ([]models.FileVersion, error) {
	var versions []models.FileVersion
	// Comment hint tags the hottest read path in slow-query logs
	if err := s.db.WithContext(ctx).
		Clauses(hints.CommentBefore("select", "file history")).
		Where("file_id = ?", fileID).
		Order("version DESC").
		Find(&versions).Error; err != nil {
		return nil, storageErr("listFileVersions", err)
	}
	return versions, nil
}

func (s *Database) RestoreFileVersion(ctx context.Context, fileID, versionID uint64) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&file, fileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var version models.FileVersion
		if err := tx.First(&version, versionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		// A version owned by another file is not-found to this caller
		if version.FileID != fileID {
			return ErrNotFound
		}

		// Restore is a direct overwrite, not a new edit: no snapshot is taken
		if err := tx.Model(&file).
			Updates(map[string]interface{}{"content": version.Content}).Error; err != nil {
			return err
		}
		return tx.First(&file, fileID).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("restoreFileVersion", err)
	}
	return &file, nil
}

func (s *Database) CreateMessage(ctx context.Context, in *models.InsertMessage) (*models.Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	m := models.Message{
		ProjectID: in.ProjectID,
		Role:      in.Role,
		Content:   in.Content,
		Metadata:  in.Metadata,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, storageErr("createMessage", err)
	}
	return &m, nil
}

func (s *Database) ListMessagesByProject(ctx context.Context, projectID uint64) ([]models.Message, error) {
	var messages []models.Message
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, storageErr("listMessagesByProject", err)
	}
	return messages, nil
}

func (s *Database) DeleteMessagesByProject(ctx context.Context, projectID uint64) error {
	// Idempotent bulk delete: zero rows affected is still success
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.Message{}).Error; err != nil {
		return storageErr("deleteMessagesByProject", err)
	}
	return nil
}

func (s *Database) CreateTest(ctx context.Context, in *models.InsertTest) (*models.Test, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t := models.Test{
		FileID:  in.FileID,
		Name:    in.Name,
		Content: in.Content,
		Status:  in.Status,
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, storageErr("createTest", err)
	}
	return &t, nil
}

func (s *Database) ListTestsByFile(ctx context.Context, fileID uint64) ([]models.Test, error) {
	var tests []models.Test
	if err := s.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Find(&tests).Error; err != nil {
		return nil, storageErr("listTestsByFile", err)
	}
	return tests, nil
}

func (s *Database) UpdateTest(ctx context.Context, id uint64, patch *models.TestPatch) (*models.Test, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var t models.Test
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("updateTest", err)
	}

	updates := make(map[string]interface{})
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Result != nil {
		updates["result"] = *patch.Result
	}
	if len(updates) == 0 {
		return &t, nil
	}
	if err := s.db.WithContext(ctx).Model(&t).Updates(updates).Error; err != nil {
		return nil, storageErr("updateTest", err)
	}
	return &t, nil
}

func (s *Database) DeleteTest(ctx context.Context, id uint64) error {
	result := s.db.WithContext(ctx).Delete(&models.Test{}, id)
	if result.Error != nil {
		return storageErr("deleteTest", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Database) CreateAiAnalysis(ctx context.Context, in *models.InsertAiAnalysis) (*models.AiAnalysis, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	a := models.AiAnalysis{
		FileID:       in.FileID,
		AnalysisType: in.AnalysisType,
		Result:       in.Result,
		Severity:     in.Severity,
		Suggestions:  in.Suggestions,
		Metadata:     in.Metadata,
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, storageErr("createAiAnalysis", err)
	}
	return &a, nil
}

func (s *Database) ListAnalysesByFile(ctx context.Context, fileID uint64) ([]models.AiAnalysis, error) {
	var analyses []models.AiAnalysis
	if err := s.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("created_at DESC, id DESC").
		Find(&analyses).Error; err != nil {
		return nil, storageErr("listAnalysesByFile", err)
	}
	return analyses, nil
}

func (s *Database) GetLatestAnalysis(ctx context.Context, fileID uint64, analysisType string) (*models.AiAnalysis, error) {
	var a models.AiAnalysis
	if err := s.db.WithContext(ctx).
		Where("file_id = ? AND analysis_type = ?", fileID, analysisType).
		Order("created_at DESC, id DESC").
		First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("getLatestAnalysis", err)
	}
	return &a, nil
}
