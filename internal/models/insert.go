package models

import (
	"strings"

	"github.com/codecanvas/projectdb/internal/types"
)

// Insert payloads carry only the caller-suppliable subset of each entity.
// IDs and timestamps are always engine-assigned.

// InsertProject is the creation payload for a Project.
type InsertProject struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Template    *string `json:"template"`
}

// Validate checks required fields.
func (p *InsertProject) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return types.NewValidationError("name is required")
	}
	return nil
}

// InsertFile is the creation payload for a File. Content defaults to empty.
type InsertFile struct {
	ProjectID uint64 `json:"projectId"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Content   string `json:"content"`
	Type      string `json:"type"`
}

// Validate checks required fields and the type enum.
func (f *InsertFile) Validate() error {
	if f.ProjectID == 0 {
		return types.NewValidationError("projectId is required")
	}
	if strings.TrimSpace(f.Name) == "" {
		return types.NewValidationError("name is required")
	}
	if strings.TrimSpace(f.Path) == "" {
		return types.NewValidationError("path is required")
	}
	switch f.Type {
	case FileTypeFile, FileTypeFolder, FileTypeTest:
		return nil
	default:
		return types.NewValidationError("type must be one of: file, folder, test")
	}
}

// InsertMessage is the creation payload for a Message. Metadata defaults to null.
type InsertMessage struct {
	ProjectID uint64 `json:"projectId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Metadata  JSON   `json:"metadata"`
}

// Validate checks required fields and the role enum.
func (m *InsertMessage) Validate() error {
	if m.ProjectID == 0 {
		return types.NewValidationError("projectId is required")
	}
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return types.NewValidationError("role must be one of: user, assistant")
	}
	if m.Content == "" {
		return types.NewValidationError("content is required")
	}
	return nil
}

// InsertTest is the creation payload for a Test. Status defaults to pending.
type InsertTest struct {
	FileID  uint64 `json:"fileId"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// Validate checks required fields and normalizes the status.
func (t *InsertTest) Validate() error {
	if t.FileID == 0 {
		return types.NewValidationError("fileId is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return types.NewValidationError("name is required")
	}
	if t.Status == "" {
		t.Status = TestStatusPending
	}
	switch t.Status {
	case TestStatusPending, TestStatusPassed, TestStatusFailed:
		return nil
	default:
		return types.NewValidationError("status must be one of: pending, passed, failed")
	}
}

// InsertAiAnalysis is the creation payload for an AiAnalysis.
type InsertAiAnalysis struct {
	FileID       uint64  `json:"fileId"`
	AnalysisType string  `json:"analysisType"`
	Result       JSON    `json:"result"`
	Severity     *string `json:"severity"`
	Suggestions  JSON    `json:"suggestions"`
	Metadata     JSON    `json:"metadata"`
}

// Validate checks required fields.
func (a *InsertAiAnalysis) Validate() error {
	if a.FileID == 0 {
		return types.NewValidationError("fileId is required")
	}
	if strings.TrimSpace(a.AnalysisType) == "" {
		return types.NewValidationError("analysisType is required")
	}
	if a.Result.IsNull() {
		return types.NewValidationError("result is required")
	}
	return nil
}

// ProjectPatch is a partial update for a Project. Nil fields are untouched;
// CreatedAt is never writable.
type ProjectPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Template    *string `json:"template"`
}

// Empty reports whether the patch carries no fields.
func (p *ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Template == nil
}

// Validate rejects blanking the name.
func (p *ProjectPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return types.NewValidationError("name cannot be empty")
	}
	return nil
}

// TestPatch is a partial update for a Test's mutable fields.
type TestPatch struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
	Result  *string `json:"result"`
}

// Validate checks the status enum when supplied.
func (t *TestPatch) Validate() error {
	if t.Status != nil {
		switch *t.Status {
		case TestStatusPending, TestStatusPassed, TestStatusFailed:
		default:
			return types.NewValidationError("status must be one of: pending, passed, failed")
		}
	}
	return nil
}
