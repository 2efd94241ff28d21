package models

import (
	"time"
)

// File type values
const (
	FileTypeFile   = "file"
	FileTypeFolder = "folder"
	FileTypeTest   = "test"
)

// Message role values
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Test status values
const (
	TestStatusPending = "pending"
	TestStatusPassed  = "passed"
	TestStatusFailed  = "failed"
)

// Project is the root aggregate: it owns files and messages.
type Project struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"size:1024" json:"description"`
	Template    *string   `gorm:"size:255" json:"template"`
	CreatedAt   time.Time `json:"createdAt"`
}

// File is a pathed text artifact with live content and a version history.
// Path is slash-delimited and not required to be unique within a project.
type File struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uint64    `gorm:"not null;index" json:"projectId"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Path      string    `gorm:"size:1024;not null" json:"path"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileVersion is an immutable snapshot of a file's content taken just before
// an overwrite. For a given FileID, Version is a gap-free sequence from 1.
type FileVersion struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID    uint64    `gorm:"not null;index" json:"fileId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Version   uint64    `gorm:"not null" json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is one chat turn belonging to a project. Append-only.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uint64    `gorm:"not null;index" json:"projectId"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Metadata  JSON      `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
}

// Test records a generated test file and its latest execution outcome.
type Test struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID    uint64    `gorm:"not null;index" json:"fileId"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Status    string    `gorm:"size:32;not null" json:"status"`
	Result    *string   `gorm:"type:text" json:"result"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AiAnalysis caches one AI analysis run for a file. Append-only; consumers
// look up the latest row per (file, type).
type AiAnalysis struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID       uint64    `gorm:"not null;index" json:"fileId"`
	AnalysisType string    `gorm:"size:64;not null" json:"analysisType"`
	Result       JSON      `gorm:"type:json;not null" json:"result"`
	Severity     *string   `gorm:"size:32" json:"severity"`
	Suggestions  JSON      `gorm:"type:json" json:"suggestions"`
	Metadata     JSON      `gorm:"type:json" json:"metadata"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// TableName overrides the table name for File
func (File) TableName() string {
	return "files"
}

// TableName overrides the table name for FileVersion
func (FileVersion) TableName() string {
	return "file_versions"
}

// TableName overrides the table name for Message
func (Message) TableName() string {
	return "messages"
}

// TableName overrides the table name for Test
func (Test) TableName() string {
	return "tests"
}

// TableName overrides the table name for AiAnalysis
func (AiAnalysis) TableName() string {
	return "ai_analyses"
}
