package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/codecanvas/projectdb/internal/models"
)

// Memory is the in-process backend: keyed maps per entity type with monotonic
// counters starting at 1. State lives for the process lifetime only.
//
// Operations complete synchronously under one mutex, which also makes the
// snapshot-then-overwrite of UpdateFileContent atomic.
type Memory struct {
	mu sync.Mutex

	projects  map[uint64]models.Project
	files     map[uint64]models.File
	versions  map[uint64]models.FileVersion
	messages  map[uint64]models.Message
	tests     map[uint64]models.Test
	analyses  map[uint64]models.AiAnalysis

	projectID  uint64
	fileID     uint64
	versionID  uint64
	messageID  uint64
	testID     uint64
	analysisID uint64
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		projects: make(map[uint64]models.Project),
		files:    make(map[uint64]models.File),
		versions: make(map[uint64]models.FileVersion),
		messages: make(map[uint64]models.Message),
		tests:    make(map[uint64]models.Test),
		analyses: make(map[uint64]models.AiAnalysis),
	}
}

var _ Storage = (*Memory)(nil)

func (s *Memory) CreateProject(_ context.Context, in *models.InsertProject) (*models.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projectID++
	p := models.Project{
		ID:          s.projectID,
		Name:        in.Name,
		Description: in.Description,
		Template:    in.Template,
		CreatedAt:   time.Now(),
	}
	s.projects[p.ID] = p
	return &p, nil
}

func (s *Memory) GetProject(_ context.Context, id uint64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *Memory) ListProjects(_ context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, p)
	}
	// Newest-created-first; id breaks ties from same-instant creations
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		}
		return projects[i].ID > projects[j].ID
	})
	return projects, nil
}

func (s *Memory) UpdateProject(_ context.Context, id uint64, patch *models.ProjectPatch) (*models.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Template != nil {
		p.Template = patch.Template
	}
	s.projects[id] = p
	return &p, nil
}

func (s *Memory) DeleteProject(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)

	for fid, f := range s.files {
		if f.ProjectID != id {
			continue
		}
		delete(s.files, fid)
		s.deleteFileChildren(fid)
	}
	for mid, m := range s.messages {
		if m.ProjectID == id {
			delete(s.messages, mid)
		}
	}
	return nil
}

// deleteFileChildren removes a file's versions, tests, and analyses.
// Caller holds the mutex.
func (s *Memory) deleteFileChildren(fileID uint64) {
	for vid, v := range s.versions {
		if v.FileID == fileID {
			delete(s.versions, vid)
		}
	}
	for tid, t := range s.tests {
		if t.FileID == fileID {
			delete(s.tests, tid)
		}
	}
	for aid, a := range s.analyses {
		if a.FileID == fileID {
			delete(s.analyses, aid)
		}
	}
}

func (s *Memory) CreateFile(_ context.Context, in *models.InsertFile) (*models.File, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fileID++
	now := time.Now()
	f := models.File{
		ID:        s.fileID,
		ProjectID: in.ProjectID,
		Name:      in.Name,
		Path:      in.Path,
		Content:   in.Content,
		Type:      in.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.files[f.ID] = f
	return &f, nil
}

func (s *Memory) GetFile(_ context.Context, id uint64) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (s *Memory) ListFilesByProject(_ context.Context, projectID uint64) ([]models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]models.File, 0)
	for _, f := range s.files {
		if f.ProjectID == projectID {
			files = append(files, f)
		}
	}
	// No ordering contract for files; keep output stable anyway
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

func (s *Memory) UpdateFileContent(_ context.Context, id uint64, content string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Snapshot the prior content before overwriting
	var count uint64
	for _, v := range s.versions {
		if v.FileID == id {
			count++
		}
	}
	s.versionID++
	s.versions[s.versionID] = models.FileVersion{
		ID:        s.versionID,
		FileID:    id,
		Content:   f.Content,
		Version:   count + 1,
		CreatedAt: time.Now(),
	}

	f.Content = content
	f.UpdatedAt = time.Now()
	s.files[id] = f
	return &f, nil
}

func (s *Memory) DeleteFile(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return ErrNotFound
	}
	delete(s.files, id)
	s.deleteFileChildren(id)
	return nil
}

func (s *Memory) ListFileVersions(_ context.Context, fileID uint64) ([]models.FileVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := make([]models.FileVersion, 0)
	for _, v := range s.versions {
		if v.FileID == fileID {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version > versions[j].Version })
	return versions, nil
}

func (s *Memory) RestoreFileVersion(_ context.Context, fileID, versionID uint64) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[fileID]
	if !ok {
		return nil, ErrNotFound
	}
	v, ok := s.versions[versionID]
	if !ok || v.FileID != fileID {
		// A version belonging to another file is indistinguishable from a
		// missing one to the caller
		return nil, ErrNotFound
	}

	// Restore is a direct overwrite, not a new edit: no snapshot is taken
	f.Content = v.Content
	f.UpdatedAt = time.Now()
	s.files[fileID] = f
	return &f, nil
}

func (s *Memory) CreateMessage(_ context.Context, in *models.InsertMessage) (*models.Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messageID++
	m := models.Message{
		ID:        s.messageID,
		ProjectID: in.ProjectID,
		Role:      in.Role,
		Content:   in.Content,
		Metadata:  in.Metadata,
		CreatedAt: time.Now(),
	}
	s.messages[m.ID] = m
	return &m, nil
}

func (s *Memory) ListMessagesByProject(_ context.Context, projectID uint64) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]models.Message, 0)
	for _, m := range s.messages {
		if m.ProjectID == projectID {
			messages = append(messages, m)
		}
	}
	// Oldest-first; id breaks ties from same-instant appends
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID < messages[j].ID
	})
	return messages, nil
}

func (s *Memory) DeleteMessagesByProject(_ context.Context, projectID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for mid, m := range s.messages {
		if m.ProjectID == projectID {
			delete(s.messages, mid)
		}
	}
	// Idempotent bulk delete always reports success
	return nil
}

func (s *Memory) CreateTest(_ context.Context, in *models.InsertTest) (*models.Test, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.testID++
	now := time.Now()
	t := models.Test{
		ID:        s.testID,
		FileID:    in.FileID,
		Name:      in.Name,
		Content:   in.Content,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tests[t.ID] = t
	return &t, nil
}

func (s *Memory) ListTestsByFile(_ context.Context, fileID uint64) ([]models.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tests := make([]models.Test, 0)
	for _, t := range s.tests {
		if t.FileID == fileID {
			tests = append(tests, t)
		}
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].ID < tests[j].ID })
	return tests, nil
}

func (s *Memory) UpdateTest(_ context.Context, id uint64, patch *models.TestPatch) (*models.Test, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Content != nil {
		t.Content = *patch.Content
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Result != nil {
		t.Result = patch.Result
	}
	t.UpdatedAt = time.Now()
	s.tests[id] = t
	return &t, nil
}

func (s *Memory) DeleteTest(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tests[id]; !ok {
		return ErrNotFound
	}
	delete(s.tests, id)
	return nil
}

func (s *Memory) CreateAiAnalysis(_ context.Context, in *models.InsertAiAnalysis) (*models.AiAnalysis, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.analysisID++
	a := models.AiAnalysis{
		ID:           s.analysisID,
		FileID:       in.FileID,
		AnalysisType: in.AnalysisType,
		Result:       in.Result,
		Severity:     in.Severity,
		Suggestions:  in.Suggestions,
		Metadata:     in.Metadata,
		CreatedAt:    time.Now(),
	}
	s.analyses[a.ID] = a
	return &a, nil
}

func (s *Memory) ListAnalysesByFile(_ context.Context, fileID uint64) ([]models.AiAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	analyses := make([]models.AiAnalysis, 0)
	for _, a := range s.analyses {
		if a.FileID == fileID {
			analyses = append(analyses, a)
		}
	}
	// Newest-first
	sort.Slice(analyses, func(i, j int) bool {
		if !analyses[i].CreatedAt.Equal(analyses[j].CreatedAt) {
			return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
		}
		return analyses[i].ID > analyses[j].ID
	})
	return analyses, nil
}

func (s *Memory) GetLatestAnalysis(_ context.Context, fileID uint64, analysisType string) (*models.AiAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *models.AiAnalysis
	for _, a := range s.analyses {
		if a.FileID != fileID || a.AnalysisType != analysisType {
			continue
		}
		a := a
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) ||
			(a.CreatedAt.Equal(latest.CreatedAt) && a.ID > latest.ID) {
			latest = &a
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}
