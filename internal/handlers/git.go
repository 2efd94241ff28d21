package handlers

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/types"
	"github.com/codecanvas/projectdb/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GitHandler projects version history as git-like views. Branches, checkout,
// pull, and push are simulated; commits are derived from file version records.
type GitHandler struct {
	Store storage.Storage
}

// GitCommit is one commit in the projected history.
type GitCommit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Files   []string  `json:"files"`
}

// GitBranch is one branch in the simulated branch list.
type GitBranch struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

// GitStatus reports the working tree projection. Every stored file shows as
// modified; the other buckets are always empty.
type GitStatus struct {
	Modified  []string `json:"modified"`
	Added     []string `json:"added"`
	Deleted   []string `json:"deleted"`
	Untracked []string `json:"untracked"`
}

const commitAuthor = "AI Agent"

// Status handles GET /api/git/:projectId/status
// @Summary Git status projection
// @Description Report the project's files as the modified set
// @Tags Git
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} handlers.GitStatus
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /git/{projectId}/status [get]
func (h *GitHandler) Status(c *fiber.Ctx) error {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return respondError(c, err, "", "gitStatus")
	}

	files, err := h.Store.ListFilesByProject(c.Context(), projectID)
	if err != nil {
		return respondError(c, err, "", "gitStatus")
	}

	status := GitStatus{
		Modified:  make([]string, 0, len(files)),
		Added:     []string{},
		Deleted:   []string{},
		Untracked: []string{},
	}
	for _, f := range files {
		status.Modified = append(status.Modified, f.Path)
	}

	return c.Status(fiber.StatusOK).JSON(status)
}

// Commits handles GET /api/git/:projectId/commits
// @Summary Git commit projection
// @Description Aggregate version snapshots across the project's files into a
// @Description newest-first commit list
// @Tags Git
// @Produce json
// @Param projectId path int true "Project ID"
// @Param limit query int false "Maximum commits to return" default(10)
// @Success 200 {array} handlers.GitCommit
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /git/{projectId}/commits [get]
func (h *GitHandler) Commits(c *fiber.Ctx) error {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return respondError(c, err, "", "gitCommits")
	}

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	files, err := h.Store.ListFilesByProject(c.Context(), projectID)
	if err != nil {
		return respondError(c, err, "", "gitCommits")
	}

	type versionEntry struct {
		id        uint64
		version   uint64
		createdAt time.Time
		fileName  string
		filePath  string
	}

	var entries []versionEntry
	for _, f := range files {
		versions, err := h.Store.ListFileVersions(c.Context(), f.ID)
		if err != nil {
			return respondError(c, err, "", "gitCommits")
		}
		for _, v := range versions {
			entries = append(entries, versionEntry{
				id:        v.ID,
				version:   v.Version,
				createdAt: v.CreatedAt,
				fileName:  f.Name,
				filePath:  f.Path,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].createdAt.Equal(entries[j].createdAt) {
			return entries[i].createdAt.After(entries[j].createdAt)
		}
		return entries[i].id > entries[j].id
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	commits := make([]GitCommit, 0, len(entries))
	for _, e := range entries {
		commits = append(commits, GitCommit{
			Hash:    fmt.Sprintf("commit-%d", e.id),
			Message: fmt.Sprintf("Updated %s (version %d)", e.fileName, e.version),
			Author:  commitAuthor,
			Date:    e.createdAt,
			Files:   []string{e.filePath},
		})
	}

	return c.Status(fiber.StatusOK).JSON(commits)
}

// Branches handles GET /api/git/:projectId/branches
// @Summary List branches
// @Description List the simulated branch set
// @Tags Git
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} handlers.GitBranch
// @Router /git/{projectId}/branches [get]
func (h *GitHandler) Branches(c *fiber.Ctx) error {
	if _, err := parseID(c, "projectId"); err != nil {
		return respondError(c, err, "", "gitBranches")
	}

	return c.Status(fiber.StatusOK).JSON([]GitBranch{
		{Name: "main", Current: true},
		{Name: "develop", Current: false},
	})
}

// CreateBranch handles POST /api/git/:projectId/branches
// @Summary Create a branch
// @Description Create a simulated branch
// @Tags Git
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param body body object true "{name}"
// @Success 200 {object} handlers.GitBranch
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /git/{projectId}/branches [post]
func (h *GitHandler) CreateBranch(c *fiber.Ctx) error {
	if _, err := parseID(c, "projectId"); err != nil {
		return respondError(c, err, "", "gitCreateBranch")
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil || body.Name == "" {
		return respondError(c, types.NewValidationError("branch name required"), "", "gitCreateBranch")
	}

	return c.Status(fiber.StatusOK).JSON(GitBranch{Name: body.Name, Current: false})
}

// Checkout handles POST /api/git/:projectId/checkout
// @Summary Checkout a branch
// @Description Switch to a simulated branch
// @Tags Git
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param body body object true "{branch}"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /git/{projectId}/checkout [post]
func (h *GitHandler) Checkout(c *fiber.Ctx) error {
	if _, err := parseID(c, "projectId"); err != nil {
		return respondError(c, err, "", "gitCheckout")
	}

	var body struct {
		Branch string `json:"branch"`
	}
	if err := c.BodyParser(&body); err != nil || body.Branch == "" {
		return respondError(c, types.NewValidationError("branch name required"), "", "gitCheckout")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "branch": body.Branch})
}

// Commit handles POST /api/git/:projectId/commit
// @Summary Create a commit
// @Description Create a simulated commit record; files accepts a single path
// @Description or an array of paths
// @Tags Git
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param body body object true "{message, files}"
// @Success 200 {object} handlers.GitCommit
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /git/{projectId}/commit [post]
func (h *GitHandler) Commit(c *fiber.Ctx) error {
	if _, err := parseID(c, "projectId"); err != nil {
		return respondError(c, err, "", "gitCommit")
	}

	var body struct {
		Message string                 `json:"message"`
		Files   types.FlexList[string] `json:"files"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid commit request", fiber.StatusBadRequest, "validation")
	}
	if body.Message == "" {
		return respondError(c, types.NewValidationError("commit message required"), "", "gitCommit")
	}

	files := body.Files.Slice()
	if files == nil {
		files = []string{}
	}

	return c.Status(fiber.StatusOK).JSON(GitCommit{
		Hash:    "commit-" + uuid.NewString(),
		Message: body.Message,
		Author:  commitAuthor,
		Date:    time.Now().UTC(),
		Files:   files,
	})
}

// Pull handles POST /api/git/:projectId/pull
// @Summary Pull
// @Description Simulated pull, always up to date
// @Tags Git
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /git/{projectId}/pull [post]
func (h *GitHandler) Pull(c *fiber.Ctx) error {
	if _, err := parseID(c, "projectId"); err != nil {
		return respondError(c, err, "", "gitPull")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Already up to date"})
}

// Push handles POST /api/git/:projectId/push
// @Summary Push
// @Description Simulated push
// @Tags Git
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /git/{projectId}/push [post]
func (h *GitHandler) Push(c *fiber.Ctx) error {
	if _, err := parseID(c, "projectId"); err != nil {
		return respondError(c, err, "", "gitPush")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Pushed successfully"})
}
