package handlers

import (
	"fmt"

	"github.com/codecanvas/projectdb/internal/models"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// FileHandler handles file and version routes
type FileHandler struct {
	Store storage.Storage
}

// fileContentPatch is the body for PATCH /api/files/:id.
type fileContentPatch struct {
	Content string `json:"content"`
}

// CreateFile handles POST /api/files
// @Summary Create a file
// @Description Create a file, folder, or test entry in a project
// @Tags Files
// @Accept json
// @Produce json
// @Param file body models.InsertFile true "File payload"
// @Success 201 {object} models.File
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /files [post]
func (h *FileHandler) CreateFile(c *fiber.Ctx) error {
	var payload models.InsertFile
	if err := c.BodyParser(&payload); err != nil {
		return utils.ErrorResponse(c, "Invalid file data", fiber.StatusBadRequest, "validation")
	}
	if err := payload.Validate(); err != nil {
		return respondError(c, err, "", "createFile")
	}

	file, err := h.Store.CreateFile(c.Context(), &payload)
	if err != nil {
		return respondError(c, err, "", "createFile")
	}

	return c.Status(fiber.StatusCreated).JSON(file)
}

// ListProjectFiles handles GET /api/projects/:projectId/files
// @Summary List project files
// @Description List all files belonging to a project
// @Tags Files
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} models.File
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/files [get]
func (h *FileHandler) ListProjectFiles(c *fiber.Ctx) error {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return respondError(c, err, "", "listProjectFiles")
	}

	files, err := h.Store.ListFilesByProject(c.Context(), projectID)
	if err != nil {
		return respondError(c, err, "", "listProjectFiles")
	}

	return c.Status(fiber.StatusOK).JSON(files)
}

// GetFile handles GET /api/files/:id
// @Summary Get a file
// @Description Get a file by id
// @Tags Files
// @Produce json
// @Param id path int true "File ID"
// @Success 200 {object} models.File
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /files/{id} [get]
func (h *FileHandler) GetFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "", "getFile")
	}

	file, err := h.Store.GetFile(c.Context(), id)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("File %d not found", id), "getFile")
	}

	return c.Status(fiber.StatusOK).JSON(file)
}

// UpdateFileContent handles PATCH /api/files/:id
// @Summary Update file content
// @Description Overwrite a file's content. The prior content is snapshotted
// @Description as the next version number before the overwrite.
// @Tags Files
// @Accept json
// @Produce json
// @Param id path int true "File ID"
// @Param body body handlers.fileContentPatch true "New content"
// @Success 200 {object} models.File
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /files/{id} [patch]
func (h *FileHandler) UpdateFileContent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "", "updateFileContent")
	}

	var patch fileContentPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.ErrorResponse(c, "Invalid file data", fiber.StatusBadRequest, "validation")
	}

	file, err := h.Store.UpdateFileContent(c.Context(), id, patch.Content)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("File %d not found", id), "updateFileContent")
	}

	return c.Status(fiber.StatusOK).JSON(file)
}

// DeleteFile handles DELETE /api/files/:id
// @Summary Delete a file
// @Description Delete a file and its versions, tests, and analyses
// @Tags Files
// @Produce json
// @Param id path int true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /files/{id} [delete]
func (h *FileHandler) DeleteFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "", "deleteFile")
	}

	if err := h.Store.DeleteFile(c.Context(), id); err != nil {
		return respondError(c, err, fmt.Sprintf("File %d not found", id), "deleteFile")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// ListFileVersions handles GET /api/files/:fileId/versions
// @Summary List file versions
// @Description List a file's version history, newest version first
// @Tags Versions
// @Produce json
// @Param fileId path int true "File ID"
// @Success 200 {array} models.FileVersion
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /files/{fileId}/versions [get]
func (h *FileHandler) ListFileVersions(c *fiber.Ctx) error {
	fileID, err := parseID(c, "fileId")
	if err != nil {
		return respondError(c, err, "", "listFileVersions")
	}

	versions, err := h.Store.ListFileVersions(c.Context(), fileID)
	if err != nil {
		return respondError(c, err, "", "listFileVersions")
	}

	return c.Status(fiber.StatusOK).JSON(versions)
}

// RestoreFileVersion handles POST /api/files/:fileId/restore/:versionId
// @Summary Restore a file version
// @Description Copy a historical version's content back into the live file.
// @Description No new version snapshot is created by the restore itself.
// @Tags Versions
// @Produce json
// @Param fileId path int true "File ID"
// @Param versionId path int true "Version record ID"
// @Success 200 {object} models.File
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /files/{fileId}/restore/{versionId} [post]
func (h *FileHandler) RestoreFileVersion(c *fiber.Ctx) error {
	fileID, err := parseID(c, "fileId")
	if err != nil {
		return respondError(c, err, "", "restoreFileVersion")
	}
	versionID, err := parseID(c, "versionId")
	if err != nil {
		return respondError(c, err, "", "restoreFileVersion")
	}

	file, err := h.Store.RestoreFileVersion(c.Context(), fileID, versionID)
	if err != nil {
		return respondError(c, err,
			fmt.Sprintf("Version %d not found for file %d", versionID, fileID), "restoreFileVersion")
	}

	return c.Status(fiber.StatusOK).JSON(file)
}
