package handlers

import (
	"fmt"

	"github.com/codecanvas/projectdb/internal/models"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/types"
	"github.com/codecanvas/projectdb/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// ProjectHandler handles project routes
type ProjectHandler struct {
	Store storage.Storage
}

// CreateProject handles POST /api/projects
// @Summary Create a project
// @Description Create a new project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body models.InsertProject true "Project payload"
// @Success 201 {object} models.Project
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var payload models.InsertProject
	if err := c.BodyParser(&payload); err != nil {
		return utils.ErrorResponse(c, "Invalid project data", fiber.StatusBadRequest, "validation")
	}
	if err := payload.Validate(); err != nil {
		return respondError(c, err, "", "createProject")
	}

	project, err := h.Store.CreateProject(c.Context(), &payload)
	if err != nil {
		return respondError(c, err, "", "createProject")
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

// ListProjects handles GET /api/projects
// @Summary List projects
// @Description List all projects, newest first
// @Tags Projects
// @Produce json
// @Success 200 {array} models.Project
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.Store.ListProjects(c.Context())
	if err != nil {
		return respondError(c, err, "", "listProjects")
	}
	return c.Status(fiber.StatusOK).JSON(projects)
}

// GetProject handles GET /api/projects/:id
// @Summary Get a project
// @Description Get a project by id
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "", "getProject")
	}

	project, err := h.Store.GetProject(c.Context(), id)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Project %d not found", id), "getProject")
	}

	return c.Status(fiber.StatusOK).JSON(project)
}

// UpdateProject handles PATCH /api/projects/:id
// @Summary Update a project
// @Description Partially update a project's name, description, or template
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param patch body models.ProjectPatch true "Fields to update"
// @Success 200 {object} models.Project
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects/{id} [patch]
func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "", "updateProject")
	}

	var patch models.ProjectPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.ErrorResponse(c, "Invalid project data", fiber.StatusBadRequest, "validation")
	}
	if patch.Empty() {
		return respondError(c, types.NewValidationError("no fields to update"), "", "updateProject")
	}
	if err := patch.Validate(); err != nil {
		return respondError(c, err, "", "updateProject")
	}

	project, err := h.Store.UpdateProject(c.Context(), id, &patch)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Project %d not found", id), "updateProject")
	}

	return c.Status(fiber.StatusOK).JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
// @Summary Delete a project
// @Description Delete a project and everything beneath it: files, file
// @Description versions, tests, analyses, and conversation messages
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "", "deleteProject")
	}

	if err := h.Store.DeleteProject(c.Context(), id); err != nil {
		return respondError(c, err, fmt.Sprintf("Project %d not found", id), "deleteProject")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
