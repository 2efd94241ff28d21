package handlers

import (
	"fmt"

	"github.com/codecanvas/projectdb/internal/models"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// TestHandler handles test record routes
type TestHandler struct {
	Store storage.Storage
}

// CreateTest handles POST /api/tests
// @Summary Create a test record
// @Description Register a test attached to a file, status defaults to pending
// @Tags Tests
// @Accept json
// @Produce json
// @Param test body models.InsertTest true "Test payload"
// @Success 201 {object} models.Test
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tests [post]
func (h *TestHandler) CreateTest(c *fiber.Ctx) error {
	var payload models.InsertTest
	if err := c.BodyParser(&payload); err != nil {
		return utils.ErrorResponse(c, "Invalid test data", fiber.StatusBadRequest, "validation")
	}
	if err := payload.Validate(); err != nil {
		return respondError(c, err, "", "createTest")
	}

	test, err := h.Store.CreateTest(c.Context(), &payload)
	if err != nil {
		return respondError(c, err, "", "createTest")
	}

	return c.Status(fiber.StatusCreated).JSON(test)
}

// ListFileTests handles GET /api/files/:fileId/tests
// @Summary List file tests
// @Description List the test records attached to a file
// @Tags Tests
// @Produce json
// @Param fileId path int true "File ID"
// @Success 200 {array} models.Test
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /files/{fileId}/tests [get]
func (h *TestHandler) ListFileTests(c *fiber.Ctx) error {
	fileID, err := parseID(c, "fileId")
	if err != nil {
		return respondError(c, err, "", "listFileTests")
	}

	tests, err := h.Store.ListTestsByFile(c.Context(), fileID)
	if err != nil {
		return respondError(c, err, "", "listFileTests")
	}

	return c.Status(fiber.StatusOK).JSON(tests)
}

// UpdateTest handles PATCH /api/tests/:id
// @Summary Update a test record
// @Description Partially update a test's name, content, status, or result
// @Tags Tests
// @Accept json
// @Produce json
// @Param id path int true "Test ID"
// @Param patch body models.TestPatch true "Fields to update"
// @Success 200 {object} models.Test
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tests/{id} [patch]
func (h *TestHandler) UpdateTest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "", "updateTest")
	}

	var patch models.TestPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.ErrorResponse(c, "Invalid test data", fiber.StatusBadRequest, "validation")
	}
	if err := patch.Validate(); err != nil {
		return respondError(c, err, "", "updateTest")
	}

	test, err := h.Store.UpdateTest(c.Context(), id, &patch)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Test %d not found", id), "updateTest")
	}

	return c.Status(fiber.StatusOK).JSON(test)
}

// DeleteTest handles DELETE /api/tests/:id
// @Summary Delete a test record
// @Tags Tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tests/{id} [delete]
func (h *TestHandler) DeleteTest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "", "deleteTest")
	}

	if err := h.Store.DeleteTest(c.Context(), id); err != nil {
		return respondError(c, err, fmt.Sprintf("Test %d not found", id), "deleteTest")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
