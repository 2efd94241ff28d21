package handlers

import (
	"github.com/codecanvas/projectdb/internal/models"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/types"
	"github.com/codecanvas/projectdb/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles conversation message routes
type MessageHandler struct {
	Store storage.Storage
}

// CreateMessage handles POST /api/projects/:projectId/messages
// @Summary Create a message
// @Description Append a conversation message to a project
// @Tags Messages
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param message body models.InsertMessage true "Message payload"
// @Success 201 {object} models.Message
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/messages [post]
func (h *MessageHandler) CreateMessage(c *fiber.Ctx) error {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return respondError(c, err, "", "createMessage")
	}

	var payload models.InsertMessage
	if err := c.BodyParser(&payload); err != nil {
		return utils.ErrorResponse(c, "Invalid message data", fiber.StatusBadRequest, "validation")
	}
	if payload.ProjectID != 0 && payload.ProjectID != projectID {
		return respondError(c, types.NewValidationError("projectId mismatch"), "", "createMessage")
	}
	payload.ProjectID = projectID
	if err := payload.Validate(); err != nil {
		return respondError(c, err, "", "createMessage")
	}

	message, err := h.Store.CreateMessage(c.Context(), &payload)
	if err != nil {
		return respondError(c, err, "", "createMessage")
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// ListMessages handles GET /api/projects/:projectId/messages
// @Summary List project messages
// @Description List a project's conversation messages in chronological order
// @Tags Messages
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {array} models.Message
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/messages [get]
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return respondError(c, err, "", "listMessages")
	}

	messages, err := h.Store.ListMessagesByProject(c.Context(), projectID)
	if err != nil {
		return respondError(c, err, "", "listMessages")
	}

	return c.Status(fiber.StatusOK).JSON(messages)
}

// DeleteMessages handles DELETE /api/projects/:projectId/messages
// @Summary Delete project messages
// @Description Delete all of a project's messages. Succeeds even when there
// @Description are none.
// @Tags Messages
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/messages [delete]
func (h *MessageHandler) DeleteMessages(c *fiber.Ctx) error {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return respondError(c, err, "", "deleteMessages")
	}

	if err := h.Store.DeleteMessagesByProject(c.Context(), projectID); err != nil {
		return respondError(c, err, "", "deleteMessages")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
