package handlers

import (
	"fmt"

	"github.com/codecanvas/projectdb/internal/ai"
	"github.com/codecanvas/projectdb/internal/models"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/types"
	"github.com/codecanvas/projectdb/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// AssistantHandler handles the conversational and code generation routes
type AssistantHandler struct {
	Store     storage.Storage
	Assistant ai.Assistant
}

// chatRequest is the body for POST /api/chat. ProjectID tolerates string or
// numeric JSON encodings.
type chatRequest struct {
	ProjectID types.FlexUint64 `json:"projectId"`
	Message   string           `json:"message"`
}

// generateRequest is the body for POST /api/generate-code.
type generateRequest struct {
	ProjectID types.FlexUint64 `json:"projectId"`
	Prompt    string           `json:"prompt"`
	Context   string           `json:"context"`
}

// Chat handles POST /api/chat
// @Summary Chat with the assistant
// @Description Send a message in a project's conversation. The user message
// @Description and the assistant's reply are both persisted; the reply
// @Description message is returned.
// @Tags Assistant
// @Accept json
// @Produce json
// @Param body body handlers.chatRequest true "Chat request"
// @Success 200 {object} models.Message
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /chat [post]
func (h *AssistantHandler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid chat request", fiber.StatusBadRequest, "validation")
	}
	projectID := uint64(req.ProjectID)
	if projectID == 0 || req.Message == "" {
		return respondError(c, types.NewValidationError("projectId and message are required"), "", "chat")
	}

	if _, err := h.Store.GetProject(c.Context(), projectID); err != nil {
		return respondError(c, err, fmt.Sprintf("Project %d not found", projectID), "chat")
	}

	prior, err := h.Store.ListMessagesByProject(c.Context(), projectID)
	if err != nil {
		return respondError(c, err, "", "chat")
	}
	history := make([]ai.ChatMessage, 0, len(prior))
	for _, m := range prior {
		history = append(history, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}

	reply, err := h.Assistant.Chat(c.Context(), req.Message, history)
	if err != nil {
		return respondError(c, err, "", "chat")
	}

	if _, err := h.Store.CreateMessage(c.Context(), &models.InsertMessage{
		ProjectID: projectID,
		Role:      models.RoleUser,
		Content:   req.Message,
	}); err != nil {
		return respondError(c, err, "", "chat")
	}

	assistantMessage, err := h.Store.CreateMessage(c.Context(), &models.InsertMessage{
		ProjectID: projectID,
		Role:      models.RoleAssistant,
		Content:   reply,
	})
	if err != nil {
		return respondError(c, err, "", "chat")
	}

	return c.Status(fiber.StatusOK).JSON(assistantMessage)
}

// GenerateCode handles POST /api/generate-code
// @Summary Generate project files
// @Description Generate files from a prompt, persist them into the project,
// @Description and record the explanation as an assistant message
// @Tags Assistant
// @Accept json
// @Produce json
// @Param body body handlers.generateRequest true "Generation request"
// @Success 200 {object} ai.CodeGeneration
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /generate-code [post]
func (h *AssistantHandler) GenerateCode(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid generation request", fiber.StatusBadRequest, "validation")
	}
	projectID := uint64(req.ProjectID)
	if projectID == 0 || req.Prompt == "" {
		return respondError(c, types.NewValidationError("projectId and prompt are required"), "", "generateCode")
	}

	if _, err := h.Store.GetProject(c.Context(), projectID); err != nil {
		return respondError(c, err, fmt.Sprintf("Project %d not found", projectID), "generateCode")
	}

	prompt := req.Prompt
	if req.Context != "" {
		prompt = fmt.Sprintf("%s\n\nAdditional context: %s", prompt, req.Context)
	}

	existing, err := h.Store.ListFilesByProject(c.Context(), projectID)
	if err != nil {
		return respondError(c, err, "", "generateCode")
	}
	seed := make([]ai.GeneratedFile, 0, len(existing))
	for _, f := range existing {
		if f.Type != models.FileTypeFile {
			continue
		}
		seed = append(seed, ai.GeneratedFile{Name: f.Name, Path: f.Path, Content: f.Content, Type: f.Type})
	}

	result, err := h.Assistant.GenerateCode(c.Context(), prompt, seed)
	if err != nil {
		return respondError(c, err, "", "generateCode")
	}

	for _, generated := range result.Files {
		payload := models.InsertFile{
			ProjectID: projectID,
			Name:      generated.Name,
			Path:      generated.Path,
			Content:   generated.Content,
			Type:      generated.Type,
		}
		if payload.Type == "" {
			payload.Type = models.FileTypeFile
		}
		if err := payload.Validate(); err != nil {
			return respondError(c, &ai.UpstreamError{Message: "generated file rejected: " + err.Error()}, "", "generateCode")
		}
		if _, err := h.Store.CreateFile(c.Context(), &payload); err != nil {
			return respondError(c, err, "", "generateCode")
		}
	}

	if result.Explanation != "" {
		if _, err := h.Store.CreateMessage(c.Context(), &models.InsertMessage{
			ProjectID: projectID,
			Role:      models.RoleAssistant,
			Content:   result.Explanation,
		}); err != nil {
			return respondError(c, err, "", "generateCode")
		}
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
