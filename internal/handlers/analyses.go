package handlers

import (
	"fmt"

	"github.com/codecanvas/projectdb/internal/ai"
	"github.com/codecanvas/projectdb/internal/analysis"
	"github.com/codecanvas/projectdb/internal/models"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/types"
	"github.com/codecanvas/projectdb/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// AnalysisHandler runs AI analyses over files and serves their history
type AnalysisHandler struct {
	Store     storage.Storage
	Assistant ai.Assistant
}

// analyzeRequest is the body for POST /api/files/:fileId/analyses.
type analyzeRequest struct {
	AnalysisType string `json:"analysisType"`
}

// AnalyzeFile handles POST /api/files/:fileId/analyses
// @Summary Analyze a file
// @Description Run one AI analysis type over a file's current content and
// @Description persist the validated result
// @Tags Analyses
// @Accept json
// @Produce json
// @Param fileId path int true "File ID"
// @Param body body handlers.analyzeRequest true "Analysis type"
// @Success 201 {object} models.AiAnalysis
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /files/{fileId}/analyses [post]
func (h *AnalysisHandler) AnalyzeFile(c *fiber.Ctx) error {
	fileID, err := parseID(c, "fileId")
	if err != nil {
		return respondError(c, err, "", "analyzeFile")
	}

	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid analysis request", fiber.StatusBadRequest, "validation")
	}
	analysisType := analysis.Type(req.AnalysisType)
	if !analysisType.Valid() {
		return respondError(c, types.NewValidationError("unknown analysisType: "+req.AnalysisType), "", "analyzeFile")
	}

	file, err := h.Store.GetFile(c.Context(), fileID)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("File %d not found", fileID), "analyzeFile")
	}

	raw, err := h.Assistant.AnalyzeCode(c.Context(), analysisType, file.Name, file.Content)
	if err != nil {
		return respondError(c, err, "", "analyzeFile")
	}

	result, err := analysis.ParseResult(analysisType, raw)
	if err != nil {
		return respondError(c, &ai.UpstreamError{Message: err.Error()}, "", "analyzeFile")
	}

	payload := models.InsertAiAnalysis{
		FileID:       fileID,
		AnalysisType: string(analysisType),
		Result:       models.NewJSON(raw),
	}
	if severity := analysis.Severity(result); severity != "" {
		payload.Severity = &severity
	}

	record, err := h.Store.CreateAiAnalysis(c.Context(), &payload)
	if err != nil {
		return respondError(c, err, "", "analyzeFile")
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// ListFileAnalyses handles GET /api/files/:fileId/analyses
// @Summary List file analyses
// @Description List a file's stored analyses, newest first
// @Tags Analyses
// @Produce json
// @Param fileId path int true "File ID"
// @Success 200 {array} models.AiAnalysis
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /files/{fileId}/analyses [get]
func (h *AnalysisHandler) ListFileAnalyses(c *fiber.Ctx) error {
	fileID, err := parseID(c, "fileId")
	if err != nil {
		return respondError(c, err, "", "listFileAnalyses")
	}

	analyses, err := h.Store.ListAnalysesByFile(c.Context(), fileID)
	if err != nil {
		return respondError(c, err, "", "listFileAnalyses")
	}

	return c.Status(fiber.StatusOK).JSON(analyses)
}

// GetLatestAnalysis handles GET /api/files/:fileId/analyses/latest?type=
// @Summary Get latest analysis of a type
// @Description Get the most recent stored analysis of the given type for a file
// @Tags Analyses
// @Produce json
// @Param fileId path int true "File ID"
// @Param type query string true "Analysis type"
// @Success 200 {object} models.AiAnalysis
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /files/{fileId}/analyses/latest [get]
func (h *AnalysisHandler) GetLatestAnalysis(c *fiber.Ctx) error {
	fileID, err := parseID(c, "fileId")
	if err != nil {
		return respondError(c, err, "", "getLatestAnalysis")
	}

	analysisType := analysis.Type(c.Query("type"))
	if !analysisType.Valid() {
		return respondError(c, types.NewValidationError("unknown or missing type query parameter"), "", "getLatestAnalysis")
	}

	record, err := h.Store.GetLatestAnalysis(c.Context(), fileID, string(analysisType))
	if err != nil {
		return respondError(c, err,
			fmt.Sprintf("No %s analysis found for file %d", analysisType, fileID), "getLatestAnalysis")
	}

	return c.Status(fiber.StatusOK).JSON(record)
}
