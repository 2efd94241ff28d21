package handlers

import (
	"errors"
	"strconv"

	"github.com/codecanvas/projectdb/internal/ai"
	"github.com/codecanvas/projectdb/internal/storage"
	"github.com/codecanvas/projectdb/internal/types"
	"github.com/codecanvas/projectdb/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// parseID parses a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (uint64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, types.NewValidationError("invalid " + name + " parameter")
	}
	return id, nil
}

// respondError maps storage and domain errors onto the wire format.
func respondError(c *fiber.Ctx, err error, notFoundMessage, errorType string) error {
	var customErr *types.CustomError
	if errors.As(err, &customErr) {
		return utils.ErrorResponse(c, customErr.Message, customErr.Code, customErr.Type)
	}

	if errors.Is(err, storage.ErrNotFound) {
		return utils.NotFoundResponse(c, notFoundMessage)
	}

	var upstream *ai.UpstreamError
	if errors.As(err, &upstream) {
		return utils.ErrorResponse(c, upstream.Message, fiber.StatusServiceUnavailable, "upstream")
	}

	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}
