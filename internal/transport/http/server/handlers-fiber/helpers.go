package handlers_fiber

import (
	"errors"
	"net/http"

	"branch-content-review/internal/entities"
	"branch-content-review/internal/transport/http/dto"
	"branch-content-review/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

func writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := dto.INTERNAL
	msg := err.Error()

	switch {
	case errors.Is(err, entities.ErrInvalidArgument):
		status = http.StatusBadRequest
		code = dto.VALIDATION
	case errors.Is(err, entities.ErrNotFound):
		status = http.StatusNotFound
		code = dto.NOTFOUND
	case errors.Is(err, entities.ErrNotAuthorized):
		status = http.StatusForbidden
		code = dto.FORBIDDEN
	case errors.Is(err, entities.ErrDuplicateExecution):
		status = http.StatusConflict
		code = dto.SESSIONHELD
	case errors.Is(err, entities.ErrConflict):
		status = http.StatusConflict
		code = dto.MERGECONFLICT
	default:
		msg = "internal error"
	}

	return c.Status(status).JSON(errorResponse(code, msg))
}

func errorResponse(code dto.ErrorCode, msg string) dto.ErrorResponse {
	return dto.ErrorResponse{Error: struct {
		Code    dto.ErrorCode `json:"code"`
		Message string        `json:"message"`
	}{Code: code, Message: msg}}
}

func identity(c *fiber.Ctx) entities.Identity {
	id, _ := c.Locals(middleware.IdentityKey).(entities.Identity)
	return id
}

func badBody(c *fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(errorResponse(dto.VALIDATION, "invalid body"))
}
