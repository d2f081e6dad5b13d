package handlers_fiber

import (
	"net/http"

	"branch-content-review/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// PostConflictCheck scans candidate merged text for residual conflict markers.
func (h *Handler) PostConflictCheck(c *fiber.Ctx) error {
	var body dto.ConflictCheckRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	check, err := h.uc.IsConflictResolved(c.Context(), body.Filename, body.Body)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(check)
}
