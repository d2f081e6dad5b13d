package handlers_fiber

import (
	"net/http"

	"branch-content-review/internal/mapper"
	"branch-content-review/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// PostSessionAcquire takes the branch write lock behind the PR. A lock held
// by someone else answers 409 with the holder in the message.
func (h *Handler) PostSessionAcquire(c *fiber.Ctx) error {
	var body dto.SessionAcquireRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	s, err := h.uc.AcquireSession(c.Context(), identity(c), body.PullRequestID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(struct {
		Session dto.BranchSession `json:"session"`
	}{Session: mapper.ToDTOBranchSession(*s)})
}

// PostSessionRelease drops the caller's lock. Releasing a lock that is not
// held answers 204 all the same.
func (h *Handler) PostSessionRelease(c *fiber.Ctx) error {
	var body dto.SessionReleaseRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	if err := h.uc.ReleaseSession(c.Context(), identity(c), body.BranchID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
