package handlers_fiber

import (
	"net/http"

	"branch-content-review/internal/mapper"
	"branch-content-review/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// PostCommitCreate claims the branch's open edits under a new commit.
func (h *Handler) PostCommitCreate(c *fiber.Ctx) error {
	var body dto.CommitCreateRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	commit, err := h.uc.CreateCommit(c.Context(), identity(c), body.PullRequestID, body.Message)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(struct {
		Commit dto.Commit `json:"commit"`
	}{Commit: mapper.ToDTOCommit(*commit)})
}
