package handlers_fiber

import (
	"net/http"

	"branch-content-review/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// GetBranchDiff renders the caller's branch diff against the merged baseline.
// With edit_pull_request_id the PR's branch is diffed instead.
func (h *Handler) GetBranchDiff(c *fiber.Ctx) error {
	var editPR *string
	if v := c.Query("edit_pull_request_id"); v != "" {
		editPR = &v
	}

	diff, err := h.uc.BranchDiff(c.Context(), identity(c), editPR)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(diff)
}

// PostBranchDeactivate retires the branch without touching its versions.
func (h *Handler) PostBranchDeactivate(c *fiber.Ctx) error {
	var body dto.BranchRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	if err := h.uc.DeactivateBranch(c.Context(), identity(c), body.BranchID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteBranch destroys the branch and its unmerged work. The caller must
// hold the branch session.
func (h *Handler) DeleteBranch(c *fiber.Ctx) error {
	var body dto.BranchRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	if err := h.uc.DestroyBranch(c.Context(), identity(c), body.BranchID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
