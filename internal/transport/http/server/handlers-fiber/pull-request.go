package handlers_fiber

import (
	"context"
	"net/http"

	"branch-content-review/internal/entities"
	"branch-content-review/internal/mapper"
	"branch-content-review/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// PostPullRequestCreate opens a PR for the caller's active branch.
func (h *Handler) PostPullRequestCreate(c *fiber.Ctx) error {
	var body dto.PullRequestCreateRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	pr, err := h.uc.CreatePullRequest(c.Context(), identity(c), body.Title, body.Description, body.ReviewerIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(struct {
		PR dto.PullRequest `json:"pr"`
	}{PR: mapper.ToDTOPull(*pr)})
}

// GetPullRequest renders the full PR view with reviewers and diff.
func (h *Handler) GetPullRequest(c *fiber.Ctx) error {
	detail, err := h.uc.PullRequestDetail(c.Context(), identity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToDTOPullDetail(*detail))
}

// GetPullRequestActivity lists the PR's history entries.
func (h *Handler) GetPullRequestActivity(c *fiber.Ctx) error {
	logs, err := h.uc.ListActivity(c.Context(), identity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		Activity []dto.ActivityLog `json:"activity"`
	}{Activity: mapper.ToDTOActivityList(logs)})
}

// PostPullRequestMerge promotes the branch's pushed work into the baseline.
func (h *Handler) PostPullRequestMerge(c *fiber.Ctx) error {
	return h.prAction(c, h.uc.MergePullRequest)
}

// PostPullRequestClose abandons the PR.
func (h *Handler) PostPullRequestClose(c *fiber.Ctx) error {
	return h.prAction(c, h.uc.ClosePullRequest)
}

// PostPullRequestReopen returns a conflicted PR to review.
func (h *Handler) PostPullRequestReopen(c *fiber.Ctx) error {
	return h.prAction(c, h.uc.ReopenPullRequest)
}

// PostPullRequestApprove records the caller's sign-off.
func (h *Handler) PostPullRequestApprove(c *fiber.Ctx) error {
	var body dto.PullRequestActionRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	if err := h.uc.ApprovePullRequest(c.Context(), identity(c), body.PullRequestID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// PostPullRequestUpdate edits the PR's title and description.
func (h *Handler) PostPullRequestUpdate(c *fiber.Ctx) error {
	var body dto.PullRequestUpdateRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	pr, err := h.uc.UpdatePullRequest(c.Context(), identity(c), body.PullRequestID, body.Title, body.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		PR dto.PullRequest `json:"pr"`
	}{PR: mapper.ToDTOPull(*pr)})
}

// PostEditSessionStart opens a token-scoped edit session on an open PR.
func (h *Handler) PostEditSessionStart(c *fiber.Ctx) error {
	var body dto.EditSessionStartRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	s, err := h.uc.StartEditSession(c.Context(), identity(c), body.PullRequestID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(struct {
		Session dto.EditSession `json:"session"`
	}{Session: mapper.ToDTOEditSession(*s, true)})
}

// PostEditSessionFinish closes the session addressed by its token.
func (h *Handler) PostEditSessionFinish(c *fiber.Ctx) error {
	var body dto.EditSessionFinishRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	s, err := h.uc.FinishEditSession(c.Context(), identity(c), body.Token)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		Session dto.EditSession `json:"session"`
	}{Session: mapper.ToDTOEditSession(*s, false)})
}

// GetEditSessionDiff renders a session's overlay ledger on its own.
func (h *Handler) GetEditSessionDiff(c *fiber.Ctx) error {
	prID := c.Query("edit_pull_request_id")
	token := c.Query("pull_request_edit_token")
	diff, err := h.uc.SessionDiff(c.Context(), identity(c), prID, token)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(diff)
}

func (h *Handler) prAction(c *fiber.Ctx, action func(ctx context.Context, id entities.Identity, prID string) (*entities.PullRequest, error)) error {
	var body dto.PullRequestActionRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	pr, err := action(c.Context(), identity(c), body.PullRequestID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		PR dto.PullRequest `json:"pr"`
	}{PR: mapper.ToDTOPull(*pr)})
}
