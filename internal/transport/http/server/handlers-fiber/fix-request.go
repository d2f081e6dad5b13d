package handlers_fiber

import (
	"context"
	"net/http"

	"branch-content-review/internal/entities"
	"branch-content-review/internal/mapper"
	"branch-content-review/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// PostFixRequestCreate files reviewer feedback against an open PR.
func (h *Handler) PostFixRequestCreate(c *fiber.Ctx) error {
	var body dto.FixRequestCreateRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	fr, err := h.uc.CreateFixRequest(c.Context(), identity(c), entities.FixRequest{
		PullRequestID:   body.PullRequestID,
		Kind:            body.Kind,
		TargetVersionID: body.TargetVersionID,
		BaseVersionID:   body.BaseVersionID,
		Comment:         body.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(struct {
		FixRequest dto.FixRequest `json:"fix_request"`
	}{FixRequest: mapper.ToDTOFixRequest(*fr)})
}

// PostFixRequestApply marks a pending fix request as addressed.
func (h *Handler) PostFixRequestApply(c *fiber.Ctx) error {
	return h.fixRequestAction(c, h.uc.ApplyFixRequest)
}

// PostFixRequestArchive retires a pending fix request.
func (h *Handler) PostFixRequestArchive(c *fiber.Ctx) error {
	return h.fixRequestAction(c, h.uc.ArchiveFixRequest)
}

// GetFixRequests lists the PR's fix requests.
func (h *Handler) GetFixRequests(c *fiber.Ctx) error {
	list, err := h.uc.ListFixRequests(c.Context(), identity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		FixRequests []dto.FixRequest `json:"fix_requests"`
	}{FixRequests: mapper.ToDTOFixRequestList(list)})
}

func (h *Handler) fixRequestAction(c *fiber.Ctx, action func(ctx context.Context, id entities.Identity, fixRequestID string) (*entities.FixRequest, error)) error {
	var body dto.FixRequestActionRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	fr, err := action(c.Context(), identity(c), body.FixRequestID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		FixRequest dto.FixRequest `json:"fix_request"`
	}{FixRequest: mapper.ToDTOFixRequest(*fr)})
}
