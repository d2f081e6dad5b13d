package handlers_fiber

import (
	"net/http"

	"branch-content-review/internal/entities"
	"branch-content-review/internal/mapper"
	"branch-content-review/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// PostCategoryCreate creates a category draft on the resolved branch.
func (h *Handler) PostCategoryCreate(c *fiber.Ctx) error {
	return h.createContent(c, entities.KindCategory)
}

// PostCategoryUpdate appends a category draft version.
func (h *Handler) PostCategoryUpdate(c *fiber.Ctx) error {
	return h.updateContent(c, entities.KindCategory)
}

// PostCategoryDelete tombstones a category and its subtree.
func (h *Handler) PostCategoryDelete(c *fiber.Ctx) error {
	return h.deleteContent(c, entities.KindCategory)
}

// PostDocumentCreate creates a document draft on the resolved branch.
func (h *Handler) PostDocumentCreate(c *fiber.Ctx) error {
	return h.createContent(c, entities.KindDocument)
}

// PostDocumentUpdate appends a document draft version.
func (h *Handler) PostDocumentUpdate(c *fiber.Ctx) error {
	return h.updateContent(c, entities.KindDocument)
}

// PostDocumentDelete tombstones a document.
func (h *Handler) PostDocumentDelete(c *fiber.Ctx) error {
	return h.deleteContent(c, entities.KindDocument)
}

func (h *Handler) createContent(c *fiber.Ctx, kind entities.EntityKind) error {
	var body dto.ContentCreateRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	v, err := h.uc.CreateContent(c.Context(), identity(c), kind,
		mapper.FromContentPayload(body.ContentPayload), body.EditPullRequestID, body.PullRequestEditToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(struct {
		Version dto.Version `json:"version"`
	}{Version: mapper.ToDTOVersion(*v)})
}

func (h *Handler) updateContent(c *fiber.Ctx, kind entities.EntityKind) error {
	var body dto.ContentUpdateRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	v, err := h.uc.UpdateContent(c.Context(), identity(c), kind, body.ID,
		mapper.FromContentPayload(body.ContentPayload), body.EditPullRequestID, body.PullRequestEditToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		Version dto.Version `json:"version"`
	}{Version: mapper.ToDTOVersion(*v)})
}

func (h *Handler) deleteContent(c *fiber.Ctx, kind entities.EntityKind) error {
	var body dto.ContentDeleteRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	tombstones, err := h.uc.DeleteContent(c.Context(), identity(c), kind, body.ID,
		body.EditPullRequestID, body.PullRequestEditToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		Deleted []dto.Version `json:"deleted"`
	}{Deleted: mapper.ToDTOVersionList(tombstones)})
}
