// Package handlers_fiber wires HTTP delivery components.
package handlers_fiber

import (
	"branch-content-review/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler implements the HTTP surface using service layer interfaces.
type Handler struct {
	log *zap.SugaredLogger
	uc  usecase.InterfaceUsecase
}

// NewHandler constructs an HTTP server with service dependencies.
func NewHandler(log *zap.SugaredLogger, usecase usecase.InterfaceUsecase) *Handler {
	return &Handler{
		log: log,
		uc:  usecase,
	}
}

// Register mounts every route on the given router.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/branch/diff", h.GetBranchDiff)
	r.Post("/branch/deactivate", h.PostBranchDeactivate)
	r.Delete("/branch", h.DeleteBranch)

	r.Post("/category/create", h.PostCategoryCreate)
	r.Post("/category/update", h.PostCategoryUpdate)
	r.Post("/category/delete", h.PostCategoryDelete)
	r.Post("/document/create", h.PostDocumentCreate)
	r.Post("/document/update", h.PostDocumentUpdate)
	r.Post("/document/delete", h.PostDocumentDelete)

	r.Post("/commit/create", h.PostCommitCreate)

	r.Post("/pull-request/create", h.PostPullRequestCreate)
	r.Post("/pull-request/merge", h.PostPullRequestMerge)
	r.Post("/pull-request/close", h.PostPullRequestClose)
	r.Post("/pull-request/reopen", h.PostPullRequestReopen)
	r.Post("/pull-request/approve", h.PostPullRequestApprove)
	r.Post("/pull-request/update", h.PostPullRequestUpdate)
	r.Post("/pull-request/edit-session/start", h.PostEditSessionStart)
	r.Post("/pull-request/edit-session/finish", h.PostEditSessionFinish)
	r.Get("/pull-request/edit-session/diff", h.GetEditSessionDiff)
	r.Get("/pull-request/:id/fix-requests", h.GetFixRequests)
	r.Get("/pull-request/:id/activity", h.GetPullRequestActivity)
	r.Get("/pull-request/:id", h.GetPullRequest)

	r.Post("/fix-request/create", h.PostFixRequestCreate)
	r.Post("/fix-request/apply", h.PostFixRequestApply)
	r.Post("/fix-request/archive", h.PostFixRequestArchive)

	r.Post("/branch-session/acquire", h.PostSessionAcquire)
	r.Post("/branch-session/release", h.PostSessionRelease)

	r.Post("/conflict/check", h.PostConflictCheck)
}
