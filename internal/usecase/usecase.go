// Package usecase declares the application service interfaces.
package usecase

import (
	"context"
	"time"

	"branch-content-review/internal/repository"
	"branch-content-review/internal/usecase/domain"

	"go.uber.org/zap"
)

// InterfaceUsecase aggregates all usecase interfaces.
type InterfaceUsecase interface {
	BranchUsecaseInterface
	ContentUsecaseInterface
	DiffUsecaseInterface
	CommitUsecaseInterface
	PullRequestUsecaseInterface
	SessionUsecaseInterface
	EditSessionUsecaseInterface
	FixRequestUsecaseInterface
	ConflictUsecaseInterface
}

// New constructs a new usecase layer with its dependencies.
func New(log *zap.SugaredLogger, ctx context.Context, repo repository.Repository, timeout time.Duration) InterfaceUsecase {
	return domain.New(log, ctx, repo, timeout)
}
