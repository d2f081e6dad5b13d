package usecase

import (
	"context"

	"branch-content-review/internal/entities"
)

// BranchUsecaseInterface abstracts branch lifecycle operations for the delivery layer.
type BranchUsecaseInterface interface {
	FetchOrCreateActiveBranch(ctx context.Context, id entities.Identity, editPullRequestID *string) (string, error)
	DeactivateBranch(ctx context.Context, id entities.Identity, branchID string) error
	DestroyBranch(ctx context.Context, id entities.Identity, branchID string) error
}

// ContentUsecaseInterface abstracts category/document mutations. An optional
// edit PR id plus token targets a PR's edit session instead of the caller's
// own branch.
type ContentUsecaseInterface interface {
	CreateContent(ctx context.Context, id entities.Identity, kind entities.EntityKind, content entities.VersionContent, editPullRequestID, editToken *string) (*entities.Version, error)
	UpdateContent(ctx context.Context, id entities.Identity, kind entities.EntityKind, entityID string, content entities.VersionContent, editPullRequestID, editToken *string) (*entities.Version, error)
	DeleteContent(ctx context.Context, id entities.Identity, kind entities.EntityKind, entityID string, editPullRequestID, editToken *string) ([]entities.Version, error)
}

// DiffUsecaseInterface abstracts the diff views.
type DiffUsecaseInterface interface {
	BranchDiff(ctx context.Context, id entities.Identity, editPullRequestID *string) (entities.DiffData, error)
	SessionDiff(ctx context.Context, id entities.Identity, prID, token string) (entities.DiffData, error)
}

// CommitUsecaseInterface abstracts commit aggregation.
type CommitUsecaseInterface interface {
	CreateCommit(ctx context.Context, id entities.Identity, prID, message string) (*entities.Commit, error)
}

// PullRequestUsecaseInterface abstracts the PR lifecycle.
type PullRequestUsecaseInterface interface {
	CreatePullRequest(ctx context.Context, id entities.Identity, title, description string, reviewerIDs []string) (*entities.PullRequest, error)
	PullRequestDetail(ctx context.Context, id entities.Identity, prID string) (*entities.PullRequestDetail, error)
	ApprovePullRequest(ctx context.Context, id entities.Identity, prID string) error
	MergePullRequest(ctx context.Context, id entities.Identity, prID string) (*entities.PullRequest, error)
	ClosePullRequest(ctx context.Context, id entities.Identity, prID string) (*entities.PullRequest, error)
	ReopenPullRequest(ctx context.Context, id entities.Identity, prID string) (*entities.PullRequest, error)
	UpdatePullRequest(ctx context.Context, id entities.Identity, prID, title, description string) (*entities.PullRequest, error)
	ListActivity(ctx context.Context, id entities.Identity, prID string) ([]entities.ActivityLog, error)
}

// SessionUsecaseInterface abstracts the branch write lock.
type SessionUsecaseInterface interface {
	AcquireSession(ctx context.Context, id entities.Identity, prID string) (*entities.BranchSession, error)
	ReleaseSession(ctx context.Context, id entities.Identity, branchID string) error
}

// EditSessionUsecaseInterface abstracts token-scoped PR edit sessions.
type EditSessionUsecaseInterface interface {
	StartEditSession(ctx context.Context, id entities.Identity, prID string) (*entities.EditSession, error)
	FinishEditSession(ctx context.Context, id entities.Identity, token string) (*entities.EditSession, error)
}

// FixRequestUsecaseInterface abstracts reviewer fix requests.
type FixRequestUsecaseInterface interface {
	CreateFixRequest(ctx context.Context, id entities.Identity, fr entities.FixRequest) (*entities.FixRequest, error)
	ApplyFixRequest(ctx context.Context, id entities.Identity, fixRequestID string) (*entities.FixRequest, error)
	ArchiveFixRequest(ctx context.Context, id entities.Identity, fixRequestID string) (*entities.FixRequest, error)
	ListFixRequests(ctx context.Context, id entities.Identity, prID string) ([]entities.FixRequest, error)
}

// ConflictUsecaseInterface abstracts the conflict-marker post-check.
type ConflictUsecaseInterface interface {
	IsConflictResolved(ctx context.Context, filename, body string) (entities.ConflictCheck, error)
}
