// Package repository contains repository interfaces for persistence layers.
package repository

import (
	"context"

	"branch-content-review/internal/entities"
)

// LifecycleInterface describes storage startup/shutdown hooks.
type LifecycleInterface interface {
	OnStart(_ context.Context) error
	OnStop(_ context.Context) error
}

// UserInterface exposes organization member lookups.
type UserInterface interface {
	GetUser(ctx context.Context, userID string) (*entities.User, error)
}

// BranchInterface exposes branch lifecycle operations.
type BranchInterface interface {
	GetActiveBranch(ctx context.Context, userID, orgID string) (*entities.Branch, error)
	CreateBranch(ctx context.Context, userID, orgID string) (*entities.Branch, error)
	GetBranchByPR(ctx context.Context, prID, orgID string) (*entities.Branch, error)
	DeactivateBranch(ctx context.Context, branchID, userID string) error
	DestroyBranch(ctx context.Context, branchID, userID string) error
}

// ContentInterface exposes version-store writes. Each call is one transaction
// covering the new version row plus its edit tracker row (and, when an edit
// session targets the write, the session overlay row).
type ContentInterface interface {
	CreateContent(ctx context.Context, branchID string, kind entities.EntityKind, content entities.VersionContent, editSessionID *string) (*entities.Version, error)
	UpdateContent(ctx context.Context, branchID string, kind entities.EntityKind, entityID string, content entities.VersionContent, editSessionID *string) (*entities.Version, error)
	DeleteContent(ctx context.Context, branchID string, kind entities.EntityKind, entityID string, editSessionID *string) ([]entities.Version, error)
}

// DiffInterface exposes the reads feeding the diff engine. OpenEdits returns
// only rows no commit has claimed yet (the commit aggregator's input);
// BranchEdits returns every live row, claimed or not, until its current
// version merges (the diff views' input).
type DiffInterface interface {
	OpenEdits(ctx context.Context, branchID string) ([]entities.EditTracker, error)
	BranchEdits(ctx context.Context, branchID string) ([]entities.EditTracker, error)
	GetVersion(ctx context.Context, versionID string) (*entities.Version, error)
	LatestMergedVersion(ctx context.Context, entityID string) (*entities.Version, error)
	SessionDiffs(ctx context.Context, editSessionID string) ([]entities.EditSessionDiff, error)
}

// CommitInterface exposes commit aggregation.
type CommitInterface interface {
	CreateCommit(ctx context.Context, prID, userID, message string) (*entities.Commit, error)
}

// PullRequestInterface exposes the review/merge/close state machine.
type PullRequestInterface interface {
	CreatePullRequest(ctx context.Context, pr entities.PullRequest, reviewerIDs []string) (*entities.PullRequest, error)
	GetPullRequest(ctx context.Context, prID, orgID string) (*entities.PullRequest, error)
	GetReviewers(ctx context.Context, prID string) ([]entities.Reviewer, error)
	ApprovePullRequest(ctx context.Context, prID, reviewerID string) error
	MergePullRequest(ctx context.Context, prID, userID string) (*entities.PullRequest, error)
	ClosePullRequest(ctx context.Context, prID, userID string) (*entities.PullRequest, error)
	ReopenPullRequest(ctx context.Context, prID, userID string) (*entities.PullRequest, error)
	UpdatePullRequest(ctx context.Context, prID, userID, title, description string) (*entities.PullRequest, error)
	ListActivity(ctx context.Context, prID string) ([]entities.ActivityLog, error)
}

// SessionInterface exposes the single-writer branch lock.
type SessionInterface interface {
	TryAcquireSession(ctx context.Context, prID, userID string) (entities.AcquireOutcome, error)
	ReleaseSession(ctx context.Context, branchID, userID string) error
}

// EditSessionInterface exposes token-scoped PR edit sessions.
type EditSessionInterface interface {
	StartEditSession(ctx context.Context, prID, userID, token string) (*entities.EditSession, error)
	FinishEditSession(ctx context.Context, token string) (*entities.EditSession, error)
	GetEditSession(ctx context.Context, prID, token string) (*entities.EditSession, error)
}

// FixRequestInterface exposes reviewer fix requests.
type FixRequestInterface interface {
	CreateFixRequest(ctx context.Context, fr entities.FixRequest) (*entities.FixRequest, error)
	SetFixRequestStatus(ctx context.Context, fixRequestID string, status entities.FixRequestStatus) (*entities.FixRequest, error)
	ListFixRequests(ctx context.Context, prID string) ([]entities.FixRequest, error)
}
