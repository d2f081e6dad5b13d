package domain

import (
	"context"
	"fmt"

	"branch-content-review/internal/entities"
)

// AcquireSession takes the branch write lock behind the PR, or reports the
// current holder without waiting.
func (u *Usecase) AcquireSession(ctx context.Context, id entities.Identity, prID string) (*entities.BranchSession, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if id.Role == entities.RoleViewer {
		return nil, fmt.Errorf("%w: viewers cannot hold a branch session", entities.ErrNotAuthorized)
	}

	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return nil, err
	}

	out, err := u.repo.TryAcquireSession(ctx, prID, id.UserID)
	if err != nil {
		return nil, err
	}
	if !out.Acquired {
		return nil, fmt.Errorf("%w by %s", entities.ErrSessionHeld, out.HeldBy)
	}
	return out.Session, nil
}

// ReleaseSession drops the caller's lock on the branch. Releasing a lock that
// is not held is a no-op.
func (u *Usecase) ReleaseSession(ctx context.Context, id entities.Identity, branchID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if branchID == "" {
		return fmt.Errorf("%w: branch id is required", entities.ErrInvalidArgument)
	}
	return u.repo.ReleaseSession(ctx, branchID, id.UserID)
}
