package domain

import (
	"context"
	"errors"
	"fmt"

	"branch-content-review/internal/entities"
)

// FetchOrCreateActiveBranch resolves the branch a write should land on. With
// an edit PR id the PR's own branch is returned, so review fixes stay on the
// branch under review; otherwise the user's active branch, created on demand.
func (u *Usecase) FetchOrCreateActiveBranch(ctx context.Context, id entities.Identity, editPullRequestID *string) (string, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if editPullRequestID != nil {
		b, err := u.repo.GetBranchByPR(ctx, *editPullRequestID, id.OrganizationID)
		if err != nil {
			return "", err
		}
		return b.ID, nil
	}

	b, err := u.repo.GetActiveBranch(ctx, id.UserID, id.OrganizationID)
	if err == nil {
		return b.ID, nil
	}
	if !errors.Is(err, entities.ErrBranchNotFound) {
		return "", err
	}

	b, err = u.repo.CreateBranch(ctx, id.UserID, id.OrganizationID)
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

// DeactivateBranch explicitly retires the caller's branch. Creating a branch
// never deactivates others; this is the only way.
func (u *Usecase) DeactivateBranch(ctx context.Context, id entities.Identity, branchID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if branchID == "" {
		return fmt.Errorf("%w: branch_id is required", entities.ErrInvalidArgument)
	}
	return u.repo.DeactivateBranch(ctx, branchID, id.UserID)
}

// DestroyBranch removes a branch and its unmerged work. The caller must hold
// the branch's active session.
func (u *Usecase) DestroyBranch(ctx context.Context, id entities.Identity, branchID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if branchID == "" {
		return fmt.Errorf("%w: branch_id is required", entities.ErrInvalidArgument)
	}
	if id.Role == entities.RoleViewer {
		return fmt.Errorf("%w: viewers cannot destroy branches", entities.ErrNotAuthorized)
	}
	return u.repo.DestroyBranch(ctx, branchID, id.UserID)
}
