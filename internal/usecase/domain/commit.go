package domain

import (
	"context"
	"fmt"

	"branch-content-review/internal/entities"
)

// CreateCommit claims the branch's open edits under a new commit and promotes
// their versions to pushed.
func (u *Usecase) CreateCommit(ctx context.Context, id entities.Identity, prID, message string) (*entities.Commit, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", entities.ErrInvalidArgument)
	}
	if id.Role == entities.RoleViewer {
		return nil, fmt.Errorf("%w: viewers cannot commit", entities.ErrNotAuthorized)
	}

	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return nil, err
	}

	c, err := u.repo.CreateCommit(ctx, prID, id.UserID, message)
	if err != nil {
		return nil, err
	}
	u.log.Infow("commit created", "commit_id", c.ID, "pr_id", prID)
	return c, nil
}
