package domain

import (
	"context"
	"fmt"

	"branch-content-review/internal/entities"

	"github.com/google/uuid"
)

// StartEditSession opens a token-addressable edit session on an open PR.
func (u *Usecase) StartEditSession(ctx context.Context, id entities.Identity, prID string) (*entities.EditSession, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if id.Role == entities.RoleViewer {
		return nil, fmt.Errorf("%w: viewers cannot edit pull requests", entities.ErrNotAuthorized)
	}
	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return nil, err
	}

	s, err := u.repo.StartEditSession(ctx, prID, id.UserID, uuid.NewString())
	if err != nil {
		return nil, err
	}
	u.log.Infow("edit session started", "pr_id", prID, "session_id", s.ID)
	return s, nil
}

// FinishEditSession closes the session addressed by its token. The token is
// the capability; no role check beyond possessing it.
func (u *Usecase) FinishEditSession(ctx context.Context, _ entities.Identity, token string) (*entities.EditSession, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if token == "" {
		return nil, fmt.Errorf("%w: token is required", entities.ErrInvalidArgument)
	}
	return u.repo.FinishEditSession(ctx, token)
}
