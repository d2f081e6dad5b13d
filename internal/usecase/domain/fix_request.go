package domain

import (
	"context"
	"fmt"

	"branch-content-review/internal/entities"
)

// CreateFixRequest files reviewer feedback against an open PR. Only assigned
// reviewers may file; the repository enforces the membership check.
func (u *Usecase) CreateFixRequest(ctx context.Context, id entities.Identity, fr entities.FixRequest) (*entities.FixRequest, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if fr.PullRequestID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if fr.Comment == "" {
		return nil, fmt.Errorf("%w: comment is required", entities.ErrInvalidArgument)
	}
	if _, err := u.repo.GetPullRequest(ctx, fr.PullRequestID, id.OrganizationID); err != nil {
		return nil, err
	}

	fr.UserID = id.UserID
	created, err := u.repo.CreateFixRequest(ctx, fr)
	if err != nil {
		return nil, err
	}
	u.notifier.NotifyFixRequest(ctx, *created)
	return created, nil
}

// ApplyFixRequest marks a pending fix request as addressed by the author.
func (u *Usecase) ApplyFixRequest(ctx context.Context, id entities.Identity, fixRequestID string) (*entities.FixRequest, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if fixRequestID == "" {
		return nil, fmt.Errorf("%w: fix request id is required", entities.ErrInvalidArgument)
	}
	if id.Role == entities.RoleViewer {
		return nil, fmt.Errorf("%w: viewers cannot act on fix requests", entities.ErrNotAuthorized)
	}
	return u.repo.SetFixRequestStatus(ctx, fixRequestID, entities.FixApplied)
}

// ArchiveFixRequest retires a pending fix request without action.
func (u *Usecase) ArchiveFixRequest(ctx context.Context, id entities.Identity, fixRequestID string) (*entities.FixRequest, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if fixRequestID == "" {
		return nil, fmt.Errorf("%w: fix request id is required", entities.ErrInvalidArgument)
	}
	if id.Role == entities.RoleViewer {
		return nil, fmt.Errorf("%w: viewers cannot act on fix requests", entities.ErrNotAuthorized)
	}
	return u.repo.SetFixRequestStatus(ctx, fixRequestID, entities.FixArchived)
}

// ListFixRequests returns the PR's fix requests, oldest first.
func (u *Usecase) ListFixRequests(ctx context.Context, id entities.Identity, prID string) ([]entities.FixRequest, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return nil, err
	}
	return u.repo.ListFixRequests(ctx, prID)
}
