package domain

import (
	"context"
	"fmt"

	"branch-content-review/internal/entities"
)

// CreatePullRequest opens a PR for the caller's active branch and seeds the
// reviewer list.
func (u *Usecase) CreatePullRequest(ctx context.Context, id entities.Identity, title, description string, reviewerIDs []string) (*entities.PullRequest, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if title == "" {
		return nil, fmt.Errorf("%w: title is required", entities.ErrInvalidArgument)
	}
	if id.Role == entities.RoleViewer {
		return nil, fmt.Errorf("%w: viewers cannot open pull requests", entities.ErrNotAuthorized)
	}

	branchID, err := u.FetchOrCreateActiveBranch(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	pr, err := u.repo.CreatePullRequest(ctx, entities.PullRequest{
		OrganizationID: id.OrganizationID,
		BranchID:       branchID,
		AuthorID:       id.UserID,
		Title:          title,
		Description:    description,
	}, reviewerIDs)
	if err != nil {
		return nil, err
	}

	for _, rid := range reviewerIDs {
		u.notifier.NotifyReview(ctx, pr.ID, rid, entities.ReviewerPending)
	}
	u.log.Infow("pull request created", "pr_id", pr.ID)
	return pr, nil
}

// PullRequestDetail aggregates the PR view: metadata, author, reviewers and
// the branch diff.
func (u *Usecase) PullRequestDetail(ctx context.Context, id entities.Identity, prID string) (*entities.PullRequestDetail, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}

	pr, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID)
	if err != nil {
		return nil, err
	}
	author, err := u.repo.GetUser(ctx, pr.AuthorID)
	if err != nil {
		return nil, err
	}
	reviewers, err := u.repo.GetReviewers(ctx, prID)
	if err != nil {
		return nil, err
	}

	rows, err := u.repo.BranchEdits(ctx, pr.BranchID)
	if err != nil {
		return nil, err
	}
	diff, err := u.buildDiff(ctx, pr.BranchID, id.OrganizationID, rows)
	if err != nil {
		return nil, err
	}

	return &entities.PullRequestDetail{
		PullRequest: *pr,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
		Reviewers:   reviewers,
		Diff:        diff,
	}, nil
}

// ApprovePullRequest records the caller's sign-off. It never merges.
func (u *Usecase) ApprovePullRequest(ctx context.Context, id entities.Identity, prID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return err
	}
	if err := u.repo.ApprovePullRequest(ctx, prID, id.UserID); err != nil {
		return err
	}
	u.notifier.NotifyReview(ctx, prID, id.UserID, entities.ReviewerApproved)
	return nil
}

// MergePullRequest promotes the branch's pushed work into the baseline.
func (u *Usecase) MergePullRequest(ctx context.Context, id entities.Identity, prID string) (*entities.PullRequest, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if id.Role == entities.RoleViewer {
		return nil, fmt.Errorf("%w: viewers cannot merge", entities.ErrNotAuthorized)
	}
	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return nil, err
	}
	return u.repo.MergePullRequest(ctx, prID, id.UserID)
}

// ClosePullRequest abandons the PR; drafts stay on the branch.
func (u *Usecase) ClosePullRequest(ctx context.Context, id entities.Identity, prID string) (*entities.PullRequest, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return nil, err
	}
	return u.repo.ClosePullRequest(ctx, prID, id.UserID)
}

// ReopenPullRequest returns a conflicted PR to review.
func (u *Usecase) ReopenPullRequest(ctx context.Context, id entities.Identity, prID string) (*entities.PullRequest, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return nil, err
	}
	return u.repo.ReopenPullRequest(ctx, prID, id.UserID)
}

// UpdatePullRequest edits title/description of a non-terminal PR.
func (u *Usecase) UpdatePullRequest(ctx context.Context, id entities.Identity, prID, title, description string) (*entities.PullRequest, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" || title == "" {
		return nil, fmt.Errorf("%w: pull_request_id and title are required", entities.ErrInvalidArgument)
	}
	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return nil, err
	}
	return u.repo.UpdatePullRequest(ctx, prID, id.UserID, title, description)
}

// ListActivity returns the PR's append-only history.
func (u *Usecase) ListActivity(ctx context.Context, id entities.Identity, prID string) ([]entities.ActivityLog, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" {
		return nil, fmt.Errorf("%w: pull_request_id is required", entities.ErrInvalidArgument)
	}
	if _, err := u.repo.GetPullRequest(ctx, prID, id.OrganizationID); err != nil {
		return nil, err
	}
	return u.repo.ListActivity(ctx, prID)
}
