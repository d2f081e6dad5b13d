package postgres

import (
	"context"
	"errors"
	"fmt"

	"branch-content-review/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	selectActiveBranchQuery = `SELECT id, user_id, organization_id, is_active, created_at
FROM branches
WHERE user_id=$1 AND organization_id=$2 AND is_active=true
ORDER BY created_at DESC
LIMIT 1`
	insertBranchQuery = `INSERT INTO branches(id, user_id, organization_id, is_active)
VALUES ($1,$2,$3,true)
RETURNING created_at`
	selectBranchByPRQuery = `SELECT b.id, b.user_id, b.organization_id, b.is_active, b.created_at
FROM branches b
JOIN pull_requests pr ON pr.branch_id = b.id
WHERE pr.id=$1 AND pr.organization_id=$2`
	deactivateBranchQuery = `UPDATE branches SET is_active=false WHERE id=$1 AND user_id=$2`

	selectOwnSessionForUpdateQuery = `SELECT id FROM branch_sessions WHERE branch_id=$1 AND user_id=$2 FOR UPDATE`
	deleteBranchVersionsQuery      = `DELETE FROM content_versions WHERE branch_id=$1 AND status <> 'merged'`
	deleteBranchTrackersQuery      = `DELETE FROM edit_trackers WHERE branch_id=$1`
	deleteBranchSessionsQuery      = `DELETE FROM branch_sessions WHERE branch_id=$1`
	deleteBranchQuery              = `DELETE FROM branches WHERE id=$1`
)

// GetActiveBranch returns the newest active branch of a user, if any.
func (p *Postgres) GetActiveBranch(ctx context.Context, userID, orgID string) (*entities.Branch, error) {
	var b entities.Branch
	err := p.db.QueryRow(ctx, selectActiveBranchQuery, userID, orgID).
		Scan(&b.ID, &b.UserID, &b.OrganizationID, &b.IsActive, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrBranchNotFound
		}
		p.log.Errorw("failed to select active branch", "error", err, "user_id", userID)
		return nil, fmt.Errorf("select active branch: %w", err)
	}
	return &b, nil
}

// CreateBranch inserts a fresh active branch. Other branches are left as they
// are; deactivation is a separate explicit operation.
func (p *Postgres) CreateBranch(ctx context.Context, userID, orgID string) (*entities.Branch, error) {
	b := entities.Branch{
		ID:             uuid.NewString(),
		UserID:         userID,
		OrganizationID: orgID,
		IsActive:       true,
	}
	if err := p.db.QueryRow(ctx, insertBranchQuery, b.ID, userID, orgID).Scan(&b.CreatedAt); err != nil {
		p.log.Errorw("failed to insert branch", "error", err, "user_id", userID)
		return nil, fmt.Errorf("insert branch: %w", err)
	}
	p.log.Infow("branch created", "branch_id", b.ID, "user_id", userID)
	return &b, nil
}

// GetBranchByPR resolves the branch a pull request was opened from, scoped to
// the caller's organization.
func (p *Postgres) GetBranchByPR(ctx context.Context, prID, orgID string) (*entities.Branch, error) {
	var b entities.Branch
	err := p.db.QueryRow(ctx, selectBranchByPRQuery, prID, orgID).
		Scan(&b.ID, &b.UserID, &b.OrganizationID, &b.IsActive, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrPRNotFound
		}
		p.log.Errorw("failed to select branch by pr", "error", err, "pr_id", prID)
		return nil, fmt.Errorf("select branch by pr: %w", err)
	}
	return &b, nil
}

// DeactivateBranch clears the is_active flag of the caller's branch.
func (p *Postgres) DeactivateBranch(ctx context.Context, branchID, userID string) error {
	tag, err := p.db.Exec(ctx, deactivateBranchQuery, branchID, userID)
	if err != nil {
		p.log.Errorw("failed to deactivate branch", "error", err, "branch_id", branchID)
		return fmt.Errorf("deactivate branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrBranchNotFound
	}
	p.log.Infow("branch deactivated", "branch_id", branchID, "user_id", userID)
	return nil
}

// DestroyBranch removes a branch with its unmerged versions and ledger rows.
// The caller must hold the branch's active session.
func (p *Postgres) DestroyBranch(ctx context.Context, branchID, userID string) (err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var sessionID string
	if err := tx.QueryRow(ctx, selectOwnSessionForUpdateQuery, branchID, userID).Scan(&sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.ErrSessionRequired
		}
		p.log.Errorw("failed to lock branch session", "error", err, "branch_id", branchID)
		return fmt.Errorf("lock branch session: %w", err)
	}

	for _, q := range []string{
		deleteBranchTrackersQuery,
		deleteBranchVersionsQuery,
		deleteBranchSessionsQuery,
		deleteBranchQuery,
	} {
		if _, err := tx.Exec(ctx, q, branchID); err != nil {
			p.log.Errorw("failed to destroy branch", "error", err, "branch_id", branchID)
			return fmt.Errorf("destroy branch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.log.Infow("branch destroyed", "branch_id", branchID, "user_id", userID)
	return nil
}
