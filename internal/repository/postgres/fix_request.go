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
	insertFixRequestQuery = `INSERT INTO fix_requests(id, pull_request_id, user_id, kind, target_version_id, base_version_id, comment, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,'pending')
RETURNING created_at`
	updateFixRequestStatusQuery = `UPDATE fix_requests SET status=$2 WHERE id=$1 AND status='pending'
RETURNING id, pull_request_id, user_id, kind, target_version_id, base_version_id, comment, status, created_at`
	selectFixRequestsQuery = `SELECT id, pull_request_id, user_id, kind, target_version_id, base_version_id, comment, status, created_at
FROM fix_requests
WHERE pull_request_id=$1
ORDER BY created_at ASC`
)

// CreateFixRequest records a reviewer's change request and moves the
// reviewer's standing to fix_requested.
func (p *Postgres) CreateFixRequest(ctx context.Context, fr entities.FixRequest) (res *entities.FixRequest, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pr, err := p.prForUpdate(ctx, tx, fr.PullRequestID)
	if err != nil {
		return nil, err
	}
	if pr.Status != entities.StatusOpened {
		return nil, entities.ErrPRNotOpen
	}

	fr.ID = uuid.NewString()
	fr.Status = entities.FixPending
	if err := tx.QueryRow(ctx, insertFixRequestQuery,
		fr.ID, fr.PullRequestID, fr.UserID, fr.Kind, fr.TargetVersionID, fr.BaseVersionID, fr.Comment,
	).Scan(&fr.CreatedAt); err != nil {
		p.log.Errorw("failed to insert fix request", "error", err, "pr_id", fr.PullRequestID)
		return nil, fmt.Errorf("insert fix request: %w", err)
	}

	tag, err := tx.Exec(ctx, fixRequestedReviewerQuery, fr.PullRequestID, fr.UserID)
	if err != nil {
		return nil, fmt.Errorf("mark reviewer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: not a reviewer of this pull request", entities.ErrNotAuthorized)
	}

	if err := p.insertActivity(ctx, tx, fr.PullRequestID, fr.UserID, entities.ActivityFixRequested, nil, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("fix request created", "fix_request_id", fr.ID, "pr_id", fr.PullRequestID)
	return &fr, nil
}

// SetFixRequestStatus transitions a pending fix request; applied and archived
// are terminal.
func (p *Postgres) SetFixRequestStatus(ctx context.Context, fixRequestID string, status entities.FixRequestStatus) (*entities.FixRequest, error) {
	var fr entities.FixRequest
	err := p.db.QueryRow(ctx, updateFixRequestStatusQuery, fixRequestID, status).
		Scan(&fr.ID, &fr.PullRequestID, &fr.UserID, &fr.Kind, &fr.TargetVersionID, &fr.BaseVersionID, &fr.Comment, &fr.Status, &fr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrFixRequestNotFound
		}
		p.log.Errorw("failed to update fix request", "error", err, "fix_request_id", fixRequestID)
		return nil, fmt.Errorf("update fix request: %w", err)
	}
	p.log.Infow("fix request updated", "fix_request_id", fr.ID, "status", status)
	return &fr, nil
}

// ListFixRequests returns a PR's fix requests, oldest first.
func (p *Postgres) ListFixRequests(ctx context.Context, prID string) ([]entities.FixRequest, error) {
	rows, err := p.db.Query(ctx, selectFixRequestsQuery, prID)
	if err != nil {
		p.log.Errorw("failed to select fix requests", "error", err, "pr_id", prID)
		return nil, fmt.Errorf("select fix requests: %w", err)
	}
	defer rows.Close()

	frs := make([]entities.FixRequest, 0)
	for rows.Next() {
		var fr entities.FixRequest
		if err := rows.Scan(&fr.ID, &fr.PullRequestID, &fr.UserID, &fr.Kind, &fr.TargetVersionID, &fr.BaseVersionID, &fr.Comment, &fr.Status, &fr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fix request: %w", err)
		}
		frs = append(frs, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fix requests: %w", err)
	}
	return frs, nil
}
