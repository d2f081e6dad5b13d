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
	selectOpenEditsForUpdateQuery = `SELECT id, current_version_id FROM edit_trackers
WHERE branch_id=$1 AND commit_id IS NULL
FOR UPDATE`
	insertCommitQuery = `INSERT INTO commits(id, branch_id, pull_request_id, user_id, message)
VALUES ($1,$2,$3,$4,$5)
RETURNING created_at`
	stampCommitQuery  = `UPDATE edit_trackers SET commit_id=$1 WHERE branch_id=$2 AND commit_id IS NULL`
	pushVersionsQuery = `UPDATE content_versions SET status='pushed', updated_at=NOW() WHERE id = ANY($1) AND status='draft'`
)

// CreateCommit claims every open tracker row of the PR's branch, stamps the
// commit id and promotes the referenced versions draft to pushed. The caller
// must hold the branch session and the PR must be opened.
func (p *Postgres) CreateCommit(ctx context.Context, prID, userID, message string) (res *entities.Commit, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pr, err := p.prForUpdate(ctx, tx, prID)
	if err != nil {
		return nil, err
	}
	if pr.Status != entities.StatusOpened {
		return nil, entities.ErrPRNotOpen
	}

	var sessionID string
	if err := tx.QueryRow(ctx, selectOwnSessionForUpdateQuery, pr.BranchID, userID).Scan(&sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrSessionRequired
		}
		return nil, fmt.Errorf("check branch session: %w", err)
	}

	rows, err := tx.Query(ctx, selectOpenEditsForUpdateQuery, pr.BranchID)
	if err != nil {
		p.log.Errorw("failed to lock open edits", "error", err, "branch_id", pr.BranchID)
		return nil, fmt.Errorf("lock open edits: %w", err)
	}
	versionIDs := make([]string, 0)
	for rows.Next() {
		var trackerID, versionID string
		if err := rows.Scan(&trackerID, &versionID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan open edit: %w", err)
		}
		versionIDs = append(versionIDs, versionID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate open edits: %w", err)
	}
	rows.Close()

	if len(versionIDs) == 0 {
		return nil, entities.ErrNoOpenEdits
	}

	c := &entities.Commit{
		ID:            uuid.NewString(),
		BranchID:      pr.BranchID,
		PullRequestID: prID,
		UserID:        userID,
		Message:       message,
	}
	if err := tx.QueryRow(ctx, insertCommitQuery, c.ID, c.BranchID, prID, userID, message).Scan(&c.CreatedAt); err != nil {
		p.log.Errorw("failed to insert commit", "error", err, "pr_id", prID)
		return nil, fmt.Errorf("insert commit: %w", err)
	}

	if _, err := tx.Exec(ctx, stampCommitQuery, c.ID, pr.BranchID); err != nil {
		p.log.Errorw("failed to stamp commit id", "error", err, "commit_id", c.ID)
		return nil, fmt.Errorf("stamp commit id: %w", err)
	}
	if _, err := tx.Exec(ctx, pushVersionsQuery, versionIDs); err != nil {
		p.log.Errorw("failed to push versions", "error", err, "commit_id", c.ID)
		return nil, fmt.Errorf("push versions: %w", err)
	}

	if err := p.insertActivity(ctx, tx, prID, userID, entities.ActivityCommitted, nil, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("commit created", "commit_id", c.ID, "pr_id", prID, "claimed", len(versionIDs))
	return c, nil
}
