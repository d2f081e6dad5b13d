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
	prColumns = `id, organization_id, branch_id, author_id, title, description, status, created_at, updated_at`

	selectPRForUpdateQuery = `SELECT ` + prColumns + ` FROM pull_requests WHERE id=$1 FOR UPDATE`
	selectPRQuery          = `SELECT ` + prColumns + ` FROM pull_requests WHERE id=$1 AND organization_id=$2`

	selectBranchForPRQuery = `SELECT user_id, organization_id, is_active FROM branches WHERE id=$1`

	insertPRQuery = `INSERT INTO pull_requests(id, organization_id, branch_id, author_id, title, description, status)
VALUES ($1,$2,$3,$4,$5,$6,'opened')
RETURNING created_at, updated_at`
	insertReviewerQuery = `INSERT INTO pull_request_reviewers(pull_request_id, user_id, action_status)
VALUES ($1,$2,'pending')`
	selectReviewersQuery = `SELECT r.user_id, u.name, u.email, r.action_status
FROM pull_request_reviewers r
JOIN users u ON u.id = r.user_id
WHERE r.pull_request_id=$1
ORDER BY u.name`
	approveReviewerQuery = `UPDATE pull_request_reviewers SET action_status='approved'
WHERE pull_request_id=$1 AND user_id=$2`
	fixRequestedReviewerQuery = `UPDATE pull_request_reviewers SET action_status='fix_requested'
WHERE pull_request_id=$1 AND user_id=$2`

	updatePRStatusQuery = `UPDATE pull_requests SET status=$2, updated_at=NOW() WHERE id=$1 RETURNING updated_at`
	updatePRTitleQuery  = `UPDATE pull_requests SET title=$2, description=$3, updated_at=NOW() WHERE id=$1 RETURNING updated_at`

	pushBranchDraftsQuery = `UPDATE content_versions SET status='pushed', updated_at=NOW()
WHERE branch_id=$1 AND status='draft'`
	mergeBranchVersionsQuery = `UPDATE content_versions SET status='merged', branch_id=NULL, updated_at=NOW()
WHERE branch_id=$1 AND status='pushed'`

	insertActivityQuery = `INSERT INTO pull_request_activity_logs(id, pull_request_id, user_id, action, old_title, new_title)
VALUES ($1,$2,$3,$4,$5,$6)`
	selectActivityQuery = `SELECT id, pull_request_id, user_id, action, old_title, new_title, created_at
FROM pull_request_activity_logs
WHERE pull_request_id=$1
ORDER BY created_at ASC`

	selectBaseEditsPerEntityQuery = `SELECT DISTINCT ON (t.entity_id) t.entity_id, t.original_version_id
FROM edit_trackers t
LEFT JOIN content_versions v ON v.id = t.current_version_id
WHERE t.branch_id=$1 AND (v.id IS NULL OR v.status <> 'merged')
ORDER BY t.entity_id, t.created_at ASC`
	selectVersionStatusQuery = `SELECT status FROM content_versions WHERE id=$1`
	selectLatestMergedIDQuery = `SELECT id FROM content_versions
WHERE entity_id=$1 AND status='merged'
ORDER BY created_at DESC
LIMIT 1`
)

func scanPR(row pgx.Row) (*entities.PullRequest, error) {
	var pr entities.PullRequest
	err := row.Scan(&pr.ID, &pr.OrganizationID, &pr.BranchID, &pr.AuthorID,
		&pr.Title, &pr.Description, &pr.Status, &pr.CreatedAt, &pr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (p *Postgres) prForUpdate(ctx context.Context, tx pgx.Tx, prID string) (*entities.PullRequest, error) {
	pr, err := scanPR(tx.QueryRow(ctx, selectPRForUpdateQuery, prID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrPRNotFound
		}
		p.log.Errorw("failed to lock pull request", "error", err, "pr_id", prID)
		return nil, fmt.Errorf("lock pull request: %w", err)
	}
	return pr, nil
}

func (p *Postgres) insertActivity(ctx context.Context, q querier, prID, userID, action string, oldTitle, newTitle *string) error {
	if _, err := q.Exec(ctx, insertActivityQuery, uuid.NewString(), prID, userID, action, oldTitle, newTitle); err != nil {
		p.log.Errorw("failed to insert activity", "error", err, "pr_id", prID, "action", action)
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// CreatePullRequest opens a PR for the branch, promotes its drafts to pushed
// and seeds reviewer rows as pending.
func (p *Postgres) CreatePullRequest(ctx context.Context, pr entities.PullRequest, reviewerIDs []string) (res *entities.PullRequest, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var branchUserID, branchOrgID string
	var isActive bool
	if err := tx.QueryRow(ctx, selectBranchForPRQuery, pr.BranchID).Scan(&branchUserID, &branchOrgID, &isActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrBranchNotFound
		}
		return nil, fmt.Errorf("select branch: %w", err)
	}
	if branchOrgID != pr.OrganizationID {
		return nil, entities.ErrBranchNotFound
	}
	if !isActive {
		return nil, fmt.Errorf("%w: branch is not active", entities.ErrInvalidArgument)
	}

	if _, err := tx.Exec(ctx, pushBranchDraftsQuery, pr.BranchID); err != nil {
		p.log.Errorw("failed to push branch drafts", "error", err, "branch_id", pr.BranchID)
		return nil, fmt.Errorf("push branch drafts: %w", err)
	}

	pr.ID = uuid.NewString()
	pr.Status = entities.StatusOpened
	if err := tx.QueryRow(ctx, insertPRQuery,
		pr.ID, pr.OrganizationID, pr.BranchID, pr.AuthorID, pr.Title, pr.Description,
	).Scan(&pr.CreatedAt, &pr.UpdatedAt); err != nil {
		p.log.Errorw("failed to insert pull request", "error", err, "branch_id", pr.BranchID)
		return nil, fmt.Errorf("insert pull request: %w", err)
	}

	for _, rid := range reviewerIDs {
		if _, err := tx.Exec(ctx, insertReviewerQuery, pr.ID, rid); err != nil {
			p.log.Errorw("failed to insert reviewer", "error", err, "pr_id", pr.ID, "reviewer_id", rid)
			return nil, fmt.Errorf("insert reviewer: %w", err)
		}
	}

	if err := p.insertActivity(ctx, tx, pr.ID, pr.AuthorID, entities.ActivityOpened, nil, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("pull request created", "pr_id", pr.ID, "branch_id", pr.BranchID, "reviewers", len(reviewerIDs))
	return &pr, nil
}

// GetPullRequest returns a PR scoped to the caller's organization.
func (p *Postgres) GetPullRequest(ctx context.Context, prID, orgID string) (*entities.PullRequest, error) {
	pr, err := scanPR(p.db.QueryRow(ctx, selectPRQuery, prID, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrPRNotFound
		}
		p.log.Errorw("failed to get pull request", "error", err, "pr_id", prID)
		return nil, fmt.Errorf("get pull request: %w", err)
	}
	return pr, nil
}

// GetReviewers returns the PR's reviewer list with identities resolved.
func (p *Postgres) GetReviewers(ctx context.Context, prID string) ([]entities.Reviewer, error) {
	rows, err := p.db.Query(ctx, selectReviewersQuery, prID)
	if err != nil {
		p.log.Errorw("failed to select reviewers", "error", err, "pr_id", prID)
		return nil, fmt.Errorf("select reviewers: %w", err)
	}
	defer rows.Close()

	reviewers := make([]entities.Reviewer, 0)
	for rows.Next() {
		var r entities.Reviewer
		if err := rows.Scan(&r.UserID, &r.Name, &r.Email, &r.ActionStatus); err != nil {
			return nil, fmt.Errorf("scan reviewer: %w", err)
		}
		reviewers = append(reviewers, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviewers: %w", err)
	}
	return reviewers, nil
}

// ApprovePullRequest records a reviewer's sign-off. It never merges.
func (p *Postgres) ApprovePullRequest(ctx context.Context, prID, reviewerID string) (err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pr, err := p.prForUpdate(ctx, tx, prID)
	if err != nil {
		return err
	}
	if pr.Status != entities.StatusOpened {
		return entities.ErrPRNotOpen
	}

	tag, err := tx.Exec(ctx, approveReviewerQuery, prID, reviewerID)
	if err != nil {
		p.log.Errorw("failed to approve", "error", err, "pr_id", prID, "reviewer_id", reviewerID)
		return fmt.Errorf("approve: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: not a reviewer of this pull request", entities.ErrNotAuthorized)
	}

	if err := p.insertActivity(ctx, tx, prID, reviewerID, entities.ActivityApproved, nil, nil); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.log.Infow("pull request approved", "pr_id", prID, "reviewer_id", reviewerID)
	return nil
}

// branchCleanlyMergeable reports whether any edit on the branch started from a
// baseline that a competing merge has since advanced. Per entity, the base is
// the original of the earliest live tracker row: later rows chain their
// original to the branch's own intermediate drafts and say nothing about the
// base, and rows whose current version already merged belong to a previous
// review cycle.
func (p *Postgres) branchCleanlyMergeable(ctx context.Context, tx pgx.Tx, branchID string) (bool, error) {
	rows, err := tx.Query(ctx, selectBaseEditsPerEntityQuery, branchID)
	if err != nil {
		return false, fmt.Errorf("select branch edits: %w", err)
	}
	type edit struct{ entityID, originalID string }
	edits := make([]edit, 0)
	for rows.Next() {
		var e edit
		if err := rows.Scan(&e.entityID, &e.originalID); err != nil {
			rows.Close()
			return false, fmt.Errorf("scan branch edit: %w", err)
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return false, fmt.Errorf("iterate branch edits: %w", err)
	}
	rows.Close()

	for _, e := range edits {
		var originalStatus entities.VersionStatus
		if err := tx.QueryRow(ctx, selectVersionStatusQuery, e.originalID).Scan(&originalStatus); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Creation draft hard-deleted under its tombstone; the entity
				// began on this branch, nothing merged competes.
				continue
			}
			return false, fmt.Errorf("select original status: %w", err)
		}
		if originalStatus != entities.StatusMerged {
			// The entity's first edit started from the branch's own version,
			// so the entity began here and has no external base.
			continue
		}
		var baselineID string
		if err := tx.QueryRow(ctx, selectLatestMergedIDQuery, e.entityID).Scan(&baselineID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return false, fmt.Errorf("select baseline: %w", err)
		}
		if baselineID != e.originalID {
			return false, nil
		}
	}
	return true, nil
}

// MergePullRequest promotes the branch's pushed versions into the merged
// baseline. When the branch's base was invalidated by a competing merge the PR
// is flagged conflict and no version status changes.
func (p *Postgres) MergePullRequest(ctx context.Context, prID, userID string) (res *entities.PullRequest, err error) {
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

	clean, err := p.branchCleanlyMergeable(ctx, tx, pr.BranchID)
	if err != nil {
		return nil, err
	}
	if !clean {
		if err := tx.QueryRow(ctx, updatePRStatusQuery, prID, entities.StatusPRConflict).Scan(&pr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("flag conflict: %w", err)
		}
		if err := p.insertActivity(ctx, tx, prID, userID, "conflict_detected", nil, nil); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		p.log.Warnw("merge blocked by conflict", "pr_id", prID, "branch_id", pr.BranchID)
		return nil, entities.ErrMergeNotClean
	}

	if _, err := tx.Exec(ctx, mergeBranchVersionsQuery, pr.BranchID); err != nil {
		p.log.Errorw("failed to merge versions", "error", err, "branch_id", pr.BranchID)
		return nil, fmt.Errorf("merge versions: %w", err)
	}
	if err := tx.QueryRow(ctx, updatePRStatusQuery, prID, entities.StatusPRMerged).Scan(&pr.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update pr status: %w", err)
	}
	pr.Status = entities.StatusPRMerged

	if err := p.insertActivity(ctx, tx, prID, userID, entities.ActivityMerged, nil, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("pull request merged", "pr_id", prID, "branch_id", pr.BranchID)
	return pr, nil
}

// ClosePullRequest abandons an opened or conflicted PR. Drafts remain under
// the branch.
func (p *Postgres) ClosePullRequest(ctx context.Context, prID, userID string) (res *entities.PullRequest, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pr, err := p.prForUpdate(ctx, tx, prID)
	if err != nil {
		return nil, err
	}
	if pr.Status != entities.StatusOpened && pr.Status != entities.StatusPRConflict {
		return nil, entities.ErrPRNotOpen
	}

	if err := tx.QueryRow(ctx, updatePRStatusQuery, prID, entities.StatusClosed).Scan(&pr.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update pr status: %w", err)
	}
	pr.Status = entities.StatusClosed

	if err := p.insertActivity(ctx, tx, prID, userID, entities.ActivityClosed, nil, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("pull request closed", "pr_id", prID)
	return pr, nil
}

// ReopenPullRequest returns a conflicted PR to review once the branch is
// cleanly mergeable again.
func (p *Postgres) ReopenPullRequest(ctx context.Context, prID, userID string) (res *entities.PullRequest, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pr, err := p.prForUpdate(ctx, tx, prID)
	if err != nil {
		return nil, err
	}
	if pr.Status != entities.StatusPRConflict {
		return nil, fmt.Errorf("%w: only conflicted pull requests reopen", entities.ErrConflict)
	}

	clean, err := p.branchCleanlyMergeable(ctx, tx, pr.BranchID)
	if err != nil {
		return nil, err
	}
	if !clean {
		return nil, entities.ErrMergeNotClean
	}

	if err := tx.QueryRow(ctx, updatePRStatusQuery, prID, entities.StatusOpened).Scan(&pr.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update pr status: %w", err)
	}
	pr.Status = entities.StatusOpened

	if err := p.insertActivity(ctx, tx, prID, userID, entities.ActivityReopened, nil, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("pull request reopened", "pr_id", prID)
	return pr, nil
}

// UpdatePullRequest edits title/description in non-terminal states, logging
// the old and new title before mutating.
func (p *Postgres) UpdatePullRequest(ctx context.Context, prID, userID, title, description string) (res *entities.PullRequest, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pr, err := p.prForUpdate(ctx, tx, prID)
	if err != nil {
		return nil, err
	}
	if pr.Status == entities.StatusPRMerged || pr.Status == entities.StatusClosed {
		return nil, entities.ErrPRNotOpen
	}

	oldTitle := pr.Title
	if err := p.insertActivity(ctx, tx, prID, userID, entities.ActivityTitleEdited, &oldTitle, &title); err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, updatePRTitleQuery, prID, title, description).Scan(&pr.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update pr title: %w", err)
	}
	pr.Title = title
	pr.Description = description

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("pull request updated", "pr_id", prID)
	return pr, nil
}

// ListActivity returns the PR's append-only history.
func (p *Postgres) ListActivity(ctx context.Context, prID string) ([]entities.ActivityLog, error) {
	rows, err := p.db.Query(ctx, selectActivityQuery, prID)
	if err != nil {
		p.log.Errorw("failed to select activity", "error", err, "pr_id", prID)
		return nil, fmt.Errorf("select activity: %w", err)
	}
	defer rows.Close()

	logs := make([]entities.ActivityLog, 0)
	for rows.Next() {
		var a entities.ActivityLog
		if err := rows.Scan(&a.ID, &a.PullRequestID, &a.UserID, &a.Action, &a.OldTitle, &a.NewTitle, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		logs = append(logs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return logs, nil
}
