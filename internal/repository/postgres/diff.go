package postgres

import (
	"context"
	"errors"
	"fmt"

	"branch-content-review/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	selectOpenEditsQuery = `SELECT id, branch_id, kind, entity_id, original_version_id, current_version_id, commit_id, created_at
FROM edit_trackers
WHERE branch_id=$1 AND commit_id IS NULL
ORDER BY created_at ASC`
	selectBranchEditsQuery = `SELECT t.id, t.branch_id, t.kind, t.entity_id, t.original_version_id, t.current_version_id, t.commit_id, t.created_at
FROM edit_trackers t
JOIN content_versions v ON v.id = t.current_version_id
WHERE t.branch_id=$1 AND v.status <> 'merged'
ORDER BY t.created_at ASC`
	selectVersionQuery = `SELECT ` + versionColumns + ` FROM content_versions WHERE id=$1`
	selectSessionDiffsQuery = `SELECT id, edit_session_id, kind, entity_id, original_version_id, current_version_id, diff_type
FROM pr_edit_session_diffs
WHERE edit_session_id=$1`
)

func (p *Postgres) selectTrackers(ctx context.Context, query, branchID string) ([]entities.EditTracker, error) {
	rows, err := p.db.Query(ctx, query, branchID)
	if err != nil {
		p.log.Errorw("failed to select edits", "error", err, "branch_id", branchID)
		return nil, fmt.Errorf("select edits: %w", err)
	}
	defer rows.Close()

	edits := make([]entities.EditTracker, 0)
	for rows.Next() {
		var t entities.EditTracker
		if err := rows.Scan(&t.ID, &t.BranchID, &t.Kind, &t.EntityID, &t.OriginalVersionID, &t.CurrentVersionID, &t.CommitID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		edits = append(edits, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edits: %w", err)
	}
	return edits, nil
}

// OpenEdits returns the branch's tracker rows not yet claimed by a commit.
// This feeds the commit aggregator only; the diff views read BranchEdits.
func (p *Postgres) OpenEdits(ctx context.Context, branchID string) ([]entities.EditTracker, error) {
	return p.selectTrackers(ctx, selectOpenEditsQuery, branchID)
}

// BranchEdits returns every live tracker row of the branch, committed or not.
// A row drops out only once its current version reaches merged (or the version
// was hard-deleted under a superseding tombstone, leaving the row dangling).
func (p *Postgres) BranchEdits(ctx context.Context, branchID string) ([]entities.EditTracker, error) {
	return p.selectTrackers(ctx, selectBranchEditsQuery, branchID)
}

// GetVersion returns a version by id.
func (p *Postgres) GetVersion(ctx context.Context, versionID string) (*entities.Version, error) {
	v, err := scanVersion(p.db.QueryRow(ctx, selectVersionQuery, versionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrVersionNotFound
		}
		p.log.Errorw("failed to get version", "error", err, "version_id", versionID)
		return nil, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// LatestMergedVersion returns the entity's merge baseline.
func (p *Postgres) LatestMergedVersion(ctx context.Context, entityID string) (*entities.Version, error) {
	v, err := scanVersion(p.db.QueryRow(ctx, selectLatestMergedQuery, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrVersionNotFound
		}
		p.log.Errorw("failed to get merged version", "error", err, "entity_id", entityID)
		return nil, fmt.Errorf("get merged version: %w", err)
	}
	return v, nil
}

// SessionDiffs returns the overlay ledger of a PR edit session.
func (p *Postgres) SessionDiffs(ctx context.Context, editSessionID string) ([]entities.EditSessionDiff, error) {
	rows, err := p.db.Query(ctx, selectSessionDiffsQuery, editSessionID)
	if err != nil {
		p.log.Errorw("failed to select session diffs", "error", err, "edit_session_id", editSessionID)
		return nil, fmt.Errorf("select session diffs: %w", err)
	}
	defer rows.Close()

	diffs := make([]entities.EditSessionDiff, 0)
	for rows.Next() {
		var d entities.EditSessionDiff
		if err := rows.Scan(&d.ID, &d.EditSessionID, &d.Kind, &d.EntityID, &d.OriginalVersionID, &d.CurrentVersionID, &d.DiffType); err != nil {
			return nil, fmt.Errorf("scan session diff: %w", err)
		}
		diffs = append(diffs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session diffs: %w", err)
	}
	return diffs, nil
}
