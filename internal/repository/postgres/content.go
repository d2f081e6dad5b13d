package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"branch-content-review/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const versionColumns = `id, entity_id, kind, organization_id, branch_id, edit_session_id,
title, slug, body, position, parent_id, status, is_deleted, created_at, updated_at, deleted_at`

const (
	selectBranchOrgQuery = `SELECT organization_id FROM branches WHERE id=$1`
	selectEntityQuery    = `SELECT id, kind, organization_id, created_at FROM content_entities WHERE id=$1`
	insertEntityQuery    = `INSERT INTO content_entities(id, kind, organization_id) VALUES ($1,$2,$3)`

	insertVersionQuery = `INSERT INTO content_versions
(id, entity_id, kind, organization_id, branch_id, edit_session_id, title, slug, body, position, parent_id, status, is_deleted, deleted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING created_at, updated_at`

	selectLatestOnBranchQuery = `SELECT ` + versionColumns + `
FROM content_versions
WHERE entity_id=$1 AND branch_id=$2
ORDER BY created_at DESC
LIMIT 1`
	selectLatestMergedQuery = `SELECT ` + versionColumns + `
FROM content_versions
WHERE entity_id=$1 AND status='merged'
ORDER BY created_at DESC
LIMIT 1`

	hardDeleteDraftQuery = `DELETE FROM content_versions WHERE id=$1 AND branch_id=$2 AND status='draft'`

	insertTrackerQuery = `INSERT INTO edit_trackers(id, branch_id, kind, entity_id, original_version_id, current_version_id)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING created_at`

	selectChildEntitiesQuery = `SELECT DISTINCT entity_id FROM content_versions
WHERE parent_id=$1 AND (branch_id=$2 OR status='merged')`

	upsertSessionDiffQuery = `INSERT INTO pr_edit_session_diffs
(id, edit_session_id, kind, entity_id, original_version_id, current_version_id, diff_type)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (edit_session_id, kind, original_version_id) DO UPDATE
SET current_version_id = EXCLUDED.current_version_id,
    diff_type = CASE
        WHEN pr_edit_session_diffs.diff_type = 'created' AND EXCLUDED.diff_type <> 'deleted' THEN 'created'
        ELSE EXCLUDED.diff_type
    END`
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanVersion(row pgx.Row) (*entities.Version, error) {
	var v entities.Version
	err := row.Scan(
		&v.ID, &v.EntityID, &v.Kind, &v.OrganizationID, &v.BranchID, &v.EditSessionID,
		&v.Title, &v.Slug, &v.Body, &v.Position, &v.ParentID, &v.Status, &v.IsDeleted,
		&v.CreatedAt, &v.UpdatedAt, &v.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// currentVersion resolves "current content for branch B": the latest version
// on the branch, falling back to the latest merged version.
func (p *Postgres) currentVersion(ctx context.Context, q querier, entityID, branchID string) (*entities.Version, error) {
	v, err := scanVersion(q.QueryRow(ctx, selectLatestOnBranchQuery, entityID, branchID))
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("select branch version: %w", err)
	}
	v, err = scanVersion(q.QueryRow(ctx, selectLatestMergedQuery, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrVersionNotFound
		}
		return nil, fmt.Errorf("select merged version: %w", err)
	}
	return v, nil
}

func (p *Postgres) insertVersion(ctx context.Context, q querier, v *entities.Version) error {
	return q.QueryRow(ctx, insertVersionQuery,
		v.ID, v.EntityID, v.Kind, v.OrganizationID, v.BranchID, v.EditSessionID,
		v.Title, v.Slug, v.Body, v.Position, v.ParentID, v.Status, v.IsDeleted, v.DeletedAt,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
}

func (p *Postgres) insertTracker(ctx context.Context, q querier, t *entities.EditTracker) error {
	return q.QueryRow(ctx, insertTrackerQuery,
		t.ID, t.BranchID, t.Kind, t.EntityID, t.OriginalVersionID, t.CurrentVersionID,
	).Scan(&t.CreatedAt)
}

func (p *Postgres) upsertSessionDiff(ctx context.Context, q querier, sessionID string, kind entities.EntityKind, entityID, originalID, currentID string, diffType entities.DiffType) error {
	if _, err := q.Exec(ctx, upsertSessionDiffQuery,
		uuid.NewString(), sessionID, kind, entityID, originalID, currentID, diffType,
	); err != nil {
		return fmt.Errorf("upsert session diff: %w", err)
	}
	return nil
}

func (p *Postgres) branchOrg(ctx context.Context, q querier, branchID string) (string, error) {
	var orgID string
	if err := q.QueryRow(ctx, selectBranchOrgQuery, branchID).Scan(&orgID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", entities.ErrBranchNotFound
		}
		return "", fmt.Errorf("select branch: %w", err)
	}
	return orgID, nil
}

// CreateContent inserts a new entity with its first draft version and the
// creation tracker row (original == current).
func (p *Postgres) CreateContent(ctx context.Context, branchID string, kind entities.EntityKind, content entities.VersionContent, editSessionID *string) (res *entities.Version, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orgID, err := p.branchOrg(ctx, tx, branchID)
	if err != nil {
		return nil, err
	}

	entityID := uuid.NewString()
	if _, err := tx.Exec(ctx, insertEntityQuery, entityID, kind, orgID); err != nil {
		p.log.Errorw("failed to insert entity", "error", err, "kind", kind)
		return nil, fmt.Errorf("insert entity: %w", err)
	}

	v := &entities.Version{
		ID:             uuid.NewString(),
		EntityID:       entityID,
		Kind:           kind,
		OrganizationID: orgID,
		BranchID:       &branchID,
		EditSessionID:  editSessionID,
		Title:          content.Title,
		Slug:           content.Slug,
		Body:           content.Body,
		Position:       content.Position,
		ParentID:       content.ParentID,
		Status:         entities.StatusDraft,
	}
	if err := p.insertVersion(ctx, tx, v); err != nil {
		p.log.Errorw("failed to insert version", "error", err, "entity_id", entityID)
		return nil, fmt.Errorf("insert version: %w", err)
	}

	t := &entities.EditTracker{
		ID:                uuid.NewString(),
		BranchID:          branchID,
		Kind:              kind,
		EntityID:          entityID,
		OriginalVersionID: v.ID,
		CurrentVersionID:  v.ID,
	}
	if err := p.insertTracker(ctx, tx, t); err != nil {
		p.log.Errorw("failed to insert tracker", "error", err, "entity_id", entityID)
		return nil, fmt.Errorf("insert tracker: %w", err)
	}

	if editSessionID != nil {
		if err := p.upsertSessionDiff(ctx, tx, *editSessionID, kind, entityID, v.ID, v.ID, entities.DiffCreated); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("content created", "kind", kind, "entity_id", entityID, "branch_id", branchID)
	return v, nil
}

// UpdateContent appends a new draft version on the branch and records the
// tracker row linking it to the version the edit started from.
func (p *Postgres) UpdateContent(ctx context.Context, branchID string, kind entities.EntityKind, entityID string, content entities.VersionContent, editSessionID *string) (res *entities.Version, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orgID, err := p.branchOrg(ctx, tx, branchID)
	if err != nil {
		return nil, err
	}
	if err := p.checkEntity(ctx, tx, entityID, kind, orgID); err != nil {
		return nil, err
	}

	original, err := p.currentVersion(ctx, tx, entityID, branchID)
	if err != nil {
		return nil, err
	}

	v := &entities.Version{
		ID:             uuid.NewString(),
		EntityID:       entityID,
		Kind:           kind,
		OrganizationID: orgID,
		BranchID:       &branchID,
		EditSessionID:  editSessionID,
		Title:          content.Title,
		Slug:           content.Slug,
		Body:           content.Body,
		Position:       content.Position,
		ParentID:       content.ParentID,
		Status:         entities.StatusDraft,
	}
	if err := p.insertVersion(ctx, tx, v); err != nil {
		p.log.Errorw("failed to insert version", "error", err, "entity_id", entityID)
		return nil, fmt.Errorf("insert version: %w", err)
	}

	t := &entities.EditTracker{
		ID:                uuid.NewString(),
		BranchID:          branchID,
		Kind:              kind,
		EntityID:          entityID,
		OriginalVersionID: original.ID,
		CurrentVersionID:  v.ID,
	}
	if err := p.insertTracker(ctx, tx, t); err != nil {
		p.log.Errorw("failed to insert tracker", "error", err, "entity_id", entityID)
		return nil, fmt.Errorf("insert tracker: %w", err)
	}

	if editSessionID != nil {
		if err := p.upsertSessionDiff(ctx, tx, *editSessionID, kind, entityID, original.ID, v.ID, entities.DiffUpdated); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("content updated", "kind", kind, "entity_id", entityID, "branch_id", branchID)
	return v, nil
}

// DeleteContent tombstones an entity. For a category the whole subtree is
// walked and every descendant document and category gets its own tombstone
// version plus tracker row. Returns the tombstones in walk order, the target
// itself last.
func (p *Postgres) DeleteContent(ctx context.Context, branchID string, kind entities.EntityKind, entityID string, editSessionID *string) (res []entities.Version, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orgID, err := p.branchOrg(ctx, tx, branchID)
	if err != nil {
		return nil, err
	}
	if err := p.checkEntity(ctx, tx, entityID, kind, orgID); err != nil {
		return nil, err
	}

	type target struct {
		entityID string
		kind     entities.EntityKind
	}
	var targets []target
	if kind == entities.KindCategory {
		targets, err = func() (out []target, err error) {
			var walk func(catID string) error
			walk = func(catID string) error {
				children, err := p.childEntities(ctx, tx, catID, branchID)
				if err != nil {
					return err
				}
				for _, c := range children {
					if c.Kind == entities.KindCategory {
						if err := walk(c.EntityID); err != nil {
							return err
						}
					}
					out = append(out, target{entityID: c.EntityID, kind: c.Kind})
				}
				return nil
			}
			if err := walk(entityID); err != nil {
				return nil, err
			}
			return out, nil
		}()
		if err != nil {
			return nil, err
		}
	}
	targets = append(targets, target{entityID: entityID, kind: kind})

	tombstones := make([]entities.Version, 0, len(targets))
	for _, tgt := range targets {
		cur, err := p.currentVersion(ctx, tx, tgt.entityID, branchID)
		if err != nil {
			return nil, err
		}
		if cur.IsDeleted {
			continue
		}

		now := time.Now().UTC()
		tomb := &entities.Version{
			ID:             uuid.NewString(),
			EntityID:       tgt.entityID,
			Kind:           tgt.kind,
			OrganizationID: orgID,
			BranchID:       &branchID,
			EditSessionID:  editSessionID,
			Title:          cur.Title,
			Slug:           cur.Slug,
			Body:           cur.Body,
			Position:       cur.Position,
			ParentID:       cur.ParentID,
			Status:         entities.StatusDraft,
			IsDeleted:      true,
			DeletedAt:      &now,
		}
		if err := p.insertVersion(ctx, tx, tomb); err != nil {
			p.log.Errorw("failed to insert tombstone", "error", err, "entity_id", tgt.entityID)
			return nil, fmt.Errorf("insert tombstone: %w", err)
		}

		// A still-draft predecessor on the same branch is superseded by the
		// tombstone and hard-deleted; merged history always stays.
		if cur.Status == entities.StatusDraft && cur.BranchID != nil && *cur.BranchID == branchID {
			if _, err := tx.Exec(ctx, hardDeleteDraftQuery, cur.ID, branchID); err != nil {
				p.log.Errorw("failed to hard-delete draft", "error", err, "version_id", cur.ID)
				return nil, fmt.Errorf("hard-delete draft: %w", err)
			}
		}

		t := &entities.EditTracker{
			ID:                uuid.NewString(),
			BranchID:          branchID,
			Kind:              tgt.kind,
			EntityID:          tgt.entityID,
			OriginalVersionID: cur.ID,
			CurrentVersionID:  tomb.ID,
		}
		if err := p.insertTracker(ctx, tx, t); err != nil {
			p.log.Errorw("failed to insert tracker", "error", err, "entity_id", tgt.entityID)
			return nil, fmt.Errorf("insert tracker: %w", err)
		}

		if editSessionID != nil {
			if err := p.upsertSessionDiff(ctx, tx, *editSessionID, tgt.kind, tgt.entityID, cur.ID, tomb.ID, entities.DiffDeleted); err != nil {
				return nil, err
			}
		}

		tombstones = append(tombstones, *tomb)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("content deleted", "kind", kind, "entity_id", entityID, "branch_id", branchID, "tombstones", len(tombstones))
	return tombstones, nil
}

type childEntity struct {
	EntityID string
	Kind     entities.EntityKind
}

// childEntities returns entities whose current version (for the branch, else
// merged) still lives under the given category and is not tombstoned.
func (p *Postgres) childEntities(ctx context.Context, q querier, parentEntityID, branchID string) ([]childEntity, error) {
	rows, err := q.Query(ctx, selectChildEntitiesQuery, parentEntityID, branchID)
	if err != nil {
		return nil, fmt.Errorf("select child entities: %w", err)
	}
	defer rows.Close()

	var candidates []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		candidates = append(candidates, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	children := make([]childEntity, 0, len(candidates))
	for _, id := range candidates {
		cur, err := p.currentVersion(ctx, q, id, branchID)
		if err != nil {
			if errors.Is(err, entities.ErrVersionNotFound) {
				continue
			}
			return nil, err
		}
		if cur.IsDeleted || cur.ParentID == nil || *cur.ParentID != parentEntityID {
			continue
		}
		children = append(children, childEntity{EntityID: id, Kind: cur.Kind})
	}
	return children, nil
}

func (p *Postgres) checkEntity(ctx context.Context, q querier, entityID string, kind entities.EntityKind, orgID string) error {
	var e entities.ContentEntity
	err := q.QueryRow(ctx, selectEntityQuery, entityID).
		Scan(&e.ID, &e.Kind, &e.OrganizationID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.ErrEntityNotFound
		}
		return fmt.Errorf("select entity: %w", err)
	}
	if e.OrganizationID != orgID || e.Kind != kind {
		return entities.ErrEntityNotFound
	}
	return nil
}
