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
	selectSessionForUpdateQuery = `SELECT id, user_id, created_at FROM branch_sessions WHERE branch_id=$1 FOR UPDATE`
	insertSessionQuery          = `INSERT INTO branch_sessions(id, branch_id, user_id) VALUES ($1,$2,$3) RETURNING created_at`
	deleteOwnSessionQuery       = `DELETE FROM branch_sessions WHERE branch_id=$1 AND user_id=$2`
)

// TryAcquireSession takes the branch write lock for the PR's branch. The PR
// row and any existing session row are locked so two simultaneous acquirers
// cannot both observe "no session"; exactly one wins, the loser gets the
// holder's id in the outcome.
func (p *Postgres) TryAcquireSession(ctx context.Context, prID, userID string) (out entities.AcquireOutcome, err error) {
	tx, err := p.begin(ctx)
	if err != nil {
		return entities.AcquireOutcome{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pr, err := p.prForUpdate(ctx, tx, prID)
	if err != nil {
		return entities.AcquireOutcome{}, err
	}
	if pr.Status != entities.StatusOpened {
		return entities.AcquireOutcome{}, entities.ErrPRNotOpen
	}

	var existing entities.BranchSession
	err = tx.QueryRow(ctx, selectSessionForUpdateQuery, pr.BranchID).
		Scan(&existing.ID, &existing.UserID, &existing.CreatedAt)
	switch {
	case err == nil:
		if err := tx.Commit(ctx); err != nil {
			return entities.AcquireOutcome{}, err
		}
		return entities.AcquireOutcome{Acquired: false, HeldBy: existing.UserID}, nil
	case !errors.Is(err, pgx.ErrNoRows):
		p.log.Errorw("failed to lock branch session", "error", err, "branch_id", pr.BranchID)
		return entities.AcquireOutcome{}, fmt.Errorf("lock branch session: %w", err)
	}

	s := &entities.BranchSession{
		ID:       uuid.NewString(),
		BranchID: pr.BranchID,
		UserID:   userID,
	}
	if err := tx.QueryRow(ctx, insertSessionQuery, s.ID, s.BranchID, userID).Scan(&s.CreatedAt); err != nil {
		p.log.Errorw("failed to insert branch session", "error", err, "branch_id", pr.BranchID)
		return entities.AcquireOutcome{}, fmt.Errorf("insert branch session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return entities.AcquireOutcome{}, err
	}
	p.log.Infow("branch session acquired", "branch_id", pr.BranchID, "user_id", userID)
	return entities.AcquireOutcome{Acquired: true, Session: s}, nil
}

// ReleaseSession deletes only a session matching both branch and user. Release
// by a non-holder is a no-op; another user's session is never touched.
func (p *Postgres) ReleaseSession(ctx context.Context, branchID, userID string) error {
	tag, err := p.db.Exec(ctx, deleteOwnSessionQuery, branchID, userID)
	if err != nil {
		p.log.Errorw("failed to release session", "error", err, "branch_id", branchID)
		return fmt.Errorf("release session: %w", err)
	}
	if tag.RowsAffected() > 0 {
		p.log.Infow("branch session released", "branch_id", branchID, "user_id", userID)
	}
	return nil
}
