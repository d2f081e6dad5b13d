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
	insertEditSessionQuery = `INSERT INTO pr_edit_sessions(id, pull_request_id, user_id, token)
VALUES ($1,$2,$3,$4)
RETURNING started_at`
	finishEditSessionQuery = `UPDATE pr_edit_sessions SET finished_at=NOW()
WHERE token=$1 AND finished_at IS NULL
RETURNING id, pull_request_id, user_id, token, started_at, finished_at`
	selectEditSessionQuery = `SELECT id, pull_request_id, user_id, token, started_at, finished_at
FROM pr_edit_sessions
WHERE pull_request_id=$1 AND token=$2 AND finished_at IS NULL`
)

// StartEditSession opens a token-addressable edit session against an open PR.
func (p *Postgres) StartEditSession(ctx context.Context, prID, userID, token string) (res *entities.EditSession, err error) {
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

	s := &entities.EditSession{
		ID:            uuid.NewString(),
		PullRequestID: prID,
		UserID:        userID,
		Token:         token,
	}
	if err := tx.QueryRow(ctx, insertEditSessionQuery, s.ID, prID, userID, token).Scan(&s.StartedAt); err != nil {
		p.log.Errorw("failed to insert edit session", "error", err, "pr_id", prID)
		return nil, fmt.Errorf("insert edit session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.log.Infow("edit session started", "pr_id", prID, "edit_session_id", s.ID)
	return s, nil
}

// FinishEditSession stamps finished_at on an unfinished session.
func (p *Postgres) FinishEditSession(ctx context.Context, token string) (*entities.EditSession, error) {
	var s entities.EditSession
	err := p.db.QueryRow(ctx, finishEditSessionQuery, token).
		Scan(&s.ID, &s.PullRequestID, &s.UserID, &s.Token, &s.StartedAt, &s.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrEditSessionNotFound
		}
		p.log.Errorw("failed to finish edit session", "error", err)
		return nil, fmt.Errorf("finish edit session: %w", err)
	}
	p.log.Infow("edit session finished", "edit_session_id", s.ID)
	return &s, nil
}

// GetEditSession resolves an unfinished session by PR and token.
func (p *Postgres) GetEditSession(ctx context.Context, prID, token string) (*entities.EditSession, error) {
	var s entities.EditSession
	err := p.db.QueryRow(ctx, selectEditSessionQuery, prID, token).
		Scan(&s.ID, &s.PullRequestID, &s.UserID, &s.Token, &s.StartedAt, &s.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrEditSessionNotFound
		}
		p.log.Errorw("failed to get edit session", "error", err, "pr_id", prID)
		return nil, fmt.Errorf("get edit session: %w", err)
	}
	return &s, nil
}
