package postgres

import (
	"context"
	"errors"
	"fmt"

	"branch-content-review/internal/entities"

	"github.com/jackc/pgx/v5"
)

const getUserQuery = `SELECT id, name, email, role, organization_id FROM users WHERE id=$1`

// GetUser returns an organization member by id.
func (p *Postgres) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	var u entities.User
	err := p.db.QueryRow(ctx, getUserQuery, userID).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		p.log.Errorw("failed to get user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
