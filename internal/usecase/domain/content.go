package domain

import (
	"context"
	"fmt"

	"branch-content-review/internal/entities"
)

// writeTarget is the resolved destination of a content mutation: the branch
// to write on and, when the caller presented a valid edit token, the PR edit
// session the versions belong to.
type writeTarget struct {
	branchID      string
	editSessionID *string
}

func (u *Usecase) resolveWriteTarget(ctx context.Context, id entities.Identity, editPullRequestID, editToken *string) (writeTarget, error) {
	if editPullRequestID != nil && editToken != nil {
		s, err := u.repo.GetEditSession(ctx, *editPullRequestID, *editToken)
		if err != nil {
			return writeTarget{}, err
		}
		b, err := u.repo.GetBranchByPR(ctx, *editPullRequestID, id.OrganizationID)
		if err != nil {
			return writeTarget{}, err
		}
		return writeTarget{branchID: b.ID, editSessionID: &s.ID}, nil
	}

	branchID, err := u.FetchOrCreateActiveBranch(ctx, id, editPullRequestID)
	if err != nil {
		return writeTarget{}, err
	}
	return writeTarget{branchID: branchID}, nil
}

func (u *Usecase) checkWriter(id entities.Identity) error {
	if id.Role == entities.RoleViewer {
		return fmt.Errorf("%w: viewers cannot edit content", entities.ErrNotAuthorized)
	}
	return nil
}

// CreateContent creates a category or document as a new entity with its first
// draft version on the resolved branch.
func (u *Usecase) CreateContent(ctx context.Context, id entities.Identity, kind entities.EntityKind, content entities.VersionContent, editPullRequestID, editToken *string) (*entities.Version, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.checkWriter(id); err != nil {
		return nil, err
	}
	if content.Title == "" || content.Slug == "" {
		return nil, fmt.Errorf("%w: title and slug are required", entities.ErrInvalidArgument)
	}
	content.Body = u.normalizer.Normalize(content.Body)

	target, err := u.resolveWriteTarget(ctx, id, editPullRequestID, editToken)
	if err != nil {
		return nil, err
	}

	v, err := u.repo.CreateContent(ctx, target.branchID, kind, content, target.editSessionID)
	if err != nil {
		return nil, err
	}
	u.log.Infow("content created", "kind", kind, "entity_id", v.EntityID, "branch_id", target.branchID)
	return v, nil
}

// UpdateContent appends a new draft version of an existing entity.
func (u *Usecase) UpdateContent(ctx context.Context, id entities.Identity, kind entities.EntityKind, entityID string, content entities.VersionContent, editPullRequestID, editToken *string) (*entities.Version, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.checkWriter(id); err != nil {
		return nil, err
	}
	if entityID == "" {
		return nil, fmt.Errorf("%w: entity id is required", entities.ErrInvalidArgument)
	}
	if content.Title == "" || content.Slug == "" {
		return nil, fmt.Errorf("%w: title and slug are required", entities.ErrInvalidArgument)
	}
	content.Body = u.normalizer.Normalize(content.Body)

	target, err := u.resolveWriteTarget(ctx, id, editPullRequestID, editToken)
	if err != nil {
		return nil, err
	}

	return u.repo.UpdateContent(ctx, target.branchID, kind, entityID, content, target.editSessionID)
}

// DeleteContent tombstones an entity; deleting a category tombstones its
// whole subtree.
func (u *Usecase) DeleteContent(ctx context.Context, id entities.Identity, kind entities.EntityKind, entityID string, editPullRequestID, editToken *string) ([]entities.Version, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.checkWriter(id); err != nil {
		return nil, err
	}
	if entityID == "" {
		return nil, fmt.Errorf("%w: entity id is required", entities.ErrInvalidArgument)
	}

	target, err := u.resolveWriteTarget(ctx, id, editPullRequestID, editToken)
	if err != nil {
		return nil, err
	}

	tombstones, err := u.repo.DeleteContent(ctx, target.branchID, kind, entityID, target.editSessionID)
	if err != nil {
		return nil, err
	}
	u.log.Infow("content deleted", "kind", kind, "entity_id", entityID, "tombstones", len(tombstones))
	return tombstones, nil
}
