package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"branch-content-review/internal/entities"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// BranchDiff compares every live edit of the resolved branch against the
// merged baseline of the same entity. Committed edits stay in the diff until
// they merge; only the commit aggregator cares about claimed vs unclaimed.
func (u *Usecase) BranchDiff(ctx context.Context, id entities.Identity, editPullRequestID *string) (entities.DiffData, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	branchID, err := u.FetchOrCreateActiveBranch(ctx, id, editPullRequestID)
	if err != nil {
		return entities.DiffData{}, err
	}

	rows, err := u.repo.BranchEdits(ctx, branchID)
	if err != nil {
		return entities.DiffData{}, err
	}
	return u.buildDiff(ctx, branchID, id.OrganizationID, rows)
}

// SessionDiff renders a PR edit session's overlay ledger on its own, before
// the session's edits fold into the branch diff through the tracker rows.
func (u *Usecase) SessionDiff(ctx context.Context, id entities.Identity, prID, token string) (entities.DiffData, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if prID == "" || token == "" {
		return entities.DiffData{}, fmt.Errorf("%w: pull_request_id and token are required", entities.ErrInvalidArgument)
	}

	s, err := u.repo.GetEditSession(ctx, prID, token)
	if err != nil {
		return entities.DiffData{}, err
	}
	b, err := u.repo.GetBranchByPR(ctx, prID, id.OrganizationID)
	if err != nil {
		return entities.DiffData{}, err
	}

	overlay, err := u.repo.SessionDiffs(ctx, s.ID)
	if err != nil {
		return entities.DiffData{}, err
	}

	data := entities.DiffData{
		Categories:     make([]entities.DiffItem, 0),
		Documents:      make([]entities.DiffItem, 0),
		UserBranchID:   b.ID,
		OrganizationID: id.OrganizationID,
	}
	for _, d := range overlay {
		item, err := u.buildItem(ctx, b.ID, d.EntityID, d.CurrentVersionID)
		if err != nil {
			return entities.DiffData{}, err
		}
		item.ChangeType = d.DiffType
		appendItem(&data, d.Kind, item)
	}
	return data, nil
}

func (u *Usecase) buildDiff(ctx context.Context, branchID, orgID string, rows []entities.EditTracker) (entities.DiffData, error) {
	// The most recent tracker row per entity is authoritative; earlier rows
	// are superseded, never double-counted. Rows arrive oldest first.
	order := make([]string, 0, len(rows))
	latest := make(map[string]entities.EditTracker, len(rows))
	for _, r := range rows {
		if _, seen := latest[r.EntityID]; !seen {
			order = append(order, r.EntityID)
		}
		latest[r.EntityID] = r
	}

	data := entities.DiffData{
		Categories:     make([]entities.DiffItem, 0, len(order)),
		Documents:      make([]entities.DiffItem, 0, len(order)),
		UserBranchID:   branchID,
		OrganizationID: orgID,
	}
	for _, entityID := range order {
		r := latest[entityID]
		item, err := u.buildItem(ctx, branchID, r.EntityID, r.CurrentVersionID)
		if err != nil {
			return entities.DiffData{}, err
		}
		appendItem(&data, r.Kind, item)
	}
	return data, nil
}

func (u *Usecase) buildItem(ctx context.Context, branchID, entityID, currentVersionID string) (entities.DiffItem, error) {
	after, err := u.repo.GetVersion(ctx, currentVersionID)
	if err != nil {
		return entities.DiffItem{}, err
	}

	before, err := u.repo.LatestMergedVersion(ctx, entityID)
	if err != nil {
		if !errors.Is(err, entities.ErrVersionNotFound) {
			return entities.DiffItem{}, err
		}
		before = nil
	}
	// The baseline of the draft itself is no baseline at all: an entity whose
	// only merged version is the branch's just-merged draft is not "updated"
	// against itself.
	if before != nil && before.ID == after.ID {
		before = nil
	}

	item := entities.DiffItem{
		ID:           entityID,
		Kind:         after.Kind,
		Slug:         after.Slug,
		Title:        after.Title,
		Content:      after.Body,
		Position:     after.Position,
		ParentID:     after.ParentID,
		Status:       after.Status,
		UserBranchID: branchID,
		CreatedAt:    after.CreatedAt,
		UpdatedAt:    after.UpdatedAt,
		Before:       snapshot(before),
		ChangeType:   classifyChange(before, after),
		FieldDiffs:   u.fieldDiffs(before, after),
	}
	if !after.IsDeleted {
		item.After = snapshot(after)
	}
	return item, nil
}

// classifyChange is independent of the rendered text diff: created when no
// merged baseline exists, deleted when the draft is a tombstone, else updated.
func classifyChange(before, after *entities.Version) entities.DiffType {
	switch {
	case before == nil:
		return entities.DiffCreated
	case after.IsDeleted:
		return entities.DiffDeleted
	default:
		return entities.DiffUpdated
	}
}

func snapshot(v *entities.Version) *entities.DiffSnapshot {
	if v == nil {
		return nil
	}
	return &entities.DiffSnapshot{
		ID:        v.ID,
		Slug:      v.Slug,
		Title:     v.Title,
		Content:   v.Body,
		Position:  v.Position,
		ParentID:  v.ParentID,
		Status:    string(v.Status),
		IsDeleted: v.IsDeleted,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
		DeletedAt: v.DeletedAt,
	}
}

// fieldDiffs renders per-field insert/delete spans for every changed field.
// A missing side (never merged, or tombstoned) diffs against empty text.
func (u *Usecase) fieldDiffs(before, after *entities.Version) map[string][]entities.DiffSpan {
	type pair struct{ b, a string }
	fields := map[string]pair{}

	get := func(v *entities.Version, emptyWhenDeleted bool) (title, slug, body, position string) {
		if v == nil || (emptyWhenDeleted && v.IsDeleted) {
			return "", "", "", ""
		}
		return v.Title, v.Slug, u.normalizer.Normalize(v.Body), strconv.Itoa(v.Position)
	}
	bt, bs, bb, bp := get(before, false)
	at, as, ab, ap := get(after, true)

	fields["title"] = pair{bt, at}
	fields["slug"] = pair{bs, as}
	fields["body"] = pair{bb, ab}
	fields["position"] = pair{bp, ap}

	out := make(map[string][]entities.DiffSpan)
	for name, f := range fields {
		if f.b == f.a {
			continue
		}
		out[name] = textDiff(f.b, f.a)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// textDiff delegates to the external diff primitive, with semantic cleanup,
// returning ordered (operation, text) tuples.
func textDiff(before, after string) []entities.DiffSpan {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	spans := make([]entities.DiffSpan, 0, len(diffs))
	for _, d := range diffs {
		var op entities.SpanOp
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = entities.SpanInsert
		case diffmatchpatch.DiffDelete:
			op = entities.SpanDelete
		default:
			op = entities.SpanEqual
		}
		spans = append(spans, entities.DiffSpan{Op: op, Text: d.Text})
	}
	return spans
}

func appendItem(data *entities.DiffData, kind entities.EntityKind, item entities.DiffItem) {
	if kind == entities.KindCategory {
		data.Categories = append(data.Categories, item)
		return
	}
	data.Documents = append(data.Documents, item)
}
