// Package mapper converts between domain models and transport DTOs.
package mapper

import (
	"branch-content-review/internal/entities"
	"branch-content-review/internal/transport/http/dto"
)

// ToDTOVersion maps entities.Version to transport model.
func ToDTOVersion(v entities.Version) dto.Version {
	return dto.Version{
		ID:        v.ID,
		EntityID:  v.EntityID,
		Kind:      v.Kind,
		BranchID:  v.BranchID,
		Title:     v.Title,
		Slug:      v.Slug,
		Body:      v.Body,
		Position:  v.Position,
		ParentID:  v.ParentID,
		Status:    v.Status,
		IsDeleted: v.IsDeleted,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
		DeletedAt: v.DeletedAt,
	}
}

// ToDTOVersionList maps a slice of versions to transport slice.
func ToDTOVersionList(list []entities.Version) []dto.Version {
	res := make([]dto.Version, 0, len(list))
	for _, v := range list {
		res = append(res, ToDTOVersion(v))
	}
	return res
}

// FromContentPayload builds entities.VersionContent from transport DTO.
func FromContentPayload(src dto.ContentPayload) entities.VersionContent {
	return entities.VersionContent{
		Title:    src.Title,
		Slug:     src.Slug,
		Body:     src.Body,
		Position: src.Position,
		ParentID: src.ParentID,
	}
}

// ToDTOCommit maps entities.Commit to transport model.
func ToDTOCommit(c entities.Commit) dto.Commit {
	return dto.Commit{
		ID:            c.ID,
		BranchID:      c.BranchID,
		PullRequestID: c.PullRequestID,
		UserID:        c.UserID,
		Message:       c.Message,
		CreatedAt:     c.CreatedAt,
	}
}

// ToDTOPull maps entities.PullRequest to transport model.
func ToDTOPull(pr entities.PullRequest) dto.PullRequest {
	return dto.PullRequest{
		ID:          pr.ID,
		BranchID:    pr.BranchID,
		AuthorID:    pr.AuthorID,
		Title:       pr.Title,
		Description: pr.Description,
		Status:      pr.Status,
		CreatedAt:   pr.CreatedAt,
		UpdatedAt:   pr.UpdatedAt,
	}
}

// ToDTOReviewer maps entities.Reviewer to transport model.
func ToDTOReviewer(r entities.Reviewer) dto.Reviewer {
	return dto.Reviewer{
		UserID:       r.UserID,
		Name:         r.Name,
		Email:        r.Email,
		ActionStatus: r.ActionStatus,
	}
}

// ToDTOPullDetail maps the aggregated PR view to transport model.
func ToDTOPullDetail(d entities.PullRequestDetail) dto.PullRequestDetail {
	reviewers := make([]dto.Reviewer, 0, len(d.Reviewers))
	for _, r := range d.Reviewers {
		reviewers = append(reviewers, ToDTOReviewer(r))
	}
	return dto.PullRequestDetail{
		PullRequest: ToDTOPull(d.PullRequest),
		AuthorName:  d.AuthorName,
		AuthorEmail: d.AuthorEmail,
		Reviewers:   reviewers,
		Diff:        d.Diff,
	}
}

// ToDTOActivityList maps PR history entries to transport slice.
func ToDTOActivityList(list []entities.ActivityLog) []dto.ActivityLog {
	res := make([]dto.ActivityLog, 0, len(list))
	for _, a := range list {
		res = append(res, dto.ActivityLog{
			ID:        a.ID,
			UserID:    a.UserID,
			Action:    a.Action,
			OldTitle:  a.OldTitle,
			NewTitle:  a.NewTitle,
			CreatedAt: a.CreatedAt,
		})
	}
	return res
}

// ToDTOEditSession maps entities.EditSession to transport model. The token is
// included only when withToken is set; it is a capability handed out once.
func ToDTOEditSession(s entities.EditSession, withToken bool) dto.EditSession {
	out := dto.EditSession{
		ID:            s.ID,
		PullRequestID: s.PullRequestID,
		StartedAt:     s.StartedAt,
		FinishedAt:    s.FinishedAt,
	}
	if withToken {
		out.Token = s.Token
	}
	return out
}

// ToDTOFixRequest maps entities.FixRequest to transport model.
func ToDTOFixRequest(fr entities.FixRequest) dto.FixRequest {
	return dto.FixRequest{
		ID:              fr.ID,
		PullRequestID:   fr.PullRequestID,
		UserID:          fr.UserID,
		Kind:            fr.Kind,
		TargetVersionID: fr.TargetVersionID,
		BaseVersionID:   fr.BaseVersionID,
		Comment:         fr.Comment,
		Status:          fr.Status,
		CreatedAt:       fr.CreatedAt,
	}
}

// ToDTOFixRequestList maps a slice of fix requests to transport slice.
func ToDTOFixRequestList(list []entities.FixRequest) []dto.FixRequest {
	res := make([]dto.FixRequest, 0, len(list))
	for _, fr := range list {
		res = append(res, ToDTOFixRequest(fr))
	}
	return res
}

// ToDTOBranchSession maps entities.BranchSession to transport model.
func ToDTOBranchSession(s entities.BranchSession) dto.BranchSession {
	return dto.BranchSession{
		ID:        s.ID,
		BranchID:  s.BranchID,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
	}
}
