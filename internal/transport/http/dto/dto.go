// Package dto declares the HTTP request and response models.
package dto

import (
	"time"

	"branch-content-review/internal/entities"
)

// ErrorCode discriminates API error payloads.
type ErrorCode string

// API error codes.
const (
	NOTFOUND      ErrorCode = "NOT_FOUND"
	FORBIDDEN     ErrorCode = "FORBIDDEN"
	SESSIONHELD   ErrorCode = "SESSION_HELD"
	MERGECONFLICT ErrorCode = "MERGE_CONFLICT"
	VALIDATION    ErrorCode = "VALIDATION"
	INTERNAL      ErrorCode = "INTERNAL"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

// ContentPayload carries the mutable fields of a category or document.
type ContentPayload struct {
	Title    string  `json:"title"`
	Slug     string  `json:"slug"`
	Body     string  `json:"body"`
	Position int     `json:"position"`
	ParentID *string `json:"parent_id"`
}

// EditTarget optionally routes a content mutation into a PR edit session
// instead of the caller's own branch.
type EditTarget struct {
	EditPullRequestID    *string `json:"edit_pull_request_id"`
	PullRequestEditToken *string `json:"pull_request_edit_token"`
}

// ContentCreateRequest creates a new entity with its first draft version.
type ContentCreateRequest struct {
	ContentPayload
	EditTarget
}

// ContentUpdateRequest appends a draft version to an existing entity.
type ContentUpdateRequest struct {
	ID string `json:"id"`
	ContentPayload
	EditTarget
}

// ContentDeleteRequest tombstones an entity (and, for categories, its subtree).
type ContentDeleteRequest struct {
	ID string `json:"id"`
	EditTarget
}

// Version is the wire form of a content version.
type Version struct {
	ID        string                 `json:"id"`
	EntityID  string                 `json:"entity_id"`
	Kind      entities.EntityKind    `json:"kind"`
	BranchID  *string                `json:"branch_id"`
	Title     string                 `json:"title"`
	Slug      string                 `json:"slug"`
	Body      string                 `json:"body"`
	Position  int                    `json:"position"`
	ParentID  *string                `json:"parent_id"`
	Status    entities.VersionStatus `json:"status"`
	IsDeleted bool                   `json:"is_deleted"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	DeletedAt *time.Time             `json:"deleted_at,omitempty"`
}

// CommitCreateRequest claims the branch's open edits under one commit.
type CommitCreateRequest struct {
	PullRequestID string `json:"pull_request_id"`
	Message       string `json:"message"`
}

// Commit is the wire form of a commit.
type Commit struct {
	ID            string    `json:"id"`
	BranchID      string    `json:"branch_id"`
	PullRequestID string    `json:"pull_request_id"`
	UserID        string    `json:"user_id"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

// PullRequestCreateRequest opens a PR for the caller's active branch.
type PullRequestCreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ReviewerIDs []string `json:"reviewer_ids"`
}

// PullRequestActionRequest addresses a PR by id for merge/close/reopen/approve.
type PullRequestActionRequest struct {
	PullRequestID string `json:"pull_request_id"`
}

// PullRequestUpdateRequest edits a PR's title and description.
type PullRequestUpdateRequest struct {
	PullRequestID string `json:"pull_request_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
}

// PullRequest is the wire form of a PR.
type PullRequest struct {
	ID          string                     `json:"id"`
	BranchID    string                     `json:"branch_id"`
	AuthorID    string                     `json:"author_id"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Status      entities.PullRequestStatus `json:"status"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// Reviewer is one entry of a PR's reviewer list.
type Reviewer struct {
	UserID       string                        `json:"user_id"`
	Name         string                        `json:"name"`
	Email        string                        `json:"email"`
	ActionStatus entities.ReviewerActionStatus `json:"action_status"`
}

// PullRequestDetail is the full PR view.
type PullRequestDetail struct {
	PullRequest
	AuthorName  string            `json:"author_name"`
	AuthorEmail string            `json:"author_email"`
	Reviewers   []Reviewer        `json:"reviewers"`
	Diff        entities.DiffData `json:"diff"`
}

// ActivityLog is one PR history entry.
type ActivityLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	OldTitle  *string   `json:"old_title,omitempty"`
	NewTitle  *string   `json:"new_title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EditSessionStartRequest opens a token-scoped edit session on a PR.
type EditSessionStartRequest struct {
	PullRequestID string `json:"pull_request_id"`
}

// EditSessionFinishRequest closes the session addressed by its token.
type EditSessionFinishRequest struct {
	Token string `json:"token"`
}

// EditSession is the wire form of a PR edit session. The token is returned
// once, on start.
type EditSession struct {
	ID            string     `json:"id"`
	PullRequestID string     `json:"pull_request_id"`
	Token         string     `json:"token,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// FixRequestCreateRequest files reviewer feedback against a version.
type FixRequestCreateRequest struct {
	PullRequestID   string              `json:"pull_request_id"`
	Kind            entities.EntityKind `json:"kind"`
	TargetVersionID string              `json:"target_version_id"`
	BaseVersionID   *string             `json:"base_version_id"`
	Comment         string              `json:"comment"`
}

// FixRequestActionRequest addresses a fix request by id for apply/archive.
type FixRequestActionRequest struct {
	FixRequestID string `json:"fix_request_id"`
}

// FixRequest is the wire form of a fix request.
type FixRequest struct {
	ID              string                    `json:"id"`
	PullRequestID   string                    `json:"pull_request_id"`
	UserID          string                    `json:"user_id"`
	Kind            entities.EntityKind       `json:"kind"`
	TargetVersionID string                    `json:"target_version_id"`
	BaseVersionID   *string                   `json:"base_version_id"`
	Comment         string                    `json:"comment"`
	Status          entities.FixRequestStatus `json:"status"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// SessionAcquireRequest takes the branch write lock behind a PR.
type SessionAcquireRequest struct {
	PullRequestID string `json:"pull_request_id"`
}

// SessionReleaseRequest drops the caller's lock on a branch.
type SessionReleaseRequest struct {
	BranchID string `json:"branch_id"`
}

// BranchSession is the wire form of the branch write lock.
type BranchSession struct {
	ID        string    `json:"id"`
	BranchID  string    `json:"branch_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BranchRequest addresses a branch by id for deactivate/destroy.
type BranchRequest struct {
	BranchID string `json:"branch_id"`
}

// ConflictCheckRequest scans candidate merged text for residual markers.
type ConflictCheckRequest struct {
	Filename string `json:"filename"`
	Body     string `json:"body"`
}
