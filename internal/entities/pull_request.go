// Package entities contains core business entities.
package entities

import "time"

// PullRequestStatus enumerates PR lifecycle states.
type PullRequestStatus string

const (
	// StatusOpened marks a PR under review.
	StatusOpened PullRequestStatus = "opened"
	// StatusPRMerged marks a PR whose work entered the baseline. Terminal.
	StatusPRMerged PullRequestStatus = "merged"
	// StatusClosed marks a PR abandoned without merging. Terminal.
	StatusClosed PullRequestStatus = "closed"
	// StatusPRConflict marks a PR whose branch base was invalidated by a competing merge.
	StatusPRConflict PullRequestStatus = "conflict"
)

// ReviewerActionStatus enumerates a reviewer's standing on a PR.
type ReviewerActionStatus string

const (
	// ReviewerPending means no action yet.
	ReviewerPending ReviewerActionStatus = "pending"
	// ReviewerFixRequested means the reviewer asked for changes.
	ReviewerFixRequested ReviewerActionStatus = "fix_requested"
	// ReviewerApproved means the reviewer signed off.
	ReviewerApproved ReviewerActionStatus = "approved"
)

// PullRequest is a reviewable, mergeable grouping of a branch's pushed work.
type PullRequest struct {
	ID             string
	OrganizationID string
	BranchID       string
	AuthorID       string
	Title          string
	Description    string
	Status         PullRequestStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Reviewer is one entry of the PR's reviewer list.
type Reviewer struct {
	UserID       string
	Name         string
	Email        string
	ActionStatus ReviewerActionStatus
}

// PullRequestDetail aggregates everything the PR view exposes.
type PullRequestDetail struct {
	PullRequest
	AuthorName  string
	AuthorEmail string
	Reviewers   []Reviewer
	Diff        DiffData
}

// ActivityLog is one append-only PR history entry.
type ActivityLog struct {
	ID            string
	PullRequestID string
	UserID        string
	Action        string
	OldTitle      *string
	NewTitle      *string
	CreatedAt     time.Time
}

// PR activity log actions.
const (
	ActivityOpened       = "opened"
	ActivityApproved     = "approved"
	ActivityFixRequested = "fix_requested"
	ActivityMerged       = "merged"
	ActivityClosed       = "closed"
	ActivityReopened     = "reopened"
	ActivityTitleEdited  = "title_edited"
	ActivityCommitted    = "committed"
)

// EditSession is a token-addressable sub-context opened against an open PR,
// used for reviewer-requested fixes. Versions created under it carry the
// session id.
type EditSession struct {
	ID            string
	PullRequestID string
	UserID        string
	Token         string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// EditSessionDiff is one overlay ledger row diffing a session independently
// before it folds into the branch's main diff.
type EditSessionDiff struct {
	ID                string
	EditSessionID     string
	Kind              EntityKind
	EntityID          string
	OriginalVersionID string
	CurrentVersionID  string
	DiffType          DiffType
}

// FixRequestStatus enumerates fix request states.
type FixRequestStatus string

const (
	// FixPending awaits the author's action.
	FixPending FixRequestStatus = "pending"
	// FixApplied means the author addressed the request.
	FixApplied FixRequestStatus = "applied"
	// FixArchived means the request was withdrawn or superseded.
	FixArchived FixRequestStatus = "archived"
)

// FixRequest is a reviewer-raised change request referencing the target
// version and the base version it was raised against.
type FixRequest struct {
	ID              string
	PullRequestID   string
	UserID          string
	Kind            EntityKind
	TargetVersionID string
	BaseVersionID   *string
	Comment         string
	Status          FixRequestStatus
	CreatedAt       time.Time
}
