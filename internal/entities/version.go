// Package entities contains core business entities.
package entities

import "time"

// EntityKind distinguishes the two versioned content kinds.
type EntityKind string

const (
	// KindCategory is a tree node grouping documents and other categories.
	KindCategory EntityKind = "category"
	// KindDocument is a leaf content page.
	KindDocument EntityKind = "document"
)

// VersionStatus enumerates the promotion states of a version.
type VersionStatus string

const (
	// StatusDraft marks work in progress on a branch.
	StatusDraft VersionStatus = "draft"
	// StatusPushed marks versions claimed by a commit, visible to reviewers.
	StatusPushed VersionStatus = "pushed"
	// StatusMerged marks versions belonging to the published baseline.
	StatusMerged VersionStatus = "merged"
)

// ContentEntity is the permanent identity anchor of a category or document.
// It carries no mutable content; every edit creates a new Version row.
type ContentEntity struct {
	ID             string
	Kind           EntityKind
	OrganizationID string
	CreatedAt      time.Time
}

// Version is an immutable content snapshot of an entity. The latest merged
// version of an entity is its baseline; draft and pushed versions belong to
// exactly one branch.
type Version struct {
	ID             string
	EntityID       string
	Kind           EntityKind
	OrganizationID string
	BranchID       *string
	EditSessionID  *string
	Title          string
	Slug           string
	Body           string
	Position       int
	ParentID       *string
	Status         VersionStatus
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// VersionContent carries the mutable fields of an edit.
type VersionContent struct {
	Title    string
	Slug     string
	Body     string
	Position int
	ParentID *string
}
