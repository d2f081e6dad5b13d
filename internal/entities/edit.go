// Package entities contains core business entities.
package entities

import "time"

// EditTracker is one ledger row linking the version an edit started from to
// the version it produced. Creation rows have original == current. The most
// recent row for a branch+entity is the branch's authoritative view.
type EditTracker struct {
	ID                string
	BranchID          string
	Kind              EntityKind
	EntityID          string
	OriginalVersionID string
	CurrentVersionID  string
	CommitID          *string
	CreatedAt         time.Time
}

// Commit groups edit tracker rows produced between two pushes. Immutable once
// created.
type Commit struct {
	ID            string
	BranchID      string
	PullRequestID string
	UserID        string
	Message       string
	CreatedAt     time.Time
}
