// Package entities contains core business entities.
package entities

import "time"

// Branch is a user's isolated working set of draft and pushed versions.
type Branch struct {
	ID             string
	UserID         string
	OrganizationID string
	IsActive       bool
	CreatedAt      time.Time
}

// BranchSession is the write lock on a branch. The row's existence is the
// lock; release deletes it.
type BranchSession struct {
	ID        string
	BranchID  string
	UserID    string
	CreatedAt time.Time
}

// AcquireOutcome is the tagged result of a session try-acquire. Exactly one of
// Session (acquired) or HeldBy (lost the race or lock already taken) is set.
type AcquireOutcome struct {
	Acquired bool
	Session  *BranchSession
	HeldBy   string
}
