// Package entities contains core business entities and errors.
package entities

import (
	"errors"
	"fmt"
)

// Error classes. Fine-grained sentinels below wrap one of these so callers can
// match either the class or the concrete error.
var (
	// ErrNotFound signals an absent resource or one outside the caller's organization.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthorized signals a role lacking permission for the operation.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrDuplicateExecution signals an already-held session or uniqueness violation.
	ErrDuplicateExecution = errors.New("duplicate execution")
	// ErrConflict signals a merge that is not cleanly applicable.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument signals failed input validation.
	ErrInvalidArgument = errors.New("invalid argument")
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
	// ErrBranchNotFound signals a missing branch.
	ErrBranchNotFound = fmt.Errorf("%w: branch", ErrNotFound)
	// ErrEntityNotFound signals a missing category or document.
	ErrEntityNotFound = fmt.Errorf("%w: entity", ErrNotFound)
	// ErrVersionNotFound signals a missing version.
	ErrVersionNotFound = fmt.Errorf("%w: version", ErrNotFound)
	// ErrPRNotFound signals a missing pull request.
	ErrPRNotFound = fmt.Errorf("%w: pull request", ErrNotFound)
	// ErrEditSessionNotFound signals a missing or finished PR edit session.
	ErrEditSessionNotFound = fmt.Errorf("%w: edit session", ErrNotFound)
	// ErrFixRequestNotFound signals a missing fix request.
	ErrFixRequestNotFound = fmt.Errorf("%w: fix request", ErrNotFound)
	// ErrNoOpenEdits signals a commit attempt with nothing to claim.
	ErrNoOpenEdits = fmt.Errorf("%w: no open edits", ErrNotFound)

	// ErrPRNotOpen signals a lifecycle transition from a wrong state.
	ErrPRNotOpen = fmt.Errorf("%w: pull request not open", ErrConflict)
	// ErrMergeNotClean signals the branch base was invalidated by a competing merge.
	ErrMergeNotClean = fmt.Errorf("%w: branch not cleanly mergeable", ErrConflict)
	// ErrSessionHeld signals the branch session is owned by another user.
	ErrSessionHeld = fmt.Errorf("%w: session held", ErrDuplicateExecution)
	// ErrSessionRequired signals an operation that needs the caller to hold the branch session.
	ErrSessionRequired = fmt.Errorf("%w: branch session required", ErrNotAuthorized)
)
