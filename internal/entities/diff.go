// Package entities contains core business entities.
package entities

import "time"

// DiffType classifies an entity's change relative to the merged baseline.
type DiffType string

const (
	// DiffCreated means the entity has no merged version yet.
	DiffCreated DiffType = "created"
	// DiffUpdated means the entity changed relative to its baseline.
	DiffUpdated DiffType = "updated"
	// DiffDeleted means the branch's current version is a tombstone.
	DiffDeleted DiffType = "deleted"
)

// SpanOp is one text-diff operation kind.
type SpanOp string

const (
	// SpanEqual text is common to both sides.
	SpanEqual SpanOp = "equal"
	// SpanInsert text exists only in the draft.
	SpanInsert SpanOp = "insert"
	// SpanDelete text exists only in the baseline.
	SpanDelete SpanOp = "delete"
)

// DiffSpan is one ordered (operation, text) tuple of a field's text diff.
type DiffSpan struct {
	Op   SpanOp `json:"op"`
	Text string `json:"text"`
}

// DiffSnapshot is one side (before or after) of a diff item.
type DiffSnapshot struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Position  int        `json:"position"`
	ParentID  *string    `json:"parent_id"`
	Status    string     `json:"status"`
	IsDeleted bool       `json:"is_deleted"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// DiffItem is one changed entity in a branch or session diff.
type DiffItem struct {
	ID           string                `json:"id"`
	Kind         EntityKind            `json:"kind"`
	Slug         string                `json:"slug"`
	Title        string                `json:"title"`
	Content      string                `json:"content"`
	Position     int                   `json:"position"`
	ParentID     *string               `json:"parent_id"`
	Status       VersionStatus         `json:"status"`
	UserBranchID string                `json:"user_branch_id"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Before       *DiffSnapshot         `json:"before"`
	After        *DiffSnapshot         `json:"after"`
	ChangeType   DiffType              `json:"change_type"`
	FieldDiffs   map[string][]DiffSpan `json:"field_diffs,omitempty"`
}

// DiffData is the full baseline-vs-draft comparison of a branch.
type DiffData struct {
	Categories     []DiffItem `json:"categories"`
	Documents      []DiffItem `json:"documents"`
	UserBranchID   string     `json:"user_branch_id"`
	OrganizationID string     `json:"organization_id"`
}

// ConflictCheck is the result of scanning candidate merged text for residual
// conflict markers.
type ConflictCheck struct {
	Filename   string `json:"filename"`
	IsConflict bool   `json:"is_conflict"`
}
