// Package entities contains core business entities.
package entities

// Role enumerates what a member may do inside an organization.
type Role string

const (
	// RoleOwner may manage everything including merges.
	RoleOwner Role = "owner"
	// RoleEditor may edit content and participate in reviews.
	RoleEditor Role = "editor"
	// RoleViewer has read-only access.
	RoleViewer Role = "viewer"
)

// Identity is the authenticated caller as supplied by the upstream resolver.
type Identity struct {
	UserID         string
	OrganizationID string
	Role           Role
}

// User is a domain representation of an organization member.
type User struct {
	ID             string
	Name           string
	Email          string
	Role           Role
	OrganizationID string
}
