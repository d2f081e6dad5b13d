package middleware

import (
	"net/http"

	"branch-content-review/internal/entities"

	"github.com/gofiber/fiber/v2"
)

// IdentityKey is the locals key the resolved identity is stored under.
const IdentityKey = "identity"

// Request headers carrying the caller's identity. Authentication proper
// happens upstream; these headers are trusted here.
const (
	HeaderUserID         = "X-User-Id"
	HeaderOrganizationID = "X-Organization-Id"
	HeaderUserRole       = "X-User-Role"
)

// Identity resolves the caller's identity from request headers and stores it
// in locals. Requests without a user and organization are rejected.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get(HeaderUserID)
		orgID := c.Get(HeaderOrganizationID)
		if userID == "" || orgID == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{"code": "UNAUTHENTICATED", "message": "identity headers are required"},
			})
		}

		role := entities.Role(c.Get(HeaderUserRole))
		switch role {
		case entities.RoleOwner, entities.RoleEditor, entities.RoleViewer:
		case "":
			role = entities.RoleEditor
		default:
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{"code": "UNAUTHENTICATED", "message": "unknown role"},
			})
		}

		c.Locals(IdentityKey, entities.Identity{
			UserID:         userID,
			OrganizationID: orgID,
			Role:           role,
		})
		return c.Next()
	}
}
