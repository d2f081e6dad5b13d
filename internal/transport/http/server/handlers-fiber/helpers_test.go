package handlers_fiber

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"branch-content-review/internal/entities"
	"branch-content-review/internal/transport/http/dto"
	"branch-content-review/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not_found", entities.ErrBranchNotFound, http.StatusNotFound, dto.NOTFOUND},
		{"pr_not_found", entities.ErrPRNotFound, http.StatusNotFound, dto.NOTFOUND},
		{"forbidden", entities.ErrNotAuthorized, http.StatusForbidden, dto.FORBIDDEN},
		{"session_held", entities.ErrSessionHeld, http.StatusConflict, dto.SESSIONHELD},
		{"merge_not_clean", entities.ErrMergeNotClean, http.StatusConflict, dto.MERGECONFLICT},
		{"pr_not_open", entities.ErrPRNotOpen, http.StatusConflict, dto.MERGECONFLICT},
		{"validation", entities.ErrInvalidArgument, http.StatusBadRequest, dto.VALIDATION},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return writeError(c, tt.err)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tt.status, resp.StatusCode)

			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestWriteErrorInternalHidesDetail(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, errDummy{})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, dto.INTERNAL, body.Error.Code)
	require.Equal(t, "internal error", body.Error.Message)
}

type errDummy struct{}

func (errDummy) Error() string { return "connection reset by peer" }

func TestIdentityMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Identity())
	app.Get("/", func(c *fiber.Ctx) error {
		id := identity(c)
		return c.JSON(fiber.Map{"user": id.UserID, "org": id.OrganizationID, "role": string(id.Role)})
	})

	t.Run("missing headers rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("role defaults to editor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.HeaderUserID, "u1")
		req.Header.Set(middleware.HeaderOrganizationID, "org1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "u1", body["user"])
		require.Equal(t, "editor", body["role"])
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.HeaderUserID, "u1")
		req.Header.Set(middleware.HeaderOrganizationID, "org1")
		req.Header.Set(middleware.HeaderUserRole, "superuser")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
