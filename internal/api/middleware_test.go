package api_test

import (
	"context"
	"database/sql"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MostTP/EduWave-Backend/internal/api"
	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/repository"
	"github.com/MostTP/EduWave-Backend/internal/token"
)

// stubUsers serves only FindByID; the middleware never calls anything else.
type stubUsers struct {
	repository.UserRepository
	user *model.User
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, sql.ErrNoRows
}

func newTestApp(tokens *token.Manager, users repository.UserRepository) *fiber.App {
	app := fiber.New()

	app.Get("/protected", api.Authenticate(tokens, users), func(c *fiber.Ctx) error {
		user, _ := api.CurrentUser(c)
		return c.JSON(fiber.Map{"email": user.Email})
	})
	app.Get("/admin", api.Authenticate(tokens, users), api.RequireRoles(model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/maybe", api.OptionalAuthenticate(tokens, users), func(c *fiber.Ctx) error {
		if _, ok := api.CurrentUser(c); ok {
			return c.SendString("known")
		}
		return c.SendString("anonymous")
	})

	return app
}

func TestAuthenticate(t *testing.T) {
	tokens := token.NewManager("access", "refresh", 0, 0)
	user := &model.User{ID: uuid.New(), Email: "a@b.com", Role: model.RoleUser}
	app := newTestApp(tokens, &stubUsers{user: user})

	t.Run("missing header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		access, _, err := tokens.NewPair(user)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("expired token is called out", func(t *testing.T) {
		expiredTokens := token.NewManager("access", "refresh", -time.Minute, -time.Minute)
		access, _, err := expiredTokens.NewPair(user)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		require.Contains(t, string(body), "expired")
	})

	t.Run("deleted account", func(t *testing.T) {
		ghost := &model.User{ID: uuid.New(), Email: "ghost@b.com", Role: model.RoleUser}
		access, _, err := tokens.NewPair(ghost)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRequireRoles(t *testing.T) {
	tokens := token.NewManager("access", "refresh", 0, 0)
	user := &model.User{ID: uuid.New(), Email: "a@b.com", Role: model.RoleUser}
	app := newTestApp(tokens, &stubUsers{user: user})

	access, _, err := tokens.NewPair(user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	user.Role = model.RoleAdmin
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptionalAuthenticate(t *testing.T) {
	tokens := token.NewManager("access", "refresh", 0, 0)
	user := &model.User{ID: uuid.New(), Email: "a@b.com", Role: model.RoleUser}
	app := newTestApp(tokens, &stubUsers{user: user})

	t.Run("no token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/maybe", nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		require.Equal(t, "anonymous", string(body))
	})

	t.Run("invalid token is tolerated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/maybe", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		require.Equal(t, "anonymous", string(body))
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		access, _, err := tokens.NewPair(user)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/maybe", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		require.Equal(t, "known", string(body))
	})
}
