package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reciclamais/waste-service/internal/domain"
	"github.com/reciclamais/waste-service/internal/repository"
	apperrors "github.com/reciclamais/waste-service/pkg/util/errorutil"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, ComparePassword(hash, "s3cret!"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 5*time.Minute)
	user := &domain.User{ID: "user-1", Role: domain.RoleAdmin}

	signed, issued, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	parsed, err := tm.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, parsed.ID)
	assert.Equal(t, "user-1", parsed.UserID)
	assert.Equal(t, domain.RoleAdmin, parsed.Role)
	assert.WithinDuration(t, issued.ExpiresAt, parsed.ExpiresAt, time.Second)
}

func TestParseTokenRejectsForeignAndExpired(t *testing.T) {
	user := &domain.User{ID: "user-1", Role: domain.RoleUser}

	other := NewTokenManager("other-secret", 5*time.Minute)
	signed, _, err := other.GenerateToken(user)
	require.NoError(t, err)

	tm := NewTokenManager("test-secret", 5*time.Minute)
	_, err = tm.ParseToken(signed)
	assert.Error(t, err)

	signed, _, err = tm.GenerateToken(user)
	require.NoError(t, err)
	tm.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = tm.ParseToken(signed)
	assert.Error(t, err)
}

func newTestApp(t *testing.T) (*fiber.App, *TokenManager, *repository.MemoryUserRepository, *repository.MemoryTokenRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	revoked := repository.NewMemoryTokenRepository()
	tm := NewTokenManager("test-secret", 5*time.Minute)
	mw := NewAuthMiddleware(tm, users, revoked)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
	}})
	app.Get("/me", mw.Handle, RequireAuthenticated(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.Email)
	})
	app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, tm, users, revoked
}

func TestAuthMiddleware(t *testing.T) {
	app, tm, users, revoked := newTestApp(t)
	ctx := context.Background()

	user := &domain.User{Name: "Ana", Email: "ana@example.com", Role: domain.RoleUser}
	require.NoError(t, users.Create(ctx, user))
	signed, token, err := tm.GenerateToken(user)
	require.NoError(t, err)

	call := func(path, header string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, call("/me", ""))
	assert.Equal(t, http.StatusUnauthorized, call("/me", "Token abc"))
	assert.Equal(t, http.StatusUnauthorized, call("/me", "Bearer not-a-jwt"))
	assert.Equal(t, http.StatusOK, call("/me", "Bearer "+signed))
	assert.Equal(t, http.StatusForbidden, call("/admin", "Bearer "+signed))

	require.NoError(t, revoked.Revoke(ctx, token.ID, time.Minute))
	assert.Equal(t, http.StatusUnauthorized, call("/me", "Bearer "+signed))
}
