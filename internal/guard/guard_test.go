package guard

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixed bool

func (f fixed) IsAuthenticated(context.Context) bool { return bool(f) }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		requested     string
		login         string
		want          Decision
	}{
		{name: "allowed", authenticated: true, requested: "/dashboard", login: UserLoginPath, want: Decision{Allow: true}},
		{name: "user redirect", requested: "/dashboard", login: UserLoginPath, want: Decision{Redirect: "/login?redirect=%2Fdashboard"}},
		{name: "keeps query", requested: "/documents?type=seo-writer", login: UserLoginPath, want: Decision{Redirect: "/login?redirect=%2Fdocuments%3Ftype%3Dseo-writer"}},
		{name: "admin redirect", requested: "/admin/users", login: AdminLoginPath, want: Decision{Redirect: "/admin/login?redirect=%2Fadmin%2Fusers"}},
		{name: "no requested path", login: UserLoginPath, want: Decision{Redirect: "/login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.authenticated, tt.requested, tt.login))
		})
	}
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/documents?page=2", SafeRedirect("/documents?page=2", "/dashboard"))
	assert.Equal(t, "/dashboard", SafeRedirect("", "/dashboard"))
	assert.Equal(t, "/dashboard", SafeRedirect("https://evil.example", "/dashboard"))
	assert.Equal(t, "/dashboard", SafeRedirect("//evil.example/x", "/dashboard"))
	assert.Equal(t, "/dashboard", SafeRedirect("/\\evil.example", "/dashboard"))
	assert.Equal(t, "/dashboard", SafeRedirect("dashboard", "/dashboard"))
}

func newApp(user, admin Authenticator) *fiber.App {
	app := fiber.New()
	userGuard := RequireUser(func(*fiber.Ctx) Authenticator { return user })
	adminGuard := RequireAdmin(func(*fiber.Ctx) Authenticator { return admin })
	app.Get("/dashboard", userGuard, func(c *fiber.Ctx) error { return c.SendString("dashboard") })
	app.Get("/admin/users", adminGuard, func(c *fiber.Ctx) error { return c.SendString("users") })
	return app
}

func TestRequireUserRedirectsWithoutToken(t *testing.T) {
	app := newApp(fixed(false), fixed(true))

	resp, err := app.Test(httptest.NewRequest("GET", "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fdashboard", resp.Header.Get("Location"))
}

func TestAdminTokenDoesNotSatisfyUserGuard(t *testing.T) {
	app := newApp(fixed(false), fixed(true))

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/users", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
}

func TestRequireAdminRedirectsWithoutStore(t *testing.T) {
	app := newApp(fixed(true), nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/users?page=2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login?redirect=%2Fadmin%2Fusers%3Fpage%3D2", resp.Header.Get("Location"))
}
