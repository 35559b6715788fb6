// Package guard gates console navigation on the presence of a session token.
package guard

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Login pages the guards redirect to.
const (
	UserLoginPath  = "/login"
	AdminLoginPath = "/admin/login"
)

// RedirectParam carries the originally requested location.
const RedirectParam = "redirect"

// Decision is the outcome of evaluating a guard.
type Decision struct {
	Allow    bool
	Redirect string
}

// Evaluate allows authenticated navigation and otherwise sends the caller to
// loginPath, remembering requested (path plus query).
func Evaluate(authenticated bool, requested, loginPath string) Decision {
	if authenticated {
		return Decision{Allow: true}
	}
	q := url.Values{}
	if requested != "" {
		q.Set(RedirectParam, requested)
	}
	target := loginPath
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	return Decision{Redirect: target}
}

// SafeRedirect returns target when it is a same-origin relative path, else
// fallback. Protocol-relative and absolute URLs are rejected.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}

// Authenticator is the part of a session store the guards consult.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// Locator finds the session store of the current request; nil means none.
type Locator func(c *fiber.Ctx) Authenticator

// RequireUser redirects to the user login page when the user session has no token.
func RequireUser(locate Locator) fiber.Handler {
	return guardHandler(locate, UserLoginPath)
}

// RequireAdmin redirects to the admin login page when the admin session has no token.
func RequireAdmin(locate Locator) fiber.Handler {
	return guardHandler(locate, AdminLoginPath)
}

func guardHandler(locate Locator, loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store := locate(c)
		authenticated := store != nil && store.IsAuthenticated(c.UserContext())
		d := Evaluate(authenticated, c.OriginalURL(), loginPath)
		if d.Allow {
			return c.Next()
		}
		return c.Redirect(d.Redirect, http.StatusFound)
	}
}
