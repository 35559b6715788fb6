package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/contentdesk/internal/guard"
)

const browserKey = "console_browser"

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

// SessionMiddleware resolves the browser session from its cookie, issuing a
// fresh one when the cookie is missing, expired or forged.
type SessionMiddleware struct {
	tokens   *TokenManager
	sessions *Sessions
	cookie   CookieOptions
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, sessions *Sessions, cookie CookieOptions) *SessionMiddleware {
	if cookie.Name == "" {
		cookie.Name = "contentdesk_session"
	}
	return &SessionMiddleware{tokens: tokens, sessions: sessions, cookie: cookie}
}

// Handle attaches the Browser to the request.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	sid := ""
	if raw := c.Cookies(m.cookie.Name); raw != "" {
		if claims, err := m.tokens.ParseToken(raw); err == nil {
			sid = claims.SessionID
		}
	}
	if sid == "" {
		sid = uuid.NewString()
	}
	// Re-issue on every request so the cookie slides with the storage TTL.
	if err := m.issue(c, sid); err != nil {
		return err
	}

	c.Locals(browserKey, m.sessions.For(sid))
	return c.Next()
}

func (m *SessionMiddleware) issue(c *fiber.Ctx, sid string) error {
	value, expiresAt, err := m.tokens.GenerateToken(sid)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   m.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// BrowserFromContext retrieves the browser session attached by Handle.
func BrowserFromContext(c *fiber.Ctx) (*Browser, bool) {
	val := c.Locals(browserKey)
	if val == nil {
		return nil, false
	}
	browser, ok := val.(*Browser)
	return browser, ok
}

// UserLocator finds the user session store for the guards.
func UserLocator(c *fiber.Ctx) guard.Authenticator {
	if b, ok := BrowserFromContext(c); ok {
		return b.User
	}
	return nil
}

// AdminLocator finds the admin session store for the guards.
func AdminLocator(c *fiber.Ctx) guard.Authenticator {
	if b, ok := BrowserFromContext(c); ok {
		return b.Admin
	}
	return nil
}
