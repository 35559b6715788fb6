package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contentdesk/internal/api/dto"
	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/guard"
	"github.com/spec-kit/contentdesk/internal/session"
)

// AuthHandler serves the user and admin login flows.
type AuthHandler struct{}

// NewAuthHandler constructs handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

const (
	userHome  = "/dashboard"
	adminHome = "/admin/users"
)

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return h.loginPage(c, domain.PrincipalUser, userHome)
}

// AdminLoginPage handles GET /admin/login.
func (h *AuthHandler) AdminLoginPage(c *fiber.Ctx) error {
	return h.loginPage(c, domain.PrincipalAdmin, adminHome)
}

func (h *AuthHandler) loginPage(c *fiber.Ctx, kind domain.PrincipalKind, home string) error {
	b, err := browser(c)
	if err != nil {
		return err
	}
	return data(c, dto.LoginPage{
		Authenticated: b.Store(kind).IsAuthenticated(c.UserContext()),
		Redirect:      guard.SafeRedirect(c.Query(guard.RedirectParam), home),
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return h.login(c, domain.PrincipalUser, userHome)
}

// AdminLogin handles POST /admin/login.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	return h.login(c, domain.PrincipalAdmin, adminHome)
}

func (h *AuthHandler) login(c *fiber.Ctx, kind domain.PrincipalKind, home string) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	b, err := browser(c)
	if err != nil {
		return err
	}
	sess, err := b.Store(kind).Login(c.UserContext(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return data(c, dto.SessionResponse{
		Principal: sess.Principal,
		Redirect:  guard.SafeRedirect(redirectTarget(c, req.Redirect), home),
	})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	b, err := browser(c)
	if err != nil {
		return err
	}
	sess, err := b.User.Register(c.UserContext(), domain.Registration{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return created(c, dto.SessionResponse{
		Principal: sess.Principal,
		Redirect:  guard.SafeRedirect(redirectTarget(c, req.Redirect), userHome),
	})
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return h.logout(c, domain.PrincipalUser, guard.UserLoginPath)
}

// AdminLogout handles POST /admin/logout.
func (h *AuthHandler) AdminLogout(c *fiber.Ctx) error {
	return h.logout(c, domain.PrincipalAdmin, guard.AdminLoginPath)
}

func (h *AuthHandler) logout(c *fiber.Ctx, kind domain.PrincipalKind, next string) error {
	b, err := browser(c)
	if err != nil {
		return err
	}
	if err := b.Store(kind).Logout(c.UserContext()); err != nil {
		return err
	}
	return data(c, fiber.Map{"redirect": next})
}

// Me reports both sessions of the browser.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	b, err := browser(c)
	if err != nil {
		return err
	}
	out := fiber.Map{}
	for _, store := range []*session.Store{b.User, b.Admin} {
		principal, err := store.CurrentPrincipal(c.UserContext())
		if err != nil {
			return err
		}
		out[string(store.Kind())] = principal
	}
	return data(c, out)
}

func redirectTarget(c *fiber.Ctx, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return c.Query(guard.RedirectParam)
}
