package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contentdesk/internal/auth"
	"github.com/spec-kit/contentdesk/internal/service"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

func browser(c *fiber.Ctx) (*auth.Browser, error) {
	b, ok := auth.BrowserFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return b, nil
}

func userAPI(c *fiber.Ctx) (*service.Set, error) {
	b, err := browser(c)
	if err != nil {
		return nil, err
	}
	return b.UserAPI, nil
}

func adminAPI(c *fiber.Ctx) (*service.Set, error) {
	b, err := browser(c)
	if err != nil {
		return nil, err
	}
	return b.AdminAPI, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func data(c *fiber.Ctx, v any) error {
	return c.JSON(fiber.Map{"data": v})
}

func created(c *fiber.Ctx, v any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": v})
}
