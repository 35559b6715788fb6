package handlers

import (
	"context"
	"io"
	"mime"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/service"
)

// DocumentsHandler manages the user's documents.
type DocumentsHandler struct{}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler() *DocumentsHandler {
	return &DocumentsHandler{}
}

// List GET /documents.
func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	docs, err := api.Documents.List(c.UserContext(), service.DocumentFilter{
		Search: c.Query("search"),
		Type:   domain.DocumentType(c.Query("type")),
		Page:   queryInt(c, "page", 0),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		return err
	}
	return data(c, docs)
}

// Get GET /documents/:id.
func (h *DocumentsHandler) Get(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	doc, err := api.Documents.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, doc)
}

// Create POST /documents.
func (h *DocumentsHandler) Create(c *fiber.Ctx) error {
	var req service.DocumentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	doc, err := api.Documents.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, doc)
}

// Update PUT /documents/:id.
func (h *DocumentsHandler) Update(c *fiber.Ctx) error {
	var req service.DocumentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	doc, err := api.Documents.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return data(c, doc)
}

// Delete DELETE /documents/:id.
func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	if err := api.Documents.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Download GET /documents/:id/download streams the file as an attachment.
func (h *DocumentsHandler) Download(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	return api.Documents.Download(c.UserContext(), c.Params("id"), service.SaverFunc(
		func(_ context.Context, name, contentType string, body io.Reader) error {
			if contentType == "" {
				contentType = fiber.MIMEOctetStream
			}
			c.Set(fiber.HeaderContentType, contentType)
			c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": name}))
			raw, err := io.ReadAll(body)
			if err != nil {
				return err
			}
			return c.Send(raw)
		}))
}
