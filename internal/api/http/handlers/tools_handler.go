package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contentdesk/internal/service"
)

// ToolsHandler serves the AI writer, translation, compliance and SEO views.
type ToolsHandler struct{}

// NewToolsHandler constructs handler.
func NewToolsHandler() *ToolsHandler {
	return &ToolsHandler{}
}

// Writer GET /ai-writer lists the active templates.
func (h *ToolsHandler) Writer(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	templates, err := api.Writer.Templates(c.UserContext(), c.Query("category"))
	if err != nil {
		return err
	}
	return data(c, templates)
}

// WriterTemplate GET /ai-writer/template/:templateId.
func (h *ToolsHandler) WriterTemplate(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	tpl, err := api.Writer.Template(c.UserContext(), c.Params("templateId"))
	if err != nil {
		return err
	}
	return data(c, tpl)
}

// Generate POST /ai-writer/template/:templateId/generate.
func (h *ToolsHandler) Generate(c *fiber.Ctx) error {
	var req service.GenerateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.TemplateID = c.Params("templateId")
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	doc, err := api.Writer.Generate(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, doc)
}

// TranslationHistory GET /translation.
func (h *ToolsHandler) TranslationHistory(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	history, err := api.Translation.History(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, history)
}

// Translate POST /translation.
func (h *ToolsHandler) Translate(c *fiber.Ctx) error {
	var req service.TranslateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	out, err := api.Translation.Translate(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, out)
}

// ComplianceDocuments GET /compliance.
func (h *ToolsHandler) ComplianceDocuments(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	docs, err := api.Compliance.Documents(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, docs)
}

// Analyze POST /compliance/analyze.
func (h *ToolsHandler) Analyze(c *fiber.Ctx) error {
	var req service.AnalyzeInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	report, err := api.Compliance.AnalyzeContent(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, report)
}

// Fix POST /compliance/fix.
func (h *ToolsHandler) Fix(c *fiber.Ctx) error {
	var req service.FixInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	fix, err := api.Compliance.Fix(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, fix)
}

// Keywords GET /seo/keywords?topic=.
func (h *ToolsHandler) Keywords(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	keywords, err := api.SEO.Keywords(c.UserContext(), c.Query("topic"))
	if err != nil {
		return err
	}
	return data(c, keywords)
}

// GenerateSEO POST /seo/generate.
func (h *ToolsHandler) GenerateSEO(c *fiber.Ctx) error {
	var req service.SEOInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	article, err := api.SEO.Generate(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, article)
}
