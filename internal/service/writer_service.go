package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
)

// GenerateInput asks the AI writer to fill a template.
type GenerateInput struct {
	TemplateID string            `json:"templateId"`
	Answers    map[string]string `json:"answers"`
	Name       string            `json:"name,omitempty"`
}

// WriterService exposes the active templates and the generator to users.
type WriterService struct {
	client *apiclient.Client
}

func NewWriterService(client *apiclient.Client) *WriterService {
	return &WriterService{client: client}
}

// Templates handles GET /templates.
func (s *WriterService) Templates(ctx context.Context, category string) ([]domain.Template, error) {
	req := apiclient.Request{Path: "/templates"}
	if category != "" {
		req.Query = url.Values{"category": {category}}
	}
	return apiclient.Call[[]domain.Template](ctx, s.client, req)
}

// Template handles GET /templates/:id.
func (s *WriterService) Template(ctx context.Context, id string) (*domain.Template, error) {
	if err := requireID("template", id); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.Template](ctx, s.client, apiclient.Request{Path: pathOf("/templates", id)})
}

// Generate handles POST /ai-writer/generate. The generated content is saved
// by the backend as a document of type ai-writer.
func (s *WriterService) Generate(ctx context.Context, in GenerateInput) (*domain.Document, error) {
	if err := requireID("template", in.TemplateID); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.Document](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/ai-writer/generate",
		Body:   in,
	})
}
