package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// TemplateService manages writer templates from the admin console.
type TemplateService struct {
	client *apiclient.Client
}

func NewTemplateService(client *apiclient.Client) *TemplateService {
	return &TemplateService{client: client}
}

func (s *TemplateService) List(ctx context.Context) ([]domain.Template, error) {
	return apiclient.Call[[]domain.Template](ctx, s.client, apiclient.Request{Path: "/admin/templates"})
}

func (s *TemplateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	if err := requireID("template", id); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.Template](ctx, s.client, apiclient.Request{Path: pathOf("/admin/templates", id)})
}

func (s *TemplateService) Create(ctx context.Context, tpl domain.Template) (*domain.Template, error) {
	if err := ValidateTemplate(tpl); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.Template](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/admin/templates",
		Body:   tpl,
	})
}

func (s *TemplateService) Update(ctx context.Context, id string, tpl domain.Template) (*domain.Template, error) {
	if err := requireID("template", id); err != nil {
		return nil, err
	}
	if err := ValidateTemplate(tpl); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.Template](ctx, s.client, apiclient.Request{
		Method: http.MethodPut,
		Path:   pathOf("/admin/templates", id),
		Body:   tpl,
	})
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := requireID("template", id); err != nil {
		return err
	}
	_, err := s.client.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: pathOf("/admin/templates", id)})
	return err
}

// Categories handles GET /admin/templates/categories.
func (s *TemplateService) Categories(ctx context.Context) ([]string, error) {
	return apiclient.Call[[]string](ctx, s.client, apiclient.Request{Path: "/admin/templates/categories"})
}

// ValidateTemplate checks a template before it is sent: name and category are
// required, every field needs a question, dropdowns need options and
// free-text fields must not carry any.
func ValidateTemplate(tpl domain.Template) error {
	if err := requireFields("template name and category required",
		field{"name", tpl.Name}, field{"category", tpl.Category}); err != nil {
		return err
	}
	problems := map[string]string{}
	for i, f := range tpl.Fields {
		key := f.ID
		if key == "" {
			key = fmt.Sprintf("fields[%d]", i)
		}
		switch {
		case strings.TrimSpace(f.Question) == "":
			problems[key] = "question is required"
		case f.Kind == domain.FieldDropdown && len(f.Options) == 0:
			problems[key] = "dropdown needs at least one option"
		case f.Kind == domain.FieldFreeText && len(f.Options) > 0:
			problems[key] = "free-text fields take no options"
		case f.Kind != domain.FieldDropdown && f.Kind != domain.FieldFreeText:
			problems[key] = fmt.Sprintf("unknown field type %q", f.Kind)
		}
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError("invalid template fields", map[string]any{"fields": problems})
	}
	return nil
}
