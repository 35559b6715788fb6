package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// Set bundles every domain service over one bound client.
type Set struct {
	Auth         *AuthService
	AdminAuth    *AdminAuthService
	Documents    *DocumentService
	Writer       *WriterService
	Templates    *TemplateService
	Users        *UserService
	Compliance   *ComplianceService
	SEO          *SEOService
	Translation  *TranslationService
	Tickets      *TicketService
	AdminTickets *AdminTicketService
	Homepage     *HomepageService
}

// NewSet wires all services to client. Bind the client to a session first
// with apiclient.Client.WithTokenSource.
func NewSet(client *apiclient.Client) *Set {
	return &Set{
		Auth:         NewAuthService(client),
		AdminAuth:    NewAdminAuthService(client),
		Documents:    NewDocumentService(client),
		Writer:       NewWriterService(client),
		Templates:    NewTemplateService(client),
		Users:        NewUserService(client),
		Compliance:   NewComplianceService(client),
		SEO:          NewSEOService(client),
		Translation:  NewTranslationService(client),
		Tickets:      NewTicketService(client),
		AdminTickets: NewAdminTicketService(client),
		Homepage:     NewHomepageService(client),
	}
}

type field struct {
	name  string
	value string
}

// requireFields fails with a validation error naming every blank field.
func requireFields(message string, fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.NewValidationError(message, map[string]any{"missing": missing})
}

func requireID(resource, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError(resource+" id is required", nil)
	}
	return nil
}

func pathOf(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for i, p := range parts {
		if i%2 == 1 {
			p = url.PathEscape(p)
		}
		escaped = append(escaped, p)
	}
	return strings.Join(escaped, "/")
}

// setIfPresent adds key only when value is non-blank.
func setIfPresent(q url.Values, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		q.Set(key, v)
	}
}

func setPositive(q url.Values, key string, value int) {
	if value > 0 {
		q.Set(key, strconv.Itoa(value))
	}
}
