package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// CreateTicketInput opens a ticket with its first message.
type CreateTicketInput struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type messageBody struct {
	Message string `json:"message"`
}

// TicketService is the end-user side of support.
type TicketService struct {
	client *apiclient.Client
}

func NewTicketService(client *apiclient.Client) *TicketService {
	return &TicketService{client: client}
}

// Create handles POST /tickets.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput) (*domain.Ticket, error) {
	if err := requireFields("subject and message required",
		field{"subject", in.Subject}, field{"message", in.Message}); err != nil {
		return nil, err
	}
	t, err := apiclient.Call[*domain.Ticket](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/tickets",
		Body:   in,
	})
	if err != nil {
		return nil, err
	}
	return sorted(t), nil
}

// MyTickets handles GET /tickets/my-tickets. Threads come back sorted.
func (s *TicketService) MyTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := apiclient.Call[[]domain.Ticket](ctx, s.client, apiclient.Request{Path: "/tickets/my-tickets"})
	if err != nil {
		return nil, err
	}
	return sortAll(tickets), nil
}

// SendMessage handles POST /tickets/:id/messages.
func (s *TicketService) SendMessage(ctx context.Context, id, text string) (*domain.Ticket, error) {
	if err := validateMessage(id, text); err != nil {
		return nil, err
	}
	t, err := apiclient.Call[*domain.Ticket](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   pathOf("/tickets", id, "messages"),
		Body:   messageBody{Message: text},
	})
	if err != nil {
		return nil, err
	}
	return sorted(t), nil
}

// MarkRead handles PUT /tickets/:id/read.
func (s *TicketService) MarkRead(ctx context.Context, id string) error {
	if err := requireID("ticket", id); err != nil {
		return err
	}
	_, err := s.client.Do(ctx, apiclient.Request{Method: http.MethodPut, Path: pathOf("/tickets", id, "read")})
	return err
}

// AdminTicketFilter narrows the admin ticket listing.
type AdminTicketFilter struct {
	Status domain.TicketStatus
	Search string
}

// AdminTicketService is the console operator side of support.
type AdminTicketService struct {
	client *apiclient.Client
}

func NewAdminTicketService(client *apiclient.Client) *AdminTicketService {
	return &AdminTicketService{client: client}
}

// List handles GET /admin/tickets.
func (s *AdminTicketService) List(ctx context.Context, filter AdminTicketFilter) ([]domain.Ticket, error) {
	q := url.Values{}
	setIfPresent(q, "status", string(filter.Status))
	setIfPresent(q, "search", filter.Search)
	tickets, err := apiclient.Call[[]domain.Ticket](ctx, s.client, apiclient.Request{Path: "/admin/tickets", Query: q})
	if err != nil {
		return nil, err
	}
	return sortAll(tickets), nil
}

// SendMessage handles POST /admin/tickets/:id/messages.
func (s *AdminTicketService) SendMessage(ctx context.Context, id, text string) (*domain.Ticket, error) {
	if err := validateMessage(id, text); err != nil {
		return nil, err
	}
	t, err := apiclient.Call[*domain.Ticket](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   pathOf("/admin/tickets", id, "messages"),
		Body:   messageBody{Message: text},
	})
	if err != nil {
		return nil, err
	}
	return sorted(t), nil
}

// MarkRead handles PUT /admin/tickets/:id/read.
func (s *AdminTicketService) MarkRead(ctx context.Context, id string) error {
	if err := requireID("ticket", id); err != nil {
		return err
	}
	_, err := s.client.Do(ctx, apiclient.Request{Method: http.MethodPut, Path: pathOf("/admin/tickets", id, "read")})
	return err
}

// UpdateStatus requests a transition; the backend decides whether it applies.
func (s *AdminTicketService) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if err := requireID("ticket", id); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid ticket status", map[string]any{"status": status})
	}
	t, err := apiclient.Call[*domain.Ticket](ctx, s.client, apiclient.Request{
		Method: http.MethodPut,
		Path:   pathOf("/admin/tickets", id, "status"),
		Body:   map[string]domain.TicketStatus{"status": status},
	})
	if err != nil {
		return nil, err
	}
	return sorted(t), nil
}

func validateMessage(id, text string) error {
	if err := requireID("ticket", id); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return apperrors.NewValidationError("message cannot be empty", nil)
	}
	return nil
}

func sorted(t *domain.Ticket) *domain.Ticket {
	if t != nil {
		t.SortMessages()
	}
	return t
}

func sortAll(tickets []domain.Ticket) []domain.Ticket {
	for i := range tickets {
		tickets[i].SortMessages()
	}
	return tickets
}
