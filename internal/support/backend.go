package support

import (
	"context"

	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/service"
)

// Backend is what a chat view needs from the ticket API. User and admin
// views differ only in the Backend they are given.
type Backend interface {
	Sender() domain.SenderType
	List(ctx context.Context) ([]domain.Ticket, error)
	Send(ctx context.Context, ticketID, text string) (*domain.Ticket, error)
	MarkRead(ctx context.Context, ticketID string) error
}

// Creator is implemented by backends that can open tickets.
type Creator interface {
	Create(ctx context.Context, subject, message string) (*domain.Ticket, error)
}

// StatusUpdater is implemented by backends that can request status transitions.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error)
}

// UserBackend adapts the end-user ticket service.
type UserBackend struct {
	Tickets *service.TicketService
}

func (UserBackend) Sender() domain.SenderType { return domain.SenderUser }

func (b UserBackend) List(ctx context.Context) ([]domain.Ticket, error) {
	return b.Tickets.MyTickets(ctx)
}

func (b UserBackend) Send(ctx context.Context, ticketID, text string) (*domain.Ticket, error) {
	return b.Tickets.SendMessage(ctx, ticketID, text)
}

func (b UserBackend) MarkRead(ctx context.Context, ticketID string) error {
	return b.Tickets.MarkRead(ctx, ticketID)
}

func (b UserBackend) Create(ctx context.Context, subject, message string) (*domain.Ticket, error) {
	return b.Tickets.Create(ctx, service.CreateTicketInput{Subject: subject, Message: message})
}

// AdminBackend adapts the admin ticket service.
type AdminBackend struct {
	Tickets *service.AdminTicketService
	Filter  service.AdminTicketFilter
}

func (AdminBackend) Sender() domain.SenderType { return domain.SenderAdmin }

func (b AdminBackend) List(ctx context.Context) ([]domain.Ticket, error) {
	return b.Tickets.List(ctx, b.Filter)
}

func (b AdminBackend) Send(ctx context.Context, ticketID, text string) (*domain.Ticket, error) {
	return b.Tickets.SendMessage(ctx, ticketID, text)
}

func (b AdminBackend) MarkRead(ctx context.Context, ticketID string) error {
	return b.Tickets.MarkRead(ctx, ticketID)
}

func (b AdminBackend) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	return b.Tickets.UpdateStatus(ctx, ticketID, status)
}
