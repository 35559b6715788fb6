package dto

import "github.com/spec-kit/contentdesk/internal/domain"

// CreateTicketRequest payload for opening a ticket.
type CreateTicketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SendMessageRequest payload for replying in the active ticket. TicketID
// selects the ticket first when it is not the active one.
type SendMessageRequest struct {
	TicketID string `json:"ticketId,omitempty"`
	Message  string `json:"message"`
}

// SelectTicketRequest payload for switching the active ticket.
type SelectTicketRequest struct {
	TicketID string `json:"ticketId"`
}

// UpdateStatusRequest payload for admin status transitions.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}
