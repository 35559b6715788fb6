package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventChatUpdated         EventType = "chat_updated"
	EventTicketCreated       EventType = "ticket_created"
	EventTicketMessageSent   EventType = "ticket_message_sent"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketRead          EventType = "ticket_read"
)

// Event is something that happened in a support view.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	View      string    `json:"view"`
	TicketID  string    `json:"ticketId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, view, ticketID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		View:      view,
		TicketID:  ticketID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

// TicketMessageSentPayload payload.
type TicketMessageSentPayload struct {
	MessageID   string `json:"messageId"`
	SenderType  string `json:"senderType"`
	BodyPreview string `json:"bodyPreview"`
}
