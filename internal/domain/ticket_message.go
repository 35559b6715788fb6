package domain

import "time"

// SenderType indicates who authored a message.
type SenderType string

const (
	SenderUser  SenderType = "User"
	SenderAdmin SenderType = "Admin"
)

// Message is one entry of a ticket thread.
type Message struct {
	ID         string     `json:"_id"`
	SenderType SenderType `json:"senderType"`
	Text       string     `json:"message"`
	Timestamp  time.Time  `json:"timestamp"`
	// Pending marks an optimistic message the backend has not acknowledged yet.
	Pending bool `json:"pending,omitempty"`
}
