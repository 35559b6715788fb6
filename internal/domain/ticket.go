package domain

import (
	"sort"
	"time"
)

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusPending TicketStatus = "pending"
	TicketStatusClosed  TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusPending, TicketStatusClosed:
		return true
	}
	return false
}

// TicketOwner is the requester summary embedded in admin listings.
type TicketOwner struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Ticket is a support conversation between a user and the admins.
type Ticket struct {
	ID          string       `json:"_id"`
	Subject     string       `json:"subject"`
	Status      TicketStatus `json:"status"`
	Messages    []Message    `json:"messages"`
	LastMessage time.Time    `json:"lastMessage"`
	UnreadCount int          `json:"unreadCount,omitempty"`
	User        *TicketOwner `json:"user,omitempty"`
	CreatedAt   time.Time    `json:"createdAt,omitempty"`
}

// SortMessages orders the thread by timestamp ascending, keeping the relative
// order of messages with equal timestamps.
func (t *Ticket) SortMessages() {
	sort.SliceStable(t.Messages, func(i, j int) bool {
		return t.Messages[i].Timestamp.Before(t.Messages[j].Timestamp)
	})
}

// Last returns the newest message, or nil for an empty thread.
func (t *Ticket) Last() *Message {
	if t == nil || len(t.Messages) == 0 {
		return nil
	}
	return &t.Messages[len(t.Messages)-1]
}

// Clone returns a deep copy so snapshots can be handed out safely.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Messages = append([]Message(nil), t.Messages...)
	if t.User != nil {
		owner := *t.User
		cp.User = &owner
	}
	return &cp
}
