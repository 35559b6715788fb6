package support

import (
	"github.com/spec-kit/contentdesk/internal/domain"
)

// Phase is where a chat view is in its lifecycle.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseViewing Phase = "viewing"
	PhaseSending Phase = "sending"
)

// Snapshot is a copy of a view's state handed to subscribers.
type Snapshot struct {
	View     string          `json:"view"`
	Phase    Phase           `json:"phase"`
	Tickets  []domain.Ticket `json:"tickets"`
	ActiveID string          `json:"activeId,omitempty"`
	Active   *domain.Ticket  `json:"active,omitempty"`
	Error    string          `json:"error,omitempty"`
	Version  uint64          `json:"version"`
}

func (s Snapshot) clone() Snapshot {
	cp := s
	cp.Tickets = make([]domain.Ticket, len(s.Tickets))
	for i := range s.Tickets {
		cp.Tickets[i] = *s.Tickets[i].Clone()
	}
	cp.Active = s.Active.Clone()
	return cp
}

// Changed reports whether next differs from prev in anything the chat
// window shows: message count, status, last message, subject or unread count.
func Changed(prev, next *domain.Ticket) bool {
	switch {
	case prev == nil && next == nil:
		return false
	case prev == nil || next == nil:
		return true
	}
	if len(prev.Messages) != len(next.Messages) ||
		prev.Status != next.Status ||
		prev.Subject != next.Subject ||
		prev.UnreadCount != next.UnreadCount {
		return true
	}
	a, b := prev.Last(), next.Last()
	if a == nil || b == nil {
		return a != b
	}
	return a.ID != b.ID || a.Text != b.Text || !a.Timestamp.Equal(b.Timestamp) || a.Pending != b.Pending
}

// listChanged reports whether a re-fetched list differs from the current one.
func listChanged(prev, next []domain.Ticket) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i].ID != next[i].ID || Changed(&prev[i], &next[i]) {
			return true
		}
	}
	return false
}

// merge reconciles the authoritative copy of a ticket with the optimistic
// messages still awaiting acknowledgement. Server messages win; pending
// messages stay at the tail in the order they were sent.
func merge(server *domain.Ticket, pending []domain.Message) *domain.Ticket {
	if server == nil {
		return nil
	}
	out := server.Clone()
	out.SortMessages()
	if len(pending) == 0 {
		return out
	}
	known := make(map[string]struct{}, len(out.Messages))
	for _, m := range out.Messages {
		known[m.ID] = struct{}{}
	}
	for _, m := range pending {
		if _, ok := known[m.ID]; ok {
			continue
		}
		out.Messages = append(out.Messages, m)
	}
	return out
}

func find(tickets []domain.Ticket, id string) *domain.Ticket {
	for i := range tickets {
		if tickets[i].ID == id {
			return &tickets[i]
		}
	}
	return nil
}
