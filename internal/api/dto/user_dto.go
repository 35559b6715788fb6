package dto

import "github.com/spec-kit/contentdesk/internal/domain"

// LoginRequest payload for both login forms.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Redirect string `json:"redirect" form:"redirect"`
}

// RegisterRequest payload for sign up.
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Redirect string `json:"redirect" form:"redirect"`
}

// SessionResponse is returned after a successful login or sign up. The
// backend token stays on the server.
type SessionResponse struct {
	Principal *domain.Principal `json:"principal"`
	Redirect  string            `json:"redirect"`
}

// LoginPage describes the login view.
type LoginPage struct {
	Authenticated bool   `json:"authenticated"`
	Redirect      string `json:"redirect"`
}

// ProfileUpdateRequest payload for PUT /profile.
type ProfileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Dashboard is the signed-in landing view.
type Dashboard struct {
	User            *domain.User      `json:"user"`
	Credits         int               `json:"credits"`
	RecentDocuments []domain.Document `json:"recentDocuments"`
	OpenTickets     int               `json:"openTickets"`
	UnreadMessages  int               `json:"unreadMessages"`
}

// Notification is an unread support reply.
type Notification struct {
	TicketID string `json:"ticketId"`
	Subject  string `json:"subject"`
	Unread   int    `json:"unread"`
	Preview  string `json:"preview,omitempty"`
}

// SubscriptionOverview backs /admin/subscription.
type SubscriptionOverview struct {
	Plans       []domain.Plan  `json:"plans"`
	Subscribers map[string]int `json:"subscribers"`
}

// Analytics backs /admin/analytics.
type Analytics struct {
	TotalUsers      int            `json:"totalUsers"`
	UsersByStatus   map[string]int `json:"usersByStatus"`
	UsersByPlan     map[string]int `json:"usersByPlan"`
	TicketsByStatus map[string]int `json:"ticketsByStatus"`
	Templates       int            `json:"templates"`
}
