package domain

import "time"

// UserStatus represents lifecycle states for an end-user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// PlanRef is the subscription plan a user is on.
type PlanRef struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name,omitempty"`
}

// User is the profile of an end user as returned by the backend.
type User struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Credits   int        `json:"credits"`
	Plan      *PlanRef   `json:"plan,omitempty"`
	Role      string     `json:"role,omitempty"`
	Status    UserStatus `json:"status,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty"`
}

// Admin is the profile of a console operator.
type Admin struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Plan is a subscription plan offered to users.
type Plan struct {
	ID       string   `json:"_id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Credits  int      `json:"credits"`
	Interval string   `json:"interval,omitempty"`
	Features []string `json:"features,omitempty"`
}
