package domain

// PrincipalKind differentiates user sessions from admin sessions.
type PrincipalKind string

const (
	PrincipalUser  PrincipalKind = "user"
	PrincipalAdmin PrincipalKind = "admin"
)

// Principal is the subject of a session: exactly one of User or Admin is set.
type Principal struct {
	Kind  PrincipalKind `json:"kind"`
	User  *User         `json:"user,omitempty"`
	Admin *Admin        `json:"admin,omitempty"`
}

// DisplayName returns the name of whichever profile is present.
func (p *Principal) DisplayName() string {
	switch {
	case p == nil:
		return ""
	case p.User != nil:
		return p.User.Name
	case p.Admin != nil:
		return p.Admin.Name
	}
	return ""
}

// Email returns the email of whichever profile is present.
func (p *Principal) Email() string {
	switch {
	case p == nil:
		return ""
	case p.User != nil:
		return p.User.Email
	case p.Admin != nil:
		return p.Admin.Email
	}
	return ""
}

// Session pairs a bearer token with the principal it was issued to.
// A session without a token has no principal.
type Session struct {
	Token     string     `json:"token"`
	Principal *Principal `json:"principal,omitempty"`
}

// Credentials is the login payload for both principal kinds.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload for end users.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
