package service

import (
	"context"
	"net/http"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

type userAuthPayload struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type adminAuthPayload struct {
	Token string        `json:"token"`
	Admin *domain.Admin `json:"admin"`
}

// AuthService covers end-user sign in, sign up, sign out and profile.
type AuthService struct {
	client *apiclient.Client
}

// NewAuthService builds the service.
func NewAuthService(client *apiclient.Client) *AuthService {
	return &AuthService{client: client}
}

// Login handles POST /users/login.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if err := requireFields("email and password required",
		field{"email", creds.Email}, field{"password", creds.Password}); err != nil {
		return nil, err
	}
	out, err := apiclient.Call[userAuthPayload](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/users/login",
		Body:   creds,
	})
	if err != nil {
		return nil, err
	}
	return userSession(out), nil
}

// Register handles POST /users/register.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.Session, error) {
	if err := requireFields("name, email, password required",
		field{"name", reg.Name}, field{"email", reg.Email}, field{"password", reg.Password}); err != nil {
		return nil, err
	}
	out, err := apiclient.Call[userAuthPayload](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/users/register",
		Body:   reg,
	})
	if err != nil {
		return nil, err
	}
	return userSession(out), nil
}

// Logout handles POST /users/logout with the token being revoked.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	_, err := s.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/users/logout",
		Token:  token,
	})
	return err
}

// Profile handles GET /users/profile.
func (s *AuthService) Profile(ctx context.Context) (*domain.User, error) {
	return apiclient.Call[*domain.User](ctx, s.client, apiclient.Request{Path: "/users/profile"})
}

// ProfileUpdate is the editable part of a profile.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UpdateProfile handles PUT /users/profile.
func (s *AuthService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*domain.User, error) {
	if in.Name == "" && in.Email == "" {
		return nil, apperrors.NewValidationError("nothing to update", nil)
	}
	return apiclient.Call[*domain.User](ctx, s.client, apiclient.Request{
		Method: http.MethodPut,
		Path:   "/users/profile",
		Body:   in,
	})
}

func userSession(out userAuthPayload) *domain.Session {
	return &domain.Session{
		Token:     out.Token,
		Principal: &domain.Principal{Kind: domain.PrincipalUser, User: out.User},
	}
}

// AdminAuthService covers console operator sign in and sign out.
type AdminAuthService struct {
	client *apiclient.Client
}

// NewAdminAuthService builds the service.
func NewAdminAuthService(client *apiclient.Client) *AdminAuthService {
	return &AdminAuthService{client: client}
}

// Login handles POST /admin/login.
func (s *AdminAuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if err := requireFields("email and password required",
		field{"email", creds.Email}, field{"password", creds.Password}); err != nil {
		return nil, err
	}
	out, err := apiclient.Call[adminAuthPayload](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/admin/login",
		Body:   creds,
	})
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Token:     out.Token,
		Principal: &domain.Principal{Kind: domain.PrincipalAdmin, Admin: out.Admin},
	}, nil
}

// Logout handles POST /admin/logout.
func (s *AdminAuthService) Logout(ctx context.Context, token string) error {
	_, err := s.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/admin/logout",
		Token:  token,
	})
	return err
}
