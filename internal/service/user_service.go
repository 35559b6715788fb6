package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
)

// UserQuery filters the admin user listing. Page is 1-indexed.
type UserQuery struct {
	Search       string
	Status       string
	Subscription string
	Page         int
	Limit        int
}

// Values encodes only the non-empty filters.
func (q UserQuery) Values() url.Values {
	v := url.Values{}
	setIfPresent(v, "search", q.Search)
	setIfPresent(v, "status", q.Status)
	setIfPresent(v, "subscription", q.Subscription)
	setPositive(v, "page", q.Page)
	setPositive(v, "limit", q.Limit)
	return v
}

// UserInput is the admin create/update payload.
type UserInput struct {
	Name     string            `json:"name,omitempty"`
	Email    string            `json:"email,omitempty"`
	Password string            `json:"password,omitempty"`
	Credits  *int              `json:"credits,omitempty"`
	PlanID   string            `json:"plan,omitempty"`
	Status   domain.UserStatus `json:"status,omitempty"`
}

// UserPage is the backend's paginated user listing.
type UserPage struct {
	Users      []domain.User     `json:"users"`
	Pagination domain.Pagination `json:"pagination"`
}

type UserService struct {
	client *apiclient.Client
}

func NewUserService(client *apiclient.Client) *UserService {
	return &UserService{client: client}
}

// GetAllUsers handles GET /admin/users.
func (s *UserService) GetAllUsers(ctx context.Context, search, status, subscription string, page, limit int) (*UserPage, error) {
	return s.List(ctx, UserQuery{Search: search, Status: status, Subscription: subscription, Page: page, Limit: limit})
}

func (s *UserService) List(ctx context.Context, q UserQuery) (*UserPage, error) {
	out, err := apiclient.Call[UserPage](ctx, s.client, apiclient.Request{Path: "/admin/users", Query: q.Values()})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if err := requireID("user", id); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.User](ctx, s.client, apiclient.Request{Path: pathOf("/admin/users", id)})
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	if err := requireFields("name, email, password required",
		field{"name", in.Name}, field{"email", in.Email}, field{"password", in.Password}); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.User](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/admin/users",
		Body:   in,
	})
}

func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*domain.User, error) {
	if err := requireID("user", id); err != nil {
		return nil, err
	}
	return apiclient.Call[*domain.User](ctx, s.client, apiclient.Request{
		Method: http.MethodPut,
		Path:   pathOf("/admin/users", id),
		Body:   in,
	})
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := requireID("user", id); err != nil {
		return err
	}
	_, err := s.client.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: pathOf("/admin/users", id)})
	return err
}

// Plans handles GET /admin/plans.
func (s *UserService) Plans(ctx context.Context) ([]domain.Plan, error) {
	return apiclient.Call[[]domain.Plan](ctx, s.client, apiclient.Request{Path: "/admin/plans"})
}
