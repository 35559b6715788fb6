package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/contentdesk/internal/api/dto"
	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/service"
)

const defaultUserPageSize = 10

// AdminHandler serves the admin console views.
type AdminHandler struct{}

// NewAdminHandler constructs handler.
func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// Users GET /admin/users.
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	page, err := api.Users.GetAllUsers(c.UserContext(),
		c.Query("search"), c.Query("status"), c.Query("subscription"),
		queryInt(c, "page", 1), queryInt(c, "limit", defaultUserPageSize))
	if err != nil {
		return err
	}
	return data(c, page)
}

// User GET /admin/users/:id.
func (h *AdminHandler) User(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	user, err := api.Users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, user)
}

// CreateUser POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req service.UserInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	user, err := api.Users.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, user)
}

// UpdateUser PUT /admin/users/:id.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req service.UserInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	user, err := api.Users.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return data(c, user)
}

// DeleteUser DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	if err := api.Users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Templates GET /admin/templates.
func (h *AdminHandler) Templates(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	templates, err := api.Templates.List(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, templates)
}

// Template GET /admin/templates/:id.
func (h *AdminHandler) Template(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	tpl, err := api.Templates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, tpl)
}

// TemplateCategories GET /admin/templates/categories.
func (h *AdminHandler) TemplateCategories(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	categories, err := api.Templates.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, categories)
}

// CreateTemplate POST /admin/templates and POST /admin/custom-template.
func (h *AdminHandler) CreateTemplate(c *fiber.Ctx) error {
	var req domain.Template
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	tpl, err := api.Templates.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, tpl)
}

// UpdateTemplate PUT /admin/templates/:id.
func (h *AdminHandler) UpdateTemplate(c *fiber.Ctx) error {
	var req domain.Template
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	tpl, err := api.Templates.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return data(c, tpl)
}

// DeleteTemplate DELETE /admin/templates/:id.
func (h *AdminHandler) DeleteTemplate(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	if err := api.Templates.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CustomTemplate GET /admin/custom-template returns the categories and an
// empty template to start from.
func (h *AdminHandler) CustomTemplate(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	categories, err := api.Templates.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, fiber.Map{
		"categories": categories,
		"fieldTypes": []domain.FieldKind{domain.FieldFreeText, domain.FieldDropdown},
		"template":   domain.Template{Active: true, Fields: []domain.Field{}},
	})
}

// Subscription GET /admin/subscription: plans and subscriber counts.
func (h *AdminHandler) Subscription(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	var (
		plans []domain.Plan
		users *service.UserPage
	)
	sample := queryInt(c, "sample", 100)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		plans, err = api.Users.Plans(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = api.Users.List(ctx, service.UserQuery{Page: 1, Limit: sample})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	view := dto.SubscriptionOverview{Plans: plans, Subscribers: map[string]int{}}
	for _, p := range plans {
		view.Subscribers[p.Name] = 0
	}
	for _, u := range users.Users {
		view.Subscribers[planName(u)]++
	}
	return data(c, view)
}

// Analytics GET /admin/analytics.
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	var (
		users     *service.UserPage
		tickets   []domain.Ticket
		templates []domain.Template
	)
	sample := queryInt(c, "sample", 100)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		users, err = api.Users.List(ctx, service.UserQuery{Page: 1, Limit: sample})
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = api.AdminTickets.List(ctx, service.AdminTicketFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		templates, err = api.Templates.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	view := dto.Analytics{
		TotalUsers:      users.Pagination.Total,
		UsersByStatus:   map[string]int{},
		UsersByPlan:     map[string]int{},
		TicketsByStatus: map[string]int{},
		Templates:       len(templates),
	}
	if view.TotalUsers == 0 {
		view.TotalUsers = len(users.Users)
	}
	for _, u := range users.Users {
		status := string(u.Status)
		if status == "" {
			status = string(domain.UserStatusActive)
		}
		view.UsersByStatus[status]++
		view.UsersByPlan[planName(u)]++
	}
	for _, t := range tickets {
		view.TicketsByStatus[string(t.Status)]++
	}
	return data(c, view)
}

// Frontend GET /admin/frontend.
func (h *AdminHandler) Frontend(c *fiber.Ctx) error {
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	content, err := api.Homepage.Get(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, content)
}

// UpdateFrontend PUT /admin/frontend.
func (h *AdminHandler) UpdateFrontend(c *fiber.Ctx) error {
	var req domain.HomepageContent
	if err := parseBody(c, &req); err != nil {
		return err
	}
	api, err := adminAPI(c)
	if err != nil {
		return err
	}
	content, err := api.Homepage.Update(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, content)
}

func planName(u domain.User) string {
	if u.Plan == nil || u.Plan.Name == "" {
		return "free"
	}
	return u.Plan.Name
}
