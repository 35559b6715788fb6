package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/contentdesk/internal/api/dto"
	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/service"
)

const recentDocuments = 5

// PagesHandler serves the marketing page and the signed-in overview views.
type PagesHandler struct {
	logger *zap.Logger
}

// NewPagesHandler constructs handler.
func NewPagesHandler(logger *zap.Logger) *PagesHandler {
	return &PagesHandler{logger: logger}
}

// Home handles GET /. The marketing page renders without content when the
// backend cannot provide it.
func (h *PagesHandler) Home(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	content, err := api.Homepage.Get(c.UserContext())
	if err != nil {
		h.logger.Warn("homepage content unavailable", zap.Error(err))
		content = domain.HomepageContent{}
	}
	return data(c, content)
}

// Dashboard handles GET /dashboard, reading profile, documents and tickets
// concurrently.
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	b, err := browser(c)
	if err != nil {
		return err
	}
	api := b.UserAPI

	var (
		profile *domain.User
		docs    []domain.Document
		tickets []domain.Ticket
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		profile, err = api.Auth.Profile(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		docs, err = api.Documents.List(ctx, service.DocumentFilter{Limit: recentDocuments})
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = api.Tickets.MyTickets(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if profile != nil {
		if err := b.User.Refresh(c.UserContext(), &domain.Principal{Kind: domain.PrincipalUser, User: profile}); err != nil {
			h.logger.Warn("refresh cached profile", zap.Error(err))
		}
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	if len(docs) > recentDocuments {
		docs = docs[:recentDocuments]
	}

	view := dto.Dashboard{User: profile, RecentDocuments: docs}
	if profile != nil {
		view.Credits = profile.Credits
	}
	for _, t := range tickets {
		if t.Status != domain.TicketStatusClosed {
			view.OpenTickets++
		}
		view.UnreadMessages += t.UnreadCount
	}
	return data(c, view)
}

// Profile handles GET /profile.
func (h *PagesHandler) Profile(c *fiber.Ctx) error {
	b, err := browser(c)
	if err != nil {
		return err
	}
	user, err := b.UserAPI.Auth.Profile(c.UserContext())
	if err != nil {
		return err
	}
	if err := b.User.Refresh(c.UserContext(), &domain.Principal{Kind: domain.PrincipalUser, User: user}); err != nil {
		h.logger.Warn("refresh cached profile", zap.Error(err))
	}
	return data(c, user)
}

// UpdateProfile handles PUT /profile.
func (h *PagesHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.ProfileUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	b, err := browser(c)
	if err != nil {
		return err
	}
	user, err := b.UserAPI.Auth.UpdateProfile(c.UserContext(), service.ProfileUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	if err := b.User.Refresh(c.UserContext(), &domain.Principal{Kind: domain.PrincipalUser, User: user}); err != nil {
		h.logger.Warn("refresh cached profile", zap.Error(err))
	}
	return data(c, user)
}

// Notifications handles GET /notifications: tickets with unread replies.
func (h *PagesHandler) Notifications(c *fiber.Ctx) error {
	api, err := userAPI(c)
	if err != nil {
		return err
	}
	tickets, err := api.Tickets.MyTickets(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.Notification, 0)
	for i := range tickets {
		t := &tickets[i]
		if t.UnreadCount == 0 {
			continue
		}
		n := dto.Notification{TicketID: t.ID, Subject: t.Subject, Unread: t.UnreadCount}
		if last := t.Last(); last != nil {
			n.Preview = last.Text
		}
		items = append(items, n)
	}
	return data(c, items)
}
