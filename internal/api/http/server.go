package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/contentdesk/internal/api/http/handlers"
	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/auth"
	"github.com/spec-kit/contentdesk/internal/config"
	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/observability"
	"github.com/spec-kit/contentdesk/internal/persistence"
	"github.com/spec-kit/contentdesk/internal/poller"
	"github.com/spec-kit/contentdesk/internal/session"
	"github.com/spec-kit/contentdesk/internal/support"
)

// Dependencies are the collaborators of the console app.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Client   *apiclient.Client
	Storage  session.Storage
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
	Registry *support.Registry
	Clock    poller.Clock
	Done     <-chan struct{}
}

// NewApp builds the console fiber app with middlewares and routes.
func NewApp(d Dependencies) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, d.Logger, d.Metrics, cfg.App.RequestTimeout())

	tokens := auth.NewTokenManager(cfg.Session.CookieSecret, cfg.Session.TTL())
	sessions := auth.NewSessions(d.Storage, d.Client, d.Logger)

	supportOpts := handlers.SupportOptions{
		Registry:     d.Registry,
		PollInterval: cfg.Support.PollInterval,
		Clock:        d.Clock,
		Logger:       d.Logger,
		Metrics:      d.Metrics,
		Done:         d.Done,
	}

	RegisterRoutes(app, RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, d.Postgres, d.Redis),
		Auth:         handlers.NewAuthHandler(),
		Pages:        handlers.NewPagesHandler(d.Logger),
		Documents:    handlers.NewDocumentsHandler(),
		Tools:        handlers.NewToolsHandler(),
		Admin:        handlers.NewAdminHandler(),
		UserSupport:  handlers.NewSupportHandler(domain.PrincipalUser, supportOpts),
		AdminSupport: handlers.NewSupportHandler(domain.PrincipalAdmin, supportOpts),
		Sessions: auth.NewSessionMiddleware(tokens, sessions, auth.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		}),
		Metrics: d.Metrics,
	})
	return app
}
