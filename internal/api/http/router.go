package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/contentdesk/internal/api/http/handlers"
	"github.com/spec-kit/contentdesk/internal/auth"
	"github.com/spec-kit/contentdesk/internal/guard"
	"github.com/spec-kit/contentdesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Pages        *handlers.PagesHandler
	Documents    *handlers.DocumentsHandler
	Tools        *handlers.ToolsHandler
	Admin        *handlers.AdminHandler
	UserSupport  *handlers.SupportHandler
	AdminSupport *handlers.SupportHandler
	Sessions     *auth.SessionMiddleware
	Metrics      *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	site := app.Group("", cfg.Sessions.Handle)
	site.Get("/", cfg.Pages.Home)
	site.Get("/session", cfg.Auth.Me)
	site.Get("/login", cfg.Auth.LoginPage)
	site.Post("/login", cfg.Auth.Login)
	site.Post("/register", cfg.Auth.Register)
	site.Post("/logout", cfg.Auth.Logout)
	site.Get("/admin/login", cfg.Auth.AdminLoginPage)
	site.Post("/admin/login", cfg.Auth.AdminLogin)
	site.Post("/admin/logout", cfg.Auth.AdminLogout)

	// User pages share no prefix, so the guard goes on each route.
	requireUser := guard.RequireUser(auth.UserLocator)
	site.Get("/dashboard", requireUser, cfg.Pages.Dashboard)
	site.Get("/profile", requireUser, cfg.Pages.Profile)
	site.Put("/profile", requireUser, cfg.Pages.UpdateProfile)
	site.Get("/notifications", requireUser, cfg.Pages.Notifications)

	site.Get("/ai-writer", requireUser, cfg.Tools.Writer)
	site.Get("/ai-writer/template/:templateId", requireUser, cfg.Tools.WriterTemplate)
	site.Post("/ai-writer/template/:templateId/generate", requireUser, cfg.Tools.Generate)
	site.Get("/translation", requireUser, cfg.Tools.TranslationHistory)
	site.Post("/translation", requireUser, cfg.Tools.Translate)
	site.Get("/compliance", requireUser, cfg.Tools.ComplianceDocuments)
	site.Post("/compliance/analyze", requireUser, cfg.Tools.Analyze)
	site.Post("/compliance/fix", requireUser, cfg.Tools.Fix)
	site.Get("/seo/keywords", requireUser, cfg.Tools.Keywords)
	site.Post("/seo/generate", requireUser, cfg.Tools.GenerateSEO)

	site.Get("/documents", requireUser, cfg.Documents.List)
	site.Post("/documents", requireUser, cfg.Documents.Create)
	site.Get("/documents/:id", requireUser, cfg.Documents.Get)
	site.Put("/documents/:id", requireUser, cfg.Documents.Update)
	site.Delete("/documents/:id", requireUser, cfg.Documents.Delete)
	site.Get("/documents/:id/download", requireUser, cfg.Documents.Download)

	site.Get("/support", requireUser, cfg.UserSupport.Tickets)
	site.Get("/support/stream", requireUser, cfg.UserSupport.Stream)
	site.Post("/support/tickets", requireUser, cfg.UserSupport.Create)
	site.Post("/support/select", requireUser, cfg.UserSupport.Select)
	site.Post("/support/messages", requireUser, cfg.UserSupport.Send)

	admin := site.Group("/admin", guard.RequireAdmin(auth.AdminLocator))
	admin.Get("/users", cfg.Admin.Users)
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Get("/users/:id", cfg.Admin.User)
	admin.Put("/users/:id", cfg.Admin.UpdateUser)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)

	admin.Get("/templates", cfg.Admin.Templates)
	admin.Post("/templates", cfg.Admin.CreateTemplate)
	admin.Get("/templates/categories", cfg.Admin.TemplateCategories)
	admin.Get("/templates/:id", cfg.Admin.Template)
	admin.Put("/templates/:id", cfg.Admin.UpdateTemplate)
	admin.Delete("/templates/:id", cfg.Admin.DeleteTemplate)
	admin.Get("/custom-template", cfg.Admin.CustomTemplate)
	admin.Post("/custom-template", cfg.Admin.CreateTemplate)

	admin.Get("/subscription", cfg.Admin.Subscription)
	admin.Get("/analytics", cfg.Admin.Analytics)
	admin.Get("/frontend", cfg.Admin.Frontend)
	admin.Put("/frontend", cfg.Admin.UpdateFrontend)

	admin.Get("/support", cfg.AdminSupport.Tickets)
	admin.Get("/support/stream", cfg.AdminSupport.Stream)
	admin.Post("/support/select", cfg.AdminSupport.Select)
	admin.Post("/support/messages", cfg.AdminSupport.Send)
	admin.Put("/support/:id/status", cfg.AdminSupport.UpdateStatus)
}
