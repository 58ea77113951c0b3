package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opsdesk/opsdesk/internal/api/http/handlers"
	"github.com/opsdesk/opsdesk/internal/auth"
	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Actors         *handlers.ActorsHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Attachments    *handlers.AttachmentsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	actors := app.Group("/actors", cfg.AuthMiddleware.Handle)
	actors.Post("/", cfg.Actors.CreateActor)
	actors.Get("/employees", auth.RequireStaff(), cfg.Actors.ListEmployees)
	actors.Delete("/:id", cfg.Actors.DeactivateActor)

	attachments := app.Group("/attachments", cfg.AuthMiddleware.Handle)
	attachments.Post("/", cfg.Attachments.Upload)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)

	// Static segments before the :id wildcard.
	tickets.Get("/my-tickets", auth.RequireTenant(), cfg.Tickets.ListMyTickets)
	tickets.Get("/assigned", auth.RequireRole(domain.RoleEmployee), cfg.StaffTickets.ListAssignedTickets)

	tickets.Post("/", auth.RequireTenant(), cfg.Tickets.CreateTicket)
	tickets.Get("/", auth.RequireStaff(), cfg.StaffTickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", auth.RequireStaff(), cfg.StaffTickets.UpdateStatus)

	tickets.Patch("/:id/assign", auth.RequireRole(domain.RoleAdmin), cfg.StaffTickets.BulkAssign)
	tickets.Patch("/:id/add-employee", auth.RequireRole(domain.RoleAdmin), cfg.StaffTickets.AddEmployee)
	tickets.Patch("/:id/remove-employee", auth.RequireRole(domain.RoleAdmin), cfg.StaffTickets.RemoveEmployee)

	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
}
