package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/servicenest/helpdesk/internal/api/http/handlers"
	"github.com/servicenest/helpdesk/internal/auth"
	"github.com/servicenest/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Directory      *handlers.DirectoryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	adminOnly := auth.RequireRoles(domain.RoleAdmin)
	staffOnly := auth.RequireRoles(domain.RoleAdmin, domain.RoleAgent)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/search", cfg.Tickets.SearchTickets)
	tickets.Get("/assigned", cfg.Tickets.ListAssigned)
	tickets.Get("/dashboard", cfg.Tickets.Dashboard)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/merge", cfg.Tickets.MergeTickets)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)
	tickets.Post("/:id/comments", cfg.Comments.AddComment)
	tickets.Get("/:id/comments", cfg.Comments.ListComments)
	tickets.Post("/:id/watchers", cfg.Tickets.AddWatcher)
	tickets.Delete("/:id/watchers", cfg.Tickets.RemoveWatcher)
	tickets.Get("/:id/watchers", cfg.Tickets.ListWatchers)

	orgs := app.Group("/organizations", cfg.AuthMiddleware.Handle)
	orgs.Post("", adminOnly, cfg.Directory.CreateOrganization)
	orgs.Get("", adminOnly, cfg.Directory.ListOrganizations)
	orgs.Get("/:id", cfg.Directory.GetOrganization)

	teams := app.Group("/teams", cfg.AuthMiddleware.Handle)
	teams.Post("", adminOnly, cfg.Directory.CreateTeam)
	teams.Get("", cfg.Directory.ListTeams)
	teams.Delete("/:id", adminOnly, cfg.Directory.DeleteTeam)
	teams.Get("/:id/users", cfg.Directory.ListTeamUsers)

	roles := app.Group("/roles", cfg.AuthMiddleware.Handle)
	roles.Post("", adminOnly, cfg.Directory.CreateRole)
	roles.Get("", cfg.Directory.ListRoles)
	roles.Delete("/:id", adminOnly, cfg.Directory.DeleteRole)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("", staffOnly, cfg.Directory.ListOrganizationUsers)
	users.Put("/:id/team", adminOnly, cfg.Directory.AssignUserToTeam)
	users.Post("/:id/roles", adminOnly, cfg.Directory.AssignRole)
}
