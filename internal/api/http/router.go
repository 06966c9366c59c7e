package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/signals-service/internal/api/http/handlers"
	"github.com/spec-kit/signals-service/internal/auth"
	"github.com/spec-kit/signals-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Signals         *handlers.SignalsHandler
	SignalResources *handlers.SignalResourcesHandler
	Categories      *handlers.CategoriesHandler
	Departments     *handlers.DepartmentsHandler
	Reports         *handlers.ReportsHandler
	Users           *handlers.UsersHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authAccounts := app.Group("/auth")
	authAccounts.Post("/users/register", cfg.Users.Register)
	authAccounts.Post("/users/login", cfg.Users.Login)

	signals := app.Group("/signals")
	signals.Get("/", cfg.Signals.Index)

	// public signal endpoints: create and the status-only detail view
	signals.Post("/signal/", cfg.Signals.Create)
	signals.Get("/signal/", handlers.MethodNotAllowed)
	signals.Post("/signal/image/", cfg.Signals.AttachImage)
	signals.Get("/signal/:signal_id/", cfg.Signals.Get)
	signals.Delete("/signal/:signal_id/", handlers.MethodNotAllowed)
	signals.Put("/signal/:signal_id/", handlers.MethodNotAllowed)
	signals.Patch("/signal/:signal_id/", handlers.MethodNotAllowed)

	terms := app.Group("/signals/v1/public/terms")
	terms.Get("/categories", cfg.Categories.ListTerms)
	terms.Get("/categories/:slug", cfg.Categories.GetMainTerm)
	terms.Get("/categories/:slug/sub_categories/:sub_slug", cfg.Categories.GetSubTerm)

	authed := signals.Group("/auth", cfg.AuthMiddleware.Handle, auth.RequirePermission(domain.PermSignalWrite))

	authed.Get("/signal/", cfg.SignalResources.ListSignals)
	authed.Post("/signal/", handlers.MethodNotAllowed)
	authed.Get("/signal/:id/history/", cfg.SignalResources.GetSignalHistory)
	authed.Get("/signal/:id/", cfg.SignalResources.GetSignal)
	authed.Delete("/signal/:id/", handlers.MethodNotAllowed)
	authed.Put("/signal/:id/", handlers.MethodNotAllowed)
	authed.Patch("/signal/:id/", handlers.MethodNotAllowed)

	registerHistoryResource(authed, "/status/", cfg.SignalResources.ListStatuses, cfg.SignalResources.CreateStatus, cfg.SignalResources.GetStatus)
	registerHistoryResource(authed, "/category/", cfg.SignalResources.ListCategories, cfg.SignalResources.CreateCategory, cfg.SignalResources.GetCategory)
	registerHistoryResource(authed, "/priority/", cfg.SignalResources.ListPriorities, cfg.SignalResources.CreatePriority, cfg.SignalResources.GetPriority)
	registerHistoryResource(authed, "/location/", cfg.SignalResources.ListLocations, cfg.SignalResources.CreateLocation, cfg.SignalResources.GetLocation)

	departments := app.Group("/signals/v1/private/departments", cfg.AuthMiddleware.Handle)
	departments.Get("/", auth.RequirePermission(domain.PermDepartmentRead), cfg.Departments.List)
	departments.Post("/", auth.RequirePermission(domain.PermDepartmentWrite), cfg.Departments.Create)
	departments.Get("/:id", auth.RequirePermission(domain.PermDepartmentRead), cfg.Departments.Get)
	departments.Patch("/:id", auth.RequirePermission(domain.PermDepartmentWrite), cfg.Departments.Update)
	departments.Delete("/:id", handlers.MethodNotAllowed)

	reports := app.Group("/signals/v1/private/reports", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	reports.Get("/", cfg.Reports.List)
	reports.Get("/:code", cfg.Reports.Get)
}

// registerHistoryResource wires one append-only child history: list,
// create and detail reads, everything that would rewrite history
// answers 405.
func registerHistoryResource(group fiber.Router, path string, list, create, detail fiber.Handler) {
	group.Get(path, list)
	group.Post(path, create)
	group.Get(path+":id/", detail)
	group.Delete(path+":id/", handlers.MethodNotAllowed)
	group.Put(path+":id/", handlers.MethodNotAllowed)
	group.Patch(path+":id/", handlers.MethodNotAllowed)
}
