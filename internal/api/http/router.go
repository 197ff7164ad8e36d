package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/training-service/internal/api/http/handlers"
	"github.com/spec-kit/training-service/internal/auth"
	"github.com/spec-kit/training-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Catalog        *handlers.CatalogHandler
	Scenarios      *handlers.ScenariosHandler
	Assignments    *handlers.AssignmentsHandler
	Reviews        *handlers.ReviewsHandler
	Analysis       *handlers.AnalysisHandler
	Reports        *handlers.ReportsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/auth/bootstrap", cfg.Auth.Bootstrap)
	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	protected.Get("/models", cfg.Scenarios.Models)
	protected.Post("/scenarios/generate", cfg.Scenarios.Generate)
	protected.Post("/scenarios/submit", cfg.Scenarios.Submit)

	protected.Get("/assignments/mine", cfg.Assignments.Mine)
	protected.Post("/assignments/:id/response", cfg.Assignments.Respond)
	protected.Delete("/assignments/:id", cfg.Assignments.Delete)

	protected.Get("/catalog", cfg.Catalog.Get)
	protected.Get("/orgchart", cfg.Catalog.Chart)
	protected.Get("/reports/overview", cfg.Reports.Overview)
	protected.Post("/analysis/polish", cfg.Analysis.Polish)

	supervisor := protected.Group("", auth.RequireSupervisor())
	supervisor.Get("/assignments/roles", cfg.Assignments.Roles)
	supervisor.Get("/assignments/roles/:role/staff", cfg.Assignments.Staff)
	supervisor.Post("/assignments", cfg.Assignments.Create)
	supervisor.Get("/reviews/pending", cfg.Reviews.Pending)
	supervisor.Post("/reviews/results/:index", cfg.Reviews.ReviewResult)
	supervisor.Post("/reviews/assignments/:id", cfg.Reviews.ReviewAssignment)

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.Get("/users", cfg.Users.List)
	admin.Post("/users", cfg.Users.Create)
	admin.Put("/users/:email", cfg.Users.Update)
	admin.Delete("/users/:email", cfg.Users.Delete)
	admin.Post("/users/:email/password/reset", cfg.Users.ResetPassword)

	admin.Post("/catalog/roles", cfg.Catalog.CreateRole)
	admin.Put("/catalog/roles/:role", cfg.Catalog.UpdateRole)
	admin.Delete("/catalog/roles/:role", cfg.Catalog.DeleteRole)
	admin.Post("/catalog/roles/:role/description", cfg.Catalog.UploadDescription)
	admin.Post("/catalog/edges", cfg.Catalog.AddEdge)
	admin.Delete("/catalog/edges", cfg.Catalog.RemoveEdge)

	admin.Post("/analysis/call", cfg.Analysis.Transcript)
	admin.Post("/analysis/call/audio", cfg.Analysis.Audio)

	admin.Post("/scores/retrofix", cfg.Admin.RetroFixScores)
	admin.Post("/analyses/rerun", cfg.Admin.RerunAnalyses)
	admin.Delete("/results/:index", cfg.Admin.DeleteResult)
}
