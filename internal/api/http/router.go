package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-tracker/internal/api/http/handlers"
	"github.com/spec-kit/repair-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Repairs        *handlers.RepairsHandler
	Inventory      *handlers.InventoryHandler
	Analytics      *handlers.AnalyticsHandler
	Settings       *handlers.SettingsHandler
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

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", cfg.Users.ListUsers)
	users.Patch("/:uid/role", auth.RequireRoleManagement(), cfg.Users.UpdateRole)

	repairs := app.Group("/repairs", cfg.AuthMiddleware.Handle)
	repairs.Get("/statuses", cfg.Repairs.Statuses)
	repairs.Post("/", cfg.Repairs.Intake)
	repairs.Get("/", cfg.Repairs.List)
	repairs.Delete("/", auth.RequireReset(), cfg.Repairs.ResetAll)
	repairs.Get("/:id", cfg.Repairs.Get)
	repairs.Post("/:id/transition", cfg.Repairs.Transition)
	repairs.Post("/:id/advance", cfg.Repairs.Advance)
	repairs.Patch("/:id/priority", auth.RequirePriorityControl(), cfg.Repairs.SetPriority)
	repairs.Patch("/:id/notes", cfg.Repairs.EditNotes)
	repairs.Post("/:id/reassign", auth.RequireReassign(), cfg.Repairs.Reassign)
	repairs.Post("/:id/rma", cfg.Repairs.SendToRMA)
	repairs.Post("/:id/staging", cfg.Repairs.CompleteStaging)
	repairs.Post("/:id/photos", cfg.Repairs.AddPhoto)
	repairs.Get("/:id/parts", cfg.Inventory.EligibleParts)
	repairs.Post("/:id/parts", cfg.Inventory.TogglePartUsage)

	parts := app.Group("/parts", cfg.AuthMiddleware.Handle)
	parts.Get("/", cfg.Inventory.ListParts)
	parts.Post("/", auth.RequireMasterData(), cfg.Inventory.CreatePart)
	parts.Put("/:id", auth.RequireMasterData(), cfg.Inventory.UpdatePart)
	parts.Patch("/:id/quantity", cfg.Inventory.AdjustQuantity)
	parts.Delete("/:id", auth.RequireMasterData(), cfg.Inventory.DeletePart)

	analytics := app.Group("/analytics", cfg.AuthMiddleware.Handle)
	analytics.Get("/dashboard", cfg.Analytics.Dashboard)
	analytics.Get("/sla-breaches", cfg.Analytics.SLABreaches)

	settings := app.Group("/settings", cfg.AuthMiddleware.Handle)
	settings.Get("/", cfg.Settings.Get)
	settings.Get("/models", cfg.Settings.Models)
	settings.Patch("/", auth.RequireMasterData(), cfg.Settings.Merge)
	settings.Put("/sla", auth.RequireMasterData(), cfg.Settings.UpdateSLA)
}
