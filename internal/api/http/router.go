package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-ops/grievance-service/internal/api/http/handlers"
	"github.com/campus-ops/grievance-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Users           *handlers.UsersHandler
	Grievances      *handlers.GrievancesHandler
	StaffGrievances *handlers.StaffGrievancesHandler
	AdminGrievances *handlers.AdminGrievancesHandler
	AdminStaff      *handlers.AdminStaffHandler
	Attachments     *handlers.AttachmentsHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/staff/login", cfg.Users.StaffLogin)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Users.ChangePassword)

	grievances := app.Group("/grievances", cfg.AuthMiddleware.Handle)
	grievances.Post("", auth.RequireUser(), cfg.Grievances.Submit)
	grievances.Get("", auth.RequireUser(), cfg.Grievances.ListOwn)
	grievances.Get("/:id", auth.RequireUser(), cfg.Grievances.Get)
	grievances.Post("/:id/verify", auth.RequireUser(), cfg.Grievances.Verify)
	grievances.Get("/:id/messages", auth.RequireAnyRole(), cfg.Grievances.ListMessages)
	grievances.Post("/:id/messages", auth.RequireAnyRole(), cfg.Grievances.AddMessage)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Get("/grievances", cfg.StaffGrievances.ListAssigned)
	staff.Patch("/grievances/:id/status", cfg.StaffGrievances.UpdateStatus)
	staff.Post("/grievances/:id/extension", cfg.StaffGrievances.RequestExtension)
	staff.Get("/grievances/:id/history", cfg.StaffGrievances.ListHistory)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	admin.Get("/grievances", cfg.AdminGrievances.ListAll)
	admin.Get("/grievances/category/:category", cfg.AdminGrievances.ListByCategory)
	admin.Post("/grievances/:id/assign", cfg.AdminGrievances.Assign)
	admin.Post("/grievances/:id/extension/resolve", cfg.AdminGrievances.ResolveExtension)
	admin.Get("/staff", cfg.AdminStaff.List)
	admin.Get("/staff/:id", cfg.AdminStaff.Get)
	admin.Get("/staff/:id/status", cfg.AdminStaff.AdminStatus)
	admin.Post("/staff/promote", cfg.AdminStaff.Promote)
	admin.Post("/staff/:id/demote", cfg.AdminStaff.Demote)

	attachments := app.Group("/attachments", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	attachments.Post("", cfg.Attachments.Upload)
	attachments.Get("/:ref", cfg.Attachments.Download)
}
