package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/akshayaportal/services-backend/controllers/staff"
	"github.com/akshayaportal/services-backend/middleware"
	"github.com/akshayaportal/services-backend/models"
)

// SetupStaffRoutes configures the staff surface. Every route past login and
// registration goes through the JWT check and the staff context loader;
// appointment routes additionally apply the center scope and per-action
// permission guards.
func SetupStaffRoutes(app *fiber.App) {
	group := app.Group("/staff")

	group.Post("/login", staff.Login)
	group.Post("/register", staff.Register)

	protected := middleware.Protected()
	staffCtx := middleware.StaffContext()

	group.Get("/profile", protected, staffCtx, staff.GetProfile)
	group.Put("/profile", protected, staffCtx, staff.UpdateProfile)
	group.Put("/password", protected, staffCtx, staff.ChangePassword)

	group.Get("/dashboard", protected, staffCtx,
		middleware.CenterAccess(),
		staff.GetDashboard)
	group.Get("/analytics", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermViewAnalytics),
		staff.GetAnalytics)

	// Registered before the :id routes so "stats" never parses as an ID.
	group.Get("/appointments/stats/summary", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermViewReports),
		staff.GetStatsSummary)

	group.Get("/appointments", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermManageAppointments),
		staff.GetAppointments)
	group.Get("/appointments/:id", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermManageAppointments),
		staff.GetAppointmentDetails)
	group.Put("/appointments/:id/status", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermUpdateStatus),
		middleware.WorkingHoursCheck(),
		staff.UpdateAppointmentStatus)
	group.Post("/appointments/:id/notes", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermManageAppointments),
		staff.AddNote)
	group.Post("/appointments/:id/comments", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermAddComments),
		staff.AddComment)
	group.Post("/appointments/:id/documents", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermUploadDocuments),
		middleware.WorkingHoursCheck(),
		staff.UploadDocument)
	group.Get("/appointments/:id/documents", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermManageAppointments),
		staff.GetDocuments)
	group.Delete("/appointments/:id/documents/:docId", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermUploadDocuments),
		staff.DeleteDocument)

	group.Get("/services/available", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermManageServices),
		staff.GetAvailableServices)
	group.Get("/services/center", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermManageServices),
		staff.GetCenterServices)
	group.Get("/services/hidden", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermManageServices),
		staff.GetHiddenServices)
	group.Put("/services/:serviceId/toggle", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermManageServices),
		staff.ToggleService)
	group.Put("/services/:serviceId/settings", protected, staffCtx,
		middleware.CenterAccess(),
		middleware.RequirePermission(models.PermManageServices),
		staff.UpdateServiceSettings)
}
