package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/akshayaportal/services-backend/controllers/admin"
	"github.com/akshayaportal/services-backend/middleware"
	"github.com/akshayaportal/services-backend/models"
)

// SetupAdminRoutes registers admin-only operations: the service catalog,
// center approval and holiday management.
func SetupAdminRoutes(app *fiber.App) {
	group := app.Group("/admin",
		middleware.Protected(),
		middleware.RequireRole(models.RoleAdmin),
		middleware.StaffContext())

	group.Get("/services", admin.ListServices)
	group.Post("/services", admin.CreateService)
	group.Put("/services/:id", admin.UpdateService)
	group.Delete("/services/:id", admin.DeleteService)

	group.Get("/centers", admin.ListCenters)
	group.Put("/centers/:id/approve", admin.ApproveCenter)
	group.Put("/centers/:id/reject", admin.RejectCenter)
	group.Post("/centers/:id/services/enable-all", admin.EnableAllServices)
	group.Put("/centers/:id/services/:serviceId/hide", admin.HideService)
	group.Put("/centers/:id/services/:serviceId/unhide", admin.UnhideService)

	group.Get("/holidays", admin.ListHolidays)
	group.Post("/holidays", admin.CreateHoliday)
	group.Delete("/holidays/:id", admin.DeleteHoliday)
}
