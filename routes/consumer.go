package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/akshayaportal/services-backend/controllers/consumer"
	"github.com/akshayaportal/services-backend/middleware"
)

// SetupConsumerRoutes registers the citizen-facing surface: public browsing
// plus authenticated appointments, profile and notifications.
func SetupConsumerRoutes(app *fiber.App) {
	app.Get("/services", consumer.ListServices)
	app.Get("/centers", consumer.ListCenters)
	app.Get("/centers/:id", consumer.GetCenter)

	appointments := app.Group("/appointments", middleware.Protected())
	appointments.Get("/slots", consumer.GetAvailableSlots)
	appointments.Get("/", consumer.GetAppointments)
	appointments.Post("/", consumer.CreateAppointment)
	appointments.Get("/:id", consumer.GetAppointment)
	appointments.Put("/:id", consumer.UpdateAppointment)
	appointments.Put("/:id/reschedule", consumer.RescheduleAppointment)
	appointments.Delete("/:id", consumer.CancelAppointment)
	appointments.Post("/:id/rating", consumer.RateAppointment)

	profile := app.Group("/profile", middleware.Protected())
	profile.Get("/", consumer.GetProfile)
	profile.Put("/", consumer.UpdateProfile)
	profile.Post("/picture", consumer.UploadProfilePicture)

	notifications := app.Group("/notifications", middleware.Protected())
	notifications.Get("/", consumer.GetNotifications)
	notifications.Post("/mark-read", consumer.MarkNotificationsRead)
}
