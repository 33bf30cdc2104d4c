package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/akshayaportal/services-backend/controllers"
	"github.com/akshayaportal/services-backend/middleware"
)

// SetupAuthRoutes registers citizen authentication endpoints.
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	auth.Post("/register", controllers.Register)
	auth.Post("/login", controllers.Login)
	auth.Post("/refresh", controllers.RefreshToken)
	auth.Post("/logout", controllers.Logout)
	auth.Get("/me", middleware.Protected(), controllers.GetUserProfile)
}
