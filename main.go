package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"

	"github.com/akshayaportal/services-backend/cron"
	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/redis"
	"github.com/akshayaportal/services-backend/routes"
)

func main() {
	app := fiber.New()
	db.Migrate()
	redis.InitRedis()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Akshaya Services API")
	})
	app.Static("/uploads", "./uploads")

	routes.SetupAuthRoutes(app)
	routes.SetupConsumerRoutes(app)
	routes.SetupStaffRoutes(app)
	routes.SetupAdminRoutes(app)

	scheduler := cron.StartReminderScheduler()
	defer scheduler.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	if err := app.Listen(":" + port); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}
}
