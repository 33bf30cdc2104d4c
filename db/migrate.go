package db

import (
	"github.com/sirupsen/logrus"

	"github.com/akshayaportal/services-backend/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.User{},
		&models.Staff{},
		&models.AkshayaCenter{},
		&models.Service{},
		&models.Appointment{},
		&models.Notification{},
		&models.Holiday{},
	)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	logrus.Info("Migrations applied")
}
