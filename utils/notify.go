package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/models"
)

// StatusMessages are the citizen-facing texts for staff-driven status
// changes. Statuses without an entry produce no notification.
var StatusMessages = map[models.AppointmentStatus]string{
	models.StatusConfirmed:  "Your appointment has been confirmed.",
	models.StatusInProgress: "Your appointment is now in progress.",
	models.StatusCompleted:  "Your appointment has been completed.",
	models.StatusCancelled:  "Your appointment has been cancelled.",
	models.StatusRejected:   "Your appointment has been rejected.",
}

// NotifyUser writes a notification row and best-effort emails the user. Both
// writes are independent of the caller's primary operation: failures are
// logged and never propagated.
func NotifyUser(userID uint, notifType, title, message string, meta models.JSONMap) {
	notification := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Meta:    meta,
	}
	if err := db.DB.Create(&notification).Error; err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to create notification")
		return
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Notification email skipped, user not found")
		return
	}

	body := fmt.Sprintf("<p>Dear %s,</p><p>%s</p><p>Best regards,<br>Akshaya Services</p>", user.Name, message)
	if err := SendEmail(user.Email, title, body); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to send notification email")
	}
}
