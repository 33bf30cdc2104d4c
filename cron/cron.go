package cron

import (
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/utils"
)

// StartReminderScheduler runs the appointment reminder job every minute and
// returns the scheduler so callers can stop it on shutdown.
func StartReminderScheduler() *cron.Cron {
	c := cron.New()
	if _, err := c.AddFunc("* * * * *", sendUpcomingReminders); err != nil {
		logrus.WithError(err).Error("Failed to schedule reminder job")
		return c
	}
	c.Start()
	logrus.Info("Reminder scheduler started")
	return c
}

// sendUpcomingReminders notifies citizens whose confirmed appointment starts
// in roughly an hour. The window is 55 to 65 minutes ahead so a slot is
// caught exactly once by the minutely run.
func sendUpcomingReminders() {
	now := utils.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var appointments []models.Appointment
	err := db.DB.Preload("Service").Preload("Center").
		Where("status = ? AND appointment_date >= ? AND appointment_date < ?",
			models.StatusConfirmed, today, today.AddDate(0, 0, 1)).
		Find(&appointments).Error
	if err != nil {
		logrus.WithError(err).Error("Reminder job failed to load appointments")
		return
	}

	for _, a := range appointments {
		slotAt, err := utils.SlotTime(a.AppointmentDate, a.TimeSlot)
		if err != nil {
			logrus.WithError(err).WithField("appointment_id", a.ID).Warn("Skipping appointment with bad time slot")
			continue
		}

		lead := slotAt.Sub(now)
		if lead < 55*time.Minute || lead > 65*time.Minute {
			continue
		}

		if alreadyReminded(a.UserID, a.ID) {
			continue
		}

		utils.NotifyUser(a.UserID, "reminder",
			"Appointment reminder",
			"Your "+a.Service.Name+" appointment at "+a.Center.Name+" starts at "+a.TimeSlot+" today.",
			models.JSONMap{"appointmentId": a.ID})
	}
}

// alreadyReminded guards against duplicate reminders when consecutive runs
// see the same appointment inside the window.
func alreadyReminded(userID, appointmentID uint) bool {
	var count int64
	err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND meta->>'appointmentId' = ?",
			userID, "reminder", strconv.Itoa(int(appointmentID))).
		Count(&count).Error
	if err != nil {
		logrus.WithError(err).Warn("Reminder dedupe check failed")
		return false
	}
	return count > 0
}
