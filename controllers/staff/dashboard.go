package staff

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/middleware"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/redis"
	"github.com/akshayaportal/services-backend/utils"
)

const dashboardCacheTTL = 60 * time.Second

// ActivityItem is one row of the dashboard's recent-activity feed, derived
// from the latest status-history entry of an appointment.
type ActivityItem struct {
	AppointmentID uint                     `json:"appointmentId"`
	UserName      string                   `json:"userName"`
	ServiceName   string                   `json:"serviceName"`
	Status        models.AppointmentStatus `json:"status"`
	Message       string                   `json:"message"`
	TimeAgo       string                   `json:"timeAgo"`
	Timestamp     time.Time                `json:"timestamp"`
}

var activityMessages = map[models.AppointmentStatus]string{
	models.StatusPending:    "New appointment booked",
	models.StatusConfirmed:  "Appointment confirmed",
	models.StatusInProgress: "Processing started",
	models.StatusCompleted:  "Appointment completed",
	models.StatusCancelled:  "Appointment cancelled",
	models.StatusRejected:   "Appointment rejected",
}

// BuildRecentActivity turns appointments into the activity feed: one item per
// appointment from its latest history entry (falling back to the booking time
// for appointments without history), newest first, capped at ten.
func BuildRecentActivity(appointments []models.Appointment, now time.Time) []ActivityItem {
	items := make([]ActivityItem, 0, len(appointments))
	for _, a := range appointments {
		status := a.Status
		timestamp := a.CreatedAt
		if latest := a.StatusHistory.Latest(); latest != nil {
			status = latest.Status
			timestamp = latest.ChangedAt
		}

		message, ok := activityMessages[status]
		if !ok {
			message = "Appointment updated"
		}

		items = append(items, ActivityItem{
			AppointmentID: a.ID,
			UserName:      a.User.Name,
			ServiceName:   a.Service.Name,
			Status:        status,
			Message:       message,
			TimeAgo:       utils.TimeAgo(timestamp, now),
			Timestamp:     timestamp,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})

	if len(items) > 10 {
		items = items[:10]
	}
	return items
}

// GetDashboard aggregates the center's live view: today's counts, revenue,
// average rating, the next five appointments and recent activity. Responses
// are cached in Redis for a minute per center.
func GetDashboard(c *fiber.Ctx) error {
	centerID := middleware.FilterCenterID(c)
	cacheKey := fmt.Sprintf("dashboard:center:%d", centerID)

	if cached := redis.GetCached(cacheKey); cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	now := utils.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	var todayAppointments []models.Appointment
	query := centerScoped(c, db.DB.
		Where("appointments.appointment_date >= ? AND appointments.appointment_date < ?", today, tomorrow))
	err := query.Preload("User").Preload("Service").Find(&todayAppointments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch dashboard data",
			"error":   err.Error(),
		})
	}

	byStatus := map[models.AppointmentStatus]int{}
	var revenue float64
	for _, a := range todayAppointments {
		byStatus[a.Status]++
		if a.Status == models.StatusCompleted && a.Payment.Status == models.PaymentPaid {
			revenue += a.Service.Fee
		}
	}

	// Average rating over every rated appointment of the center.
	var ratedAppointments []models.Appointment
	ratingQuery := centerScoped(c, db.DB.Where("appointments.rating IS NOT NULL"))
	if err := ratingQuery.Find(&ratedAppointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch dashboard data",
			"error":   err.Error(),
		})
	}
	var avgRating float64
	if len(ratedAppointments) > 0 {
		var sum float64
		for _, a := range ratedAppointments {
			sum += a.Rating.Score
		}
		avgRating = sum / float64(len(ratedAppointments))
	}

	upcoming := upcomingAppointments(todayAppointments, now)

	activity := BuildRecentActivity(todayAppointments, now)

	payload := fiber.Map{
		"success": true,
		"data": fiber.Map{
			"today": fiber.Map{
				"total":      len(todayAppointments),
				"pending":    byStatus[models.StatusPending],
				"confirmed":  byStatus[models.StatusConfirmed],
				"inProgress": byStatus[models.StatusInProgress],
				"completed":  byStatus[models.StatusCompleted],
				"cancelled":  byStatus[models.StatusCancelled],
			},
			"revenue":        revenue,
			"averageRating":  avgRating,
			"ratedCount":     len(ratedAppointments),
			"upcoming":       upcoming,
			"recentActivity": activity,
		},
	}

	if encoded, err := json.Marshal(payload); err == nil {
		redis.SetCached(cacheKey, string(encoded), dashboardCacheTTL)
	} else {
		logrus.WithError(err).Warn("Failed to encode dashboard payload for cache")
	}

	return c.JSON(payload)
}

// upcomingAppointments picks today's next five pending or confirmed
// appointments whose slot has not passed, ordered by slot time.
func upcomingAppointments(appointments []models.Appointment, now time.Time) []models.Appointment {
	type slotted struct {
		appointment models.Appointment
		at          time.Time
	}

	candidates := make([]slotted, 0, len(appointments))
	for _, a := range appointments {
		if a.Status != models.StatusPending && a.Status != models.StatusConfirmed {
			continue
		}
		at, err := utils.SlotTime(now, a.TimeSlot)
		if err != nil {
			continue
		}
		if at.Before(now) {
			continue
		}
		a.User.Password = ""
		candidates = append(candidates, slotted{appointment: a, at: at})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].at.Before(candidates[j].at)
	})

	if len(candidates) > 5 {
		candidates = candidates[:5]
	}

	upcoming := make([]models.Appointment, 0, len(candidates))
	for _, s := range candidates {
		upcoming = append(upcoming, s.appointment)
	}
	return upcoming
}
