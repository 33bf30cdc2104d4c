package staff

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/utils"
)

// periodBounds resolves a named analytics period to its current and previous
// windows, each [from, to).
func periodBounds(period string, now time.Time) (curFrom, curTo, prevFrom, prevTo time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case "month":
		curFrom = today.AddDate(0, -1, 0)
		prevFrom = today.AddDate(0, -2, 0)
	case "year":
		curFrom = today.AddDate(-1, 0, 0)
		prevFrom = today.AddDate(-2, 0, 0)
	default: // week
		curFrom = today.AddDate(0, 0, -7)
		prevFrom = today.AddDate(0, 0, -14)
	}
	curTo = today.AddDate(0, 0, 1)
	prevTo = curFrom
	return
}

// percentChange returns the change from previous to current, 0 when there is
// no baseline.
func percentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// GetAnalytics computes the center's performance view for a period: volume
// against the previous period, completion rate, processing time, revenue,
// service distribution and the daily booking trend.
func GetAnalytics(c *fiber.Ctx) error {
	period := c.Query("period", "week")
	now := utils.Now()
	curFrom, curTo, prevFrom, prevTo := periodBounds(period, now)

	var current []models.Appointment
	query := centerScoped(c, db.DB.
		Where("appointments.appointment_date >= ? AND appointments.appointment_date < ?", curFrom, curTo))
	if err := query.Preload("Service").Find(&current).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch analytics",
			"error":   err.Error(),
		})
	}

	var previousTotal int64
	prevQuery := centerScoped(c, db.DB.Model(&models.Appointment{}).
		Where("appointments.appointment_date >= ? AND appointments.appointment_date < ?", prevFrom, prevTo))
	if err := prevQuery.Count(&previousTotal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch analytics",
			"error":   err.Error(),
		})
	}

	var (
		completed       int
		cancelled       int
		revenue         float64
		durationSum     int
		durationSamples int
	)
	serviceCounts := map[string]int{}
	dailyCounts := map[string]int{}

	for _, a := range current {
		switch a.Status {
		case models.StatusCompleted:
			completed++
			if a.Payment.Status == models.PaymentPaid {
				revenue += a.Service.Fee
			}
			if a.ActualDuration != nil {
				durationSum += *a.ActualDuration
				durationSamples++
			}
		case models.StatusCancelled, models.StatusRejected:
			cancelled++
		}
		serviceCounts[a.Service.Name]++
		dailyCounts[a.AppointmentDate.Format("2006-01-02")]++
	}

	total := len(current)
	var completionRate float64
	if total > 0 {
		completionRate = float64(completed) / float64(total) * 100
	}
	var avgProcessingMinutes float64
	if durationSamples > 0 {
		avgProcessingMinutes = float64(durationSum) / float64(durationSamples)
	}

	type servicePoint struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	distribution := make([]servicePoint, 0, len(serviceCounts))
	for name, count := range serviceCounts {
		distribution = append(distribution, servicePoint{Name: name, Count: count})
	}

	type trendPoint struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	trend := make([]trendPoint, 0)
	for d := curFrom; d.Before(curTo); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		trend = append(trend, trendPoint{Date: key, Count: dailyCounts[key]})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"period": period,
			"totals": fiber.Map{
				"appointments":  total,
				"completed":     completed,
				"cancelled":     cancelled,
				"revenue":       revenue,
				"previousTotal": previousTotal,
				"change":        percentChange(float64(total), float64(previousTotal)),
			},
			"completionRate":       completionRate,
			"avgProcessingMinutes": avgProcessingMinutes,
			"serviceDistribution":  distribution,
			"dailyTrend":           trend,
		},
	})
}
