package staff

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/models"
)

func appointmentWithHistory(id uint, status models.AppointmentStatus, changedAt time.Time) models.Appointment {
	return models.Appointment{
		Model:  gorm.Model{ID: id},
		Status: status,
		User:   models.User{Name: fmt.Sprintf("Citizen %d", id)},
		Service: models.Service{
			Name: fmt.Sprintf("Service %d", id),
		},
		StatusHistory: models.StatusHistory{
			{Status: status, ChangedAt: changedAt},
		},
	}
}

func TestBuildRecentActivityOrdersNewestFirst(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	appointments := []models.Appointment{
		appointmentWithHistory(1, models.StatusConfirmed, now.Add(-2*time.Hour)),
		appointmentWithHistory(2, models.StatusCompleted, now.Add(-5*time.Minute)),
		appointmentWithHistory(3, models.StatusInProgress, now.Add(-1*time.Hour)),
	}

	items := BuildRecentActivity(appointments, now)

	require.Len(t, items, 3)
	assert.Equal(t, uint(2), items[0].AppointmentID)
	assert.Equal(t, uint(3), items[1].AppointmentID)
	assert.Equal(t, uint(1), items[2].AppointmentID)
}

func TestBuildRecentActivityMessagesAndTimeAgo(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		status  models.AppointmentStatus
		message string
	}{
		{models.StatusPending, "New appointment booked"},
		{models.StatusConfirmed, "Appointment confirmed"},
		{models.StatusInProgress, "Processing started"},
		{models.StatusCompleted, "Appointment completed"},
		{models.StatusCancelled, "Appointment cancelled"},
		{models.StatusRejected, "Appointment rejected"},
	}

	for _, tt := range tests {
		items := BuildRecentActivity([]models.Appointment{
			appointmentWithHistory(1, tt.status, now.Add(-10*time.Minute)),
		}, now)
		require.Len(t, items, 1)
		assert.Equal(t, tt.message, items[0].Message, string(tt.status))
		assert.Equal(t, "10 minutes ago", items[0].TimeAgo)
	}
}

func TestBuildRecentActivityCapsAtTen(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	appointments := make([]models.Appointment, 0, 15)
	for i := 1; i <= 15; i++ {
		appointments = append(appointments,
			appointmentWithHistory(uint(i), models.StatusConfirmed, now.Add(-time.Duration(i)*time.Minute)))
	}

	items := BuildRecentActivity(appointments, now)

	require.Len(t, items, 10)
	// The ten most recent entries survive, which are the lowest offsets.
	assert.Equal(t, uint(1), items[0].AppointmentID)
	assert.Equal(t, uint(10), items[9].AppointmentID)
}

func TestBuildRecentActivityFallsBackToBookingTime(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	a := models.Appointment{
		Model:  gorm.Model{ID: 9, CreatedAt: now.Add(-3 * time.Minute)},
		Status: models.StatusPending,
		User:   models.User{Name: "Citizen"},
	}

	items := BuildRecentActivity([]models.Appointment{a}, now)

	require.Len(t, items, 1)
	assert.Equal(t, models.StatusPending, items[0].Status)
	assert.Equal(t, "New appointment booked", items[0].Message)
	assert.Equal(t, now.Add(-3*time.Minute), items[0].Timestamp)
}

func TestUpcomingAppointments(t *testing.T) {
	now := time.Date(2026, 8, 24, 11, 0, 0, 0, time.UTC)

	slotted := func(id uint, status models.AppointmentStatus, slot string) models.Appointment {
		return models.Appointment{
			Model:    gorm.Model{ID: id},
			Status:   status,
			TimeSlot: slot,
		}
	}

	appointments := []models.Appointment{
		slotted(1, models.StatusConfirmed, "09:30 AM"), // already past
		slotted(2, models.StatusPending, "02:00 PM"),
		slotted(3, models.StatusConfirmed, "11:30 AM"),
		slotted(4, models.StatusCompleted, "01:00 PM"), // wrong status
		slotted(5, models.StatusConfirmed, "12:30 PM"),
	}

	upcoming := upcomingAppointments(appointments, now)

	require.Len(t, upcoming, 3)
	assert.Equal(t, uint(3), upcoming[0].ID)
	assert.Equal(t, uint(5), upcoming[1].ID)
	assert.Equal(t, uint(2), upcoming[2].ID)
}

func TestUpcomingAppointmentsCapsAtFive(t *testing.T) {
	now := time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)

	appointments := make([]models.Appointment, 0, 8)
	for i, slot := range []string{"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM", "12:00 PM", "12:30 PM"} {
		appointments = append(appointments, models.Appointment{
			Model:    gorm.Model{ID: uint(i + 1)},
			Status:   models.StatusPending,
			TimeSlot: slot,
		})
	}

	upcoming := upcomingAppointments(appointments, now)

	require.Len(t, upcoming, 5)
	assert.Equal(t, "09:00 AM", upcoming[0].TimeSlot)
	assert.Equal(t, "11:00 AM", upcoming[4].TimeSlot)
}

func TestDateRangeBounds(t *testing.T) {
	now := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)
	today := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	from, to := dateRangeBounds("today", now)
	assert.Equal(t, today, from)
	assert.Equal(t, today.AddDate(0, 0, 1), to)

	from, to = dateRangeBounds("tomorrow", now)
	assert.Equal(t, today.AddDate(0, 0, 1), from)
	assert.Equal(t, today.AddDate(0, 0, 2), to)

	from, to = dateRangeBounds("week", now)
	assert.Equal(t, today, from)
	assert.Equal(t, today.AddDate(0, 0, 7), to)

	from, _ = dateRangeBounds("all", now)
	assert.True(t, from.IsZero())
}
