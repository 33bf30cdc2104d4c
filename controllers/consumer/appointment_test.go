package consumer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/models"
)

func TestValidTimeSlot(t *testing.T) {
	assert.True(t, validTimeSlot("09:00 AM"))
	assert.True(t, validTimeSlot("04:30 PM"))
	assert.False(t, validTimeSlot("05:00 PM"), "after the last slot")
	assert.False(t, validTimeSlot("9:00 AM"), "labels are zero padded")
	assert.False(t, validTimeSlot(""))
}

func TestToViewFlags(t *testing.T) {
	appointmentDate := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	a := models.Appointment{
		Model:           gorm.Model{ID: 1},
		Status:          models.StatusConfirmed,
		AppointmentDate: appointmentDate,
		StaffNotes: models.StaffNoteList{
			{AuthorID: 3, Content: "internal"},
		},
		User: models.User{Password: "hash"},
	}

	view := toView(a, time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC))
	assert.True(t, view.CanEdit)
	assert.True(t, view.CanCancel)
	assert.Empty(t, view.User.Password)
	assert.Nil(t, view.StaffNotes, "internal notes stay on the staff surface")

	view = toView(a, time.Date(2026, 8, 24, 9, 5, 0, 0, time.UTC))
	assert.False(t, view.CanEdit, "past the 9 AM cutoff")
	assert.False(t, view.CanCancel)

	a.Status = models.StatusCompleted
	view = toView(a, time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC))
	assert.False(t, view.CanEdit)
	assert.False(t, view.CanCancel)
}
