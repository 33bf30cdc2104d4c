package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshayaportal/services-backend/models"
)

func TestParseTimeSlot(t *testing.T) {
	tests := []struct {
		slot   string
		hour   int
		minute int
	}{
		{"09:00 AM", 9, 0},
		{"12:00 PM", 12, 0},
		{"12:30 AM", 0, 30},
		{"01:30 PM", 13, 30},
		{"04:30 PM", 16, 30},
	}
	for _, tt := range tests {
		hour, minute, err := ParseTimeSlot(tt.slot)
		require.NoError(t, err, tt.slot)
		assert.Equal(t, tt.hour, hour, tt.slot)
		assert.Equal(t, tt.minute, minute, tt.slot)
	}

	for _, bad := range []string{"", "13:00", "09:00 XX", "late PM", "25:00 PM"} {
		_, _, err := ParseTimeSlot(bad)
		assert.Error(t, err, bad)
	}
}

func TestSlotTime(t *testing.T) {
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	at, err := SlotTime(date, "02:30 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 24, 14, 30, 0, 0, time.UTC), at)
}

func TestAllTimeSlotsGrid(t *testing.T) {
	require.Len(t, AllTimeSlots, 16)
	assert.Equal(t, "09:00 AM", AllTimeSlots[0])
	assert.Equal(t, "04:30 PM", AllTimeSlots[len(AllTimeSlots)-1])

	// Every slot parses and slots are 30 minutes apart.
	prev := -1
	for _, slot := range AllTimeSlots {
		hour, minute, err := ParseTimeSlot(slot)
		require.NoError(t, err, slot)
		total := hour*60 + minute
		if prev >= 0 {
			assert.Equal(t, prev+30, total, slot)
		}
		prev = total
	}
}

func TestCanModifyAt(t *testing.T) {
	appointmentDate := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	before := time.Date(2026, 8, 24, 8, 59, 0, 0, time.UTC)
	after := time.Date(2026, 8, 24, 9, 5, 0, 0, time.UTC)
	exactly := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	dayBefore := time.Date(2026, 8, 23, 23, 0, 0, 0, time.UTC)

	assert.True(t, CanModifyAt(models.StatusPending, appointmentDate, before))
	assert.True(t, CanModifyAt(models.StatusConfirmed, appointmentDate, before))
	assert.True(t, CanModifyAt(models.StatusConfirmed, appointmentDate, dayBefore))

	assert.False(t, CanModifyAt(models.StatusConfirmed, appointmentDate, after), "past cutoff")
	assert.False(t, CanModifyAt(models.StatusConfirmed, appointmentDate, exactly), "cutoff is exclusive")

	assert.False(t, CanModifyAt(models.StatusCompleted, appointmentDate, before))
	assert.False(t, CanModifyAt(models.StatusInProgress, appointmentDate, before))
	assert.False(t, CanModifyAt(models.StatusCancelled, appointmentDate, before))
}

func TestIsSecondSaturday(t *testing.T) {
	// August 2026 starts on a Saturday: second Saturday is the 8th.
	assert.False(t, IsSecondSaturday(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsSecondSaturday(time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsSecondSaturday(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsSecondSaturday(time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC)), "not a Saturday")

	// September 2026 starts on a Tuesday: Saturdays fall on 5, 12, 19.
	assert.False(t, IsSecondSaturday(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsSecondSaturday(time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsSecondSaturday(time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC)))
}

func TestStandingHolidayReason(t *testing.T) {
	reason, closed := StandingHolidayReason(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	assert.True(t, closed)
	assert.Equal(t, "Sunday", reason)

	reason, closed = StandingHolidayReason(time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC))
	assert.True(t, closed)
	assert.Equal(t, "Second Saturday", reason)

	_, closed = StandingHolidayReason(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	assert.False(t, closed)
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Just now", TimeAgo(now.Add(-30*time.Second), now))
	assert.Equal(t, "5 minutes ago", TimeAgo(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2 hours ago", TimeAgo(now.Add(-2*time.Hour), now))
	assert.Equal(t, "3 days ago", TimeAgo(now.Add(-72*time.Hour), now))
}
