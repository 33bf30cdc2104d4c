package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akshayaportal/services-backend/models"
)

// AllTimeSlots is the fixed half-hour booking grid within center working
// hours (9:00 AM to 5:00 PM).
var AllTimeSlots = []string{
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM",
	"12:00 PM", "12:30 PM", "01:00 PM", "01:30 PM", "02:00 PM", "02:30 PM",
	"03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM",
}

// MaxAdvanceBookingDays caps how far ahead citizens can book.
const MaxAdvanceBookingDays = 3

// ParseTimeSlot converts a slot label like "01:30 PM" to 24h hour and minute.
func ParseTimeSlot(slot string) (hour, minute int, err error) {
	fields := strings.Fields(strings.TrimSpace(slot))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("invalid time slot %q", slot)
	}

	parts := strings.SplitN(fields[0], ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time slot %q", slot)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time slot %q", slot)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time slot %q", slot)
	}

	switch strings.ToUpper(fields[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, 0, fmt.Errorf("invalid time slot %q", slot)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time slot %q", slot)
	}
	return hour, minute, nil
}

// SlotTime combines an appointment date with its slot label into a concrete
// point in time, in the date's location.
func SlotTime(date time.Time, slot string) (time.Time, error) {
	hour, minute, err := ParseTimeSlot(slot)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// EditCutoff is the moment a citizen loses the right to edit or cancel:
// 9:00 AM on the appointment day.
func EditCutoff(appointmentDate time.Time) time.Time {
	d := appointmentDate
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, d.Location())
}

// CanModifyAt reports whether the citizen may still edit or cancel an
// appointment at now: status must be pending or confirmed and now must be
// strictly before the day-of 9 AM cutoff. Past the cutoff only the
// reschedule path remains.
func CanModifyAt(status models.AppointmentStatus, appointmentDate, now time.Time) bool {
	if status != models.StatusPending && status != models.StatusConfirmed {
		return false
	}
	return now.Before(EditCutoff(appointmentDate))
}

// IsSecondSaturday reports whether d falls on the second Saturday of its
// month, a standing holiday for centers.
func IsSecondSaturday(d time.Time) bool {
	if d.Weekday() != time.Saturday {
		return false
	}
	firstOfMonth := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	firstSatOffset := (int(time.Saturday) - int(firstOfMonth.Weekday()) + 7) % 7
	secondSat := 1 + firstSatOffset + 7
	return d.Day() == secondSat
}

// StandingHolidayReason returns the reason when d is a Sunday or second
// Saturday, the two standing closure rules. Manual holidays are checked
// against the database separately.
func StandingHolidayReason(d time.Time) (string, bool) {
	if d.Weekday() == time.Sunday {
		return "Sunday", true
	}
	if IsSecondSaturday(d) {
		return "Second Saturday", true
	}
	return "", false
}
