package consumer

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/utils"
)

func currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok
}

// activeStatuses are the statuses that hold a slot against double booking.
var activeStatuses = []models.AppointmentStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusInProgress,
}

// parseBookingDate accepts "2006-01-02" and anchors it in IST.
func parseBookingDate(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("Invalid date. Use YYYY-MM-DD")
	}
	ist := utils.Now().Location()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, ist), nil
}

// validateBookingDate enforces the booking window and holiday rules: not in
// the past, at most 3 days ahead, not a Sunday, second Saturday or declared
// holiday.
func validateBookingDate(date time.Time) error {
	now := utils.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if date.Before(today) {
		return errors.New("Cannot book appointments in the past")
	}
	if date.After(today.AddDate(0, 0, utils.MaxAdvanceBookingDays)) {
		return errors.New("Appointments can only be booked up to 3 days in advance")
	}
	if reason, closed := utils.StandingHolidayReason(date); closed {
		return errors.New("Center is closed on this date (" + reason + ")")
	}

	var holiday models.Holiday
	err := db.DB.Where("date >= ? AND date < ?", date, date.AddDate(0, 0, 1)).First(&holiday).Error
	if err == nil {
		if holiday.Reason != "" {
			return errors.New("Center is closed on this date (" + holiday.Reason + ")")
		}
		return errors.New("Center is closed on this date")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func validTimeSlot(slot string) bool {
	for _, s := range utils.AllTimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// slotTaken reports whether another active appointment already holds the slot
// at the center. excludeID skips the appointment being edited.
func slotTaken(centerID uint, date time.Time, slot string, excludeID uint) (bool, error) {
	var count int64
	query := db.DB.Model(&models.Appointment{}).
		Where("center_id = ? AND appointment_date >= ? AND appointment_date < ? AND time_slot = ? AND status IN ?",
			centerID, date, date.AddDate(0, 0, 1), slot, activeStatuses)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// appointmentView adds the citizen's action flags to an appointment.
type appointmentView struct {
	models.Appointment
	CanEdit   bool `json:"canEdit"`
	CanCancel bool `json:"canCancel"`
}

func toView(a models.Appointment, now time.Time) appointmentView {
	canModify := utils.CanModifyAt(a.Status, a.AppointmentDate, now)
	a.User.Password = ""
	a.StaffNotes = nil // internal notes never leave the staff surface
	return appointmentView{Appointment: a, CanEdit: canModify, CanCancel: canModify}
}

// GetAppointments lists the citizen's own appointments, newest first, with
// edit/cancel flags evaluated against the day-of 9 AM cutoff.
func GetAppointments(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User ID not found in context",
		})
	}

	query := db.DB.Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	err := query.Preload("Service").Preload("Center").
		Order("appointment_date DESC, created_at DESC").
		Find(&appointments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch appointments",
			"error":   err.Error(),
		})
	}

	now := utils.Now()
	views := make([]appointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, toView(a, now))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    views,
	})
}

// GetAppointment returns one of the citizen's appointments.
func GetAppointment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User ID not found in context",
		})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}

	var appointment models.Appointment
	err = db.DB.Where("id = ? AND user_id = ?", id, userID).
		Preload("Service").Preload("Center").
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Appointment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch appointment",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toView(appointment, utils.Now()),
	})
}

// CreateAppointment books a slot at a center: the center must be active and
// offer the service, the date must pass the booking window and holiday rules,
// and the slot must be free and within the center's daily cap.
func CreateAppointment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User ID not found in context",
		})
	}

	type BookingInput struct {
		ServiceID uint   `json:"serviceId"`
		CenterID  uint   `json:"centerId"`
		Date      string `json:"date"`
		TimeSlot  string `json:"timeSlot"`
		Notes     string `json:"notes"`
	}
	input := new(BookingInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}
	if input.ServiceID == 0 || input.CenterID == 0 || input.Date == "" || input.TimeSlot == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "serviceId, centerId, date and timeSlot are required",
		})
	}

	if !validTimeSlot(input.TimeSlot) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid time slot",
		})
	}

	date, err := parseBookingDate(input.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if err := validateBookingDate(date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var center models.AkshayaCenter
	err = db.DB.Preload("Services").Where("id = ? AND status = ?", input.CenterID, models.CenterActive).
		First(&center).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Center not found or not active",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch center",
			"error":   err.Error(),
		})
	}
	if !center.HasService(input.ServiceID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "This service is not available at the selected center",
		})
	}

	var service models.Service
	if err := db.DB.Where("id = ? AND is_active = ?", input.ServiceID, true).First(&service).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Service not found",
		})
	}

	taken, err := slotTaken(center.ID, date, input.TimeSlot, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to check slot availability",
			"error":   err.Error(),
		})
	}
	if taken {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "This time slot is already booked",
		})
	}

	var dayCount int64
	err = db.DB.Model(&models.Appointment{}).
		Where("center_id = ? AND appointment_date >= ? AND appointment_date < ? AND status IN ?",
			center.ID, date, date.AddDate(0, 0, 1), activeStatuses).
		Count(&dayCount).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to check center capacity",
			"error":   err.Error(),
		})
	}
	if center.MaxAppointmentsPerDay > 0 && dayCount >= int64(center.MaxAppointmentsPerDay) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "The center is fully booked on this date",
		})
	}

	appointment := models.Appointment{
		UserID:          userID,
		ServiceID:       service.ID,
		CenterID:        center.ID,
		AppointmentDate: date,
		TimeSlot:        input.TimeSlot,
		Notes:           input.Notes,
		Status:          models.StatusPending,
		StatusHistory: models.StatusHistory{{
			Status:    models.StatusPending,
			ChangedBy: userID,
			ChangedAt: utils.Now(),
			Reason:    "Appointment booked",
		}},
		Payment: models.PaymentInfo{
			Status:   models.PaymentUnpaid,
			Amount:   service.Fee + service.ServiceCharge,
			Currency: "INR",
		},
	}

	if err := db.DB.Create(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create appointment",
			"error":   err.Error(),
		})
	}

	go utils.NotifyUser(userID, "appointment",
		"Appointment booked",
		"Your "+service.Name+" appointment at "+center.Name+" on "+date.Format("02 Jan 2006")+" at "+input.TimeSlot+" has been booked.",
		models.JSONMap{"appointmentId": appointment.ID})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Appointment booked successfully",
		"data":    toView(appointment, utils.Now()),
	})
}

// applyDateSlotChange validates and applies a new date/slot to the citizen's
// appointment, shared by the edit and reschedule paths.
func applyDateSlotChange(appointment *models.Appointment, rawDate, timeSlot string) (int, error) {
	date := appointment.AppointmentDate
	if rawDate != "" {
		parsed, err := parseBookingDate(rawDate)
		if err != nil {
			return fiber.StatusBadRequest, err
		}
		date = parsed
	}
	slot := appointment.TimeSlot
	if timeSlot != "" {
		if !validTimeSlot(timeSlot) {
			return fiber.StatusBadRequest, errors.New("Invalid time slot")
		}
		slot = timeSlot
	}

	if err := validateBookingDate(date); err != nil {
		return fiber.StatusBadRequest, err
	}

	taken, err := slotTaken(appointment.CenterID, date, slot, appointment.ID)
	if err != nil {
		return fiber.StatusInternalServerError, err
	}
	if taken {
		return fiber.StatusConflict, errors.New("This time slot is already booked")
	}

	appointment.AppointmentDate = date
	appointment.TimeSlot = slot
	return 0, nil
}

// UpdateAppointment edits date, time slot or notes. Allowed only while the
// status is pending or confirmed and before 9 AM on the appointment day.
func UpdateAppointment(c *fiber.Ctx) error {
	return updateAppointment(c, false)
}

// RescheduleAppointment is the same update path without the 9 AM cutoff,
// for appointments whose edit window has passed.
func RescheduleAppointment(c *fiber.Ctx) error {
	return updateAppointment(c, true)
}

func updateAppointment(c *fiber.Ctx, reschedule bool) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User ID not found in context",
		})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}

	type UpdateInput struct {
		Date     string `json:"date"`
		TimeSlot string `json:"timeSlot"`
		Notes    string `json:"notes"`
	}
	input := new(UpdateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	var appointment models.Appointment
	err = db.DB.Where("id = ? AND user_id = ?", id, userID).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Appointment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch appointment",
			"error":   err.Error(),
		})
	}

	if appointment.Status != models.StatusPending && appointment.Status != models.StatusConfirmed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Only pending or confirmed appointments can be changed",
		})
	}

	now := utils.Now()
	if !reschedule && !utils.CanModifyAt(appointment.Status, appointment.AppointmentDate, now) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Appointments can no longer be edited after 9:00 AM on the appointment day. Use reschedule instead.",
		})
	}

	if input.Date != "" || input.TimeSlot != "" {
		if status, err := applyDateSlotChange(&appointment, input.Date, input.TimeSlot); err != nil {
			body := fiber.Map{"success": false, "message": err.Error()}
			if status == fiber.StatusInternalServerError {
				body["message"] = "Failed to update appointment"
				body["error"] = err.Error()
			}
			return c.Status(status).JSON(body)
		}

		reason := "Edited by citizen"
		if reschedule {
			reason = "Rescheduled by citizen"
		}
		appointment.StatusHistory = append(appointment.StatusHistory, models.StatusChange{
			Status:    appointment.Status,
			ChangedBy: userID,
			ChangedAt: now,
			Reason:    reason,
		})
	}

	if input.Notes != "" {
		appointment.Notes = input.Notes
	}

	if err := db.DB.Save(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update appointment",
			"error":   err.Error(),
		})
	}

	message := "Appointment updated successfully"
	if reschedule {
		message = "Appointment rescheduled successfully"
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    toView(appointment, now),
	})
}

// CancelAppointment cancels the citizen's appointment before the 9 AM day-of
// cutoff.
func CancelAppointment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User ID not found in context",
		})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}

	var appointment models.Appointment
	err = db.DB.Where("id = ? AND user_id = ?", id, userID).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Appointment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch appointment",
			"error":   err.Error(),
		})
	}

	now := utils.Now()
	if !utils.CanModifyAt(appointment.Status, appointment.AppointmentDate, now) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Appointments can no longer be cancelled after 9:00 AM on the appointment day",
		})
	}

	type CancelInput struct {
		Reason string `json:"reason"`
	}
	input := new(CancelInput)
	_ = c.BodyParser(input)

	reason := input.Reason
	if reason == "" {
		reason = "Cancelled by citizen"
	}

	if err := appointment.ChangeStatus(models.StatusCancelled, models.StatusChange{
		ChangedBy: userID,
		ChangedAt: now,
		Reason:    reason,
	}); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if err := db.DB.Save(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to cancel appointment",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Appointment cancelled successfully",
	})
}

// GetAvailableSlots returns the slot grid for a center and date with booked
// slots marked, or the closure reason on holidays.
func GetAvailableSlots(c *fiber.Ctx) error {
	centerID, err := strconv.Atoi(c.Query("centerId"))
	if err != nil || centerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "centerId query parameter is required",
		})
	}

	date, err := parseBookingDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if err := validateBookingDate(date); err != nil {
		return c.JSON(fiber.Map{
			"success": true,
			"message": err.Error(),
			"data":    fiber.Map{"slots": []fiber.Map{}, "closed": true},
		})
	}

	var booked []models.Appointment
	err = db.DB.Select("time_slot").
		Where("center_id = ? AND appointment_date >= ? AND appointment_date < ? AND status IN ?",
			centerID, date, date.AddDate(0, 0, 1), activeStatuses).
		Find(&booked).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch slot availability",
			"error":   err.Error(),
		})
	}

	bookedSet := map[string]bool{}
	for _, a := range booked {
		bookedSet[a.TimeSlot] = true
	}

	slots := make([]fiber.Map, 0, len(utils.AllTimeSlots))
	for _, slot := range utils.AllTimeSlots {
		slots = append(slots, fiber.Map{
			"time":      slot,
			"available": !bookedSet[slot],
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"slots": slots, "closed": false},
	})
}
