package staff

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/middleware"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/utils"
)

// centerScoped applies the center filter set by middleware to an appointment
// query. Admins see every center.
func centerScoped(c *fiber.Ctx, query *gorm.DB) *gorm.DB {
	if centerID := middleware.FilterCenterID(c); centerID != 0 {
		query = query.Where("appointments.center_id = ?", centerID)
	}
	return query
}

// dateRangeBounds resolves a named range to [from, to) in IST. The zero times
// mean no bound.
func dateRangeBounds(dateRange string, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch dateRange {
	case "today":
		return today, today.AddDate(0, 0, 1)
	case "tomorrow":
		return today.AddDate(0, 0, 1), today.AddDate(0, 0, 2)
	case "week":
		return today, today.AddDate(0, 0, 7)
	case "month":
		return today, today.AddDate(0, 1, 0)
	default:
		return time.Time{}, time.Time{}
	}
}

// GetAppointments lists the center's appointments with pagination and the
// dashboard filters: status, dateRange, serviceType and free-text search over
// the citizen's name and email.
func GetAppointments(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := db.DB.Model(&models.Appointment{}).
		Joins("JOIN users ON users.id = appointments.user_id").
		Joins("JOIN services ON services.id = appointments.service_id")
	query = centerScoped(c, query)

	if status := c.Query("status"); status != "" && status != "all" {
		if !models.IsValidStatus(models.AppointmentStatus(status)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid status filter. Valid statuses are: " + models.ValidStatusNames(),
			})
		}
		query = query.Where("appointments.status = ?", status)
	}

	if dateRange := c.Query("dateRange"); dateRange != "" && dateRange != "all" {
		from, to := dateRangeBounds(dateRange, utils.Now())
		if !from.IsZero() {
			query = query.Where("appointments.appointment_date >= ? AND appointments.appointment_date < ?", from, to)
		}
	}

	if serviceType := c.Query("serviceType"); serviceType != "" && serviceType != "all" {
		query = query.Where("services.category = ?", serviceType)
	}

	if searchTerm := c.Query("searchTerm"); searchTerm != "" {
		pattern := "%" + searchTerm + "%"
		query = query.Where("users.name ILIKE ? OR users.email ILIKE ? OR services.name ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch appointments",
			"error":   err.Error(),
		})
	}

	var appointments []models.Appointment
	err := query.
		Preload("User").Preload("Service").Preload("Center").
		Order("appointments.appointment_date ASC, appointments.created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch appointments",
			"error":   err.Error(),
		})
	}

	for i := range appointments {
		appointments[i].User.Password = ""
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"appointments": appointments,
			"pagination": fiber.Map{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		},
	})
}

// GetAppointmentDetails returns one appointment with its full history, scoped
// to the staff member's center.
func GetAppointmentDetails(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}

	var appointment models.Appointment
	query := centerScoped(c, db.DB.Where("appointments.id = ?", id))
	err = query.Preload("User").Preload("Service").Preload("Center").First(&appointment).Error
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
	appointment.User.Password = ""

	return c.JSON(fiber.Map{
		"success": true,
		"data":    appointment,
	})
}

// UpdateAppointmentStatus drives the appointment workflow. Transitions are
// validated against the fixed table; a history entry is appended and the
// citizen is notified best-effort.
func UpdateAppointmentStatus(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}

	type StatusInput struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
		Notes  string `json:"notes"`
	}
	input := new(StatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}
	if input.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Status is required",
		})
	}

	var appointment models.Appointment
	query := centerScoped(c, db.DB.Where("appointments.id = ?", id))
	if err := query.Preload("Service").First(&appointment).Error; err != nil {
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

	entry := models.StatusChange{
		ChangedBy: authUser.UserID,
		ChangedAt: utils.Now(),
		Reason:    input.Reason,
		StaffName: authUser.Name,
	}
	if session := staffSession(c); session != nil {
		entry.CenterName = session.CenterName
	}

	if err := appointment.ChangeStatus(models.AppointmentStatus(input.Status), entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if input.Notes != "" {
		appointment.ProcessingNotes = input.Notes
	}

	if err := db.DB.Save(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update appointment",
			"error":   err.Error(),
		})
	}

	if appointment.Status == models.StatusCompleted {
		updateStaffStatistics(c, &appointment)
	}

	if message, ok := utils.StatusMessages[appointment.Status]; ok {
		go utils.NotifyUser(appointment.UserID, "status",
			"Appointment update: "+appointment.Service.Name, message,
			models.JSONMap{"appointmentId": appointment.ID, "status": string(appointment.Status)})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Appointment status updated successfully",
		"data":    appointment,
	})
}

// updateStaffStatistics rolls a completed appointment into the staff member's
// aggregates. Failures only log; the status update already succeeded.
func updateStaffStatistics(c *fiber.Ctx, appointment *models.Appointment) {
	session := staffSession(c)
	if session == nil {
		return
	}

	var staffRecord models.Staff
	if err := db.DB.First(&staffRecord, session.StaffID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to load staff record for statistics")
		return
	}

	stats := &staffRecord.Statistics
	handled := float64(stats.TotalAppointmentsHandled)
	if appointment.ActualDuration != nil {
		stats.AverageProcessingTime = (stats.AverageProcessingTime*handled + float64(*appointment.ActualDuration)) / (handled + 1)
	}
	stats.TotalAppointmentsHandled++

	if err := db.DB.Save(&staffRecord).Error; err != nil {
		logrus.WithError(err).Warn("Failed to update staff statistics")
	}
}

// AddNote appends an internal staff note to an appointment.
func AddNote(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}

	type NoteInput struct {
		Content   string `json:"content"`
		IsVisible bool   `json:"isVisible"`
	}
	input := new(NoteInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}
	if input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Note content is required",
		})
	}

	var appointment models.Appointment
	query := centerScoped(c, db.DB.Where("appointments.id = ?", id))
	if err := query.First(&appointment).Error; err != nil {
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

	appointment.StaffNotes = append(appointment.StaffNotes, models.StaffNote{
		AuthorID:  authUser.UserID,
		Content:   input.Content,
		IsVisible: input.IsVisible,
		CreatedAt: utils.Now(),
	})

	if err := db.DB.Save(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to add note",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Note added successfully",
		"data":    appointment.StaffNotes,
	})
}

// AddComment appends a citizen-visible comment to an appointment.
func AddComment(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}

	type CommentInput struct {
		Content string `json:"content"`
	}
	input := new(CommentInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}
	if input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Comment content is required",
		})
	}

	var appointment models.Appointment
	query := centerScoped(c, db.DB.Where("appointments.id = ?", id))
	if err := query.Preload("Service").First(&appointment).Error; err != nil {
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

	appointment.Comments = append(appointment.Comments, models.Comment{
		AuthorID:   authUser.UserID,
		AuthorType: "staff",
		Content:    input.Content,
		IsVisible:  true,
		CreatedAt:  utils.Now(),
	})

	if err := db.DB.Save(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to add comment",
			"error":   err.Error(),
		})
	}

	go utils.NotifyUser(appointment.UserID, "appointment",
		"New comment on your appointment",
		"Staff added a comment on your "+appointment.Service.Name+" appointment.",
		models.JSONMap{"appointmentId": appointment.ID})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Comment added successfully",
		"data":    appointment.Comments,
	})
}

// GetStatsSummary returns today's per-status counts plus pending totals for
// the center. Registered before the :id routes so "summary" never parses as
// an appointment ID.
func GetStatsSummary(c *fiber.Ctx) error {
	now := utils.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	type statusCount struct {
		Status models.AppointmentStatus `json:"status"`
		Count  int64                    `json:"count"`
	}

	var todayCounts []statusCount
	query := centerScoped(c, db.DB.Model(&models.Appointment{}).
		Where("appointment_date >= ? AND appointment_date < ?", today, tomorrow))
	if err := query.Select("status, COUNT(*) as count").Group("status").Scan(&todayCounts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch summary",
			"error":   err.Error(),
		})
	}

	byStatus := fiber.Map{}
	var todayTotal int64
	for _, row := range todayCounts {
		byStatus[string(row.Status)] = row.Count
		todayTotal += row.Count
	}

	var pendingTotal int64
	pendingQuery := centerScoped(c, db.DB.Model(&models.Appointment{}).
		Where("status = ?", models.StatusPending))
	if err := pendingQuery.Count(&pendingTotal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch summary",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"today": fiber.Map{
				"total":    todayTotal,
				"byStatus": byStatus,
			},
			"pendingTotal": pendingTotal,
		},
	})
}
