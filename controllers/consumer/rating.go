package consumer

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/utils"
)

// RateAppointment records the citizen's score for a completed appointment
// and refreshes the center's average rating.
func RateAppointment(c *fiber.Ctx) error {
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

	type RatingInput struct {
		Score    float64 `json:"score"`
		Feedback string  `json:"feedback"`
	}
	input := new(RatingInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}
	if input.Score < 1 || input.Score > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Score must be between 1 and 5",
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

	if appointment.Status != models.StatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Only completed appointments can be rated",
		})
	}
	if appointment.Rating != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "This appointment has already been rated",
		})
	}

	appointment.Rating = &models.AppointmentRating{
		Score:    input.Score,
		Feedback: input.Feedback,
		RatedAt:  utils.Now(),
	}

	if err := db.DB.Save(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save rating",
			"error":   err.Error(),
		})
	}

	refreshCenterRating(appointment.CenterID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Thank you for your feedback",
		"data":    appointment.Rating,
	})
}

// refreshCenterRating recomputes the center's average from its rated
// appointments. Best effort, failures only log.
func refreshCenterRating(centerID uint) {
	var rated []models.Appointment
	err := db.DB.Where("center_id = ? AND rating IS NOT NULL", centerID).Find(&rated).Error
	if err != nil {
		logrus.WithError(err).WithField("center_id", centerID).Warn("Failed to recompute center rating")
		return
	}
	if len(rated) == 0 {
		return
	}

	var sum float64
	for _, a := range rated {
		sum += a.Rating.Score
	}
	average := sum / float64(len(rated))

	if err := db.DB.Model(&models.AkshayaCenter{}).Where("id = ?", centerID).
		Update("rating", average).Error; err != nil {
		logrus.WithError(err).WithField("center_id", centerID).Warn("Failed to store center rating")
	}
}
