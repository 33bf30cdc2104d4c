package admin

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

// ListHolidays returns declared holidays, upcoming first.
func ListHolidays(c *fiber.Ctx) error {
	var holidays []models.Holiday
	if err := db.DB.Order("date ASC").Find(&holidays).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch holidays",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    holidays,
	})
}

// CreateHoliday declares a closure date. Sundays and second Saturdays are
// standing closures and need no entry.
func CreateHoliday(c *fiber.Ctx) error {
	type HolidayInput struct {
		Date   string `json:"date"`
		Reason string `json:"reason"`
	}
	input := new(HolidayInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	parsed, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid date. Use YYYY-MM-DD",
		})
	}
	ist := utils.Now().Location()
	date := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, ist)

	if reason, standing := utils.StandingHolidayReason(date); standing {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "This date is already a standing holiday (" + reason + ")",
		})
	}

	var existing models.Holiday
	err = db.DB.Where("date >= ? AND date < ?", date, date.AddDate(0, 0, 1)).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "A holiday is already declared on this date",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create holiday",
			"error":   err.Error(),
		})
	}

	holiday := models.Holiday{Date: date, Reason: input.Reason}
	if err := db.DB.Create(&holiday).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create holiday",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Holiday declared",
		"data":    holiday,
	})
}

// DeleteHoliday removes a declared closure.
func DeleteHoliday(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid holiday ID",
		})
	}

	var holiday models.Holiday
	if err := db.DB.First(&holiday, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Holiday not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch holiday",
			"error":   err.Error(),
		})
	}

	if err := db.DB.Delete(&holiday).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete holiday",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Holiday removed",
	})
}
