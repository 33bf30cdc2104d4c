package consumer

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/models"
)

// ListServices is the public catalog of active services, optionally filtered
// by category.
func ListServices(c *fiber.Ctx) error {
	query := db.DB.Where("is_active = ?", true)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var services []models.Service
	if err := query.Order("name ASC").Find(&services).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch services",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    services,
	})
}

// ListCenters lists active centers, optionally restricted to those offering a
// service. Inactive centers are never visible to citizens.
func ListCenters(c *fiber.Ctx) error {
	query := db.DB.Preload("Services").Where("status = ?", models.CenterActive)
	if city := c.Query("city"); city != "" {
		query = query.Where("address->>'city' ILIKE ?", city)
	}

	var centers []models.AkshayaCenter
	if err := query.Order("name ASC").Find(&centers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch centers",
			"error":   err.Error(),
		})
	}

	if serviceID, err := strconv.Atoi(c.Query("serviceId")); err == nil && serviceID > 0 {
		filtered := make([]models.AkshayaCenter, 0, len(centers))
		for _, center := range centers {
			if center.HasService(uint(serviceID)) {
				filtered = append(filtered, center)
			}
		}
		centers = filtered
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    centers,
	})
}

// GetCenter returns one active center with its enabled services.
func GetCenter(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid center ID",
		})
	}

	var center models.AkshayaCenter
	err = db.DB.Preload("Services").
		Where("id = ? AND status = ?", id, models.CenterActive).
		First(&center).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Center not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch center",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    center,
	})
}
