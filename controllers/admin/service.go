package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/middleware"
	"github.com/akshayaportal/services-backend/models"
)

// assignServiceToActiveCenters enables a service at every active center that
// has not hidden it. New catalog entries are live everywhere by default.
func assignServiceToActiveCenters(service *models.Service) {
	var centers []models.AkshayaCenter
	err := db.DB.Preload("HiddenServices").
		Where("status = ?", models.CenterActive).
		Find(&centers).Error
	if err != nil {
		logrus.WithError(err).Warn("Failed to load centers for service assignment")
		return
	}

	for i := range centers {
		if centers[i].HasHiddenService(service.ID) {
			continue
		}
		if err := db.DB.Model(&centers[i]).Association("Services").Append(service); err != nil {
			logrus.WithError(err).
				WithField("center_id", centers[i].ID).
				WithField("service_id", service.ID).
				Warn("Failed to assign service to center")
		}
	}
}

// CreateService adds a catalog entry and propagates it to all active centers.
func CreateService(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	service := new(models.Service)
	if err := c.BodyParser(service); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	if service.Name == "" || service.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Name and category are required",
		})
	}
	if service.Fee < 0 || service.ServiceCharge < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Fee and service charge cannot be negative",
		})
	}

	service.ID = 0
	service.CreatedByID = authUser.UserID
	service.IsActive = true

	if err := db.DB.Create(service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create service",
			"error":   err.Error(),
		})
	}

	assignServiceToActiveCenters(service)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Service created and assigned to all active centers",
		"data":    service,
	})
}

// ListServices shows the whole catalog including inactive entries.
func ListServices(c *fiber.Ctx) error {
	var services []models.Service
	if err := db.DB.Order("name ASC").Find(&services).Error; err != nil {
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

// UpdateService edits a catalog entry.
func UpdateService(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid service ID",
		})
	}

	var service models.Service
	if err := db.DB.First(&service, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Service not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch service",
			"error":   err.Error(),
		})
	}

	type UpdateInput struct {
		Name              *string            `json:"name"`
		Description       *string            `json:"description"`
		Category          *string            `json:"category"`
		Fee               *float64           `json:"fee"`
		ServiceCharge     *float64           `json:"service_charge"`
		ProcessingTime    *string            `json:"processing_time"`
		RequiredDocuments *models.StringList `json:"required_documents"`
		IsActive          *bool              `json:"is_active"`
	}
	input := new(UpdateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.Fee != nil {
		if *input.Fee < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Fee cannot be negative",
			})
		}
		service.Fee = *input.Fee
	}
	if input.ServiceCharge != nil {
		if *input.ServiceCharge < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Service charge cannot be negative",
			})
		}
		service.ServiceCharge = *input.ServiceCharge
	}
	if input.ProcessingTime != nil {
		service.ProcessingTime = *input.ProcessingTime
	}
	if input.RequiredDocuments != nil {
		service.RequiredDocuments = *input.RequiredDocuments
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := db.DB.Save(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update service",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service updated successfully",
		"data":    service,
	})
}

// DeleteService removes a catalog entry and its center assignments.
func DeleteService(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid service ID",
		})
	}

	var service models.Service
	if err := db.DB.First(&service, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Service not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch service",
			"error":   err.Error(),
		})
	}

	var pending int64
	err = db.DB.Model(&models.Appointment{}).
		Where("service_id = ? AND status IN ?", service.ID,
			[]models.AppointmentStatus{models.StatusPending, models.StatusConfirmed, models.StatusInProgress}).
		Count(&pending).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete service",
			"error":   err.Error(),
		})
	}
	if pending > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Service has active appointments and cannot be deleted",
		})
	}

	db.DB.Exec("DELETE FROM center_services WHERE service_id = ?", service.ID)
	db.DB.Exec("DELETE FROM center_hidden_services WHERE service_id = ?", service.ID)

	if err := db.DB.Delete(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete service",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service deleted successfully",
	})
}
