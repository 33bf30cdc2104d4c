package staff

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/middleware"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/utils"
)

// resolveCenterID returns the staff member's center, or for admins the center
// named in the centerId query parameter.
func resolveCenterID(c *fiber.Ctx) (uint, error) {
	if centerID := middleware.FilterCenterID(c); centerID != 0 {
		return centerID, nil
	}
	id, err := strconv.Atoi(c.Query("centerId"))
	if err != nil || id <= 0 {
		return 0, errors.New("centerId query parameter is required")
	}
	return uint(id), nil
}

// GetAvailableServices lists the global catalog of active services.
func GetAvailableServices(c *fiber.Ctx) error {
	var services []models.Service
	if err := db.DB.Where("is_active = ?", true).Order("name ASC").Find(&services).Error; err != nil {
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

// GetCenterServices lists the catalog annotated with the center's enabled and
// hidden state plus any per-center setting overrides.
func GetCenterServices(c *fiber.Ctx) error {
	centerID, err := resolveCenterID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var center models.AkshayaCenter
	err = db.DB.Preload("Services").Preload("HiddenServices").First(&center, centerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Center not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch center services",
			"error":   err.Error(),
		})
	}

	var catalog []models.Service
	if err := db.DB.Where("is_active = ?", true).Order("name ASC").Find(&catalog).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch center services",
			"error":   err.Error(),
		})
	}

	type centerService struct {
		models.Service
		Enabled  bool                   `json:"enabled"`
		Hidden   bool                   `json:"hidden"`
		Settings *models.ServiceSetting `json:"settings,omitempty"`
	}

	services := make([]centerService, 0, len(catalog))
	for _, s := range catalog {
		entry := centerService{
			Service: s,
			Enabled: center.HasService(s.ID),
			Hidden:  center.HasHiddenService(s.ID),
		}
		if setting, ok := center.ServiceSettings[strconv.Itoa(int(s.ID))]; ok {
			entry.Settings = &setting
		}
		services = append(services, entry)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    services,
	})
}

// GetHiddenServices lists the services an admin has hidden at the center.
// Hidden services cannot be re-enabled by center staff.
func GetHiddenServices(c *fiber.Ctx) error {
	centerID, err := resolveCenterID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var center models.AkshayaCenter
	if err := db.DB.Preload("HiddenServices").First(&center, centerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Center not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch hidden services",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    center.HiddenServices,
	})
}

// ToggleService enables or disables a catalog service at the center. Services
// hidden by an admin cannot be enabled here.
func ToggleService(c *fiber.Ctx) error {
	centerID, err := resolveCenterID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	serviceID, err := strconv.Atoi(c.Params("serviceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid service ID",
		})
	}

	type ToggleInput struct {
		Enabled bool `json:"enabled"`
	}
	input := new(ToggleInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	var center models.AkshayaCenter
	err = db.DB.Preload("Services").Preload("HiddenServices").First(&center, centerID).Error
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

	var service models.Service
	if err := db.DB.First(&service, serviceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Service not found",
		})
	}

	if input.Enabled {
		if center.HasHiddenService(service.ID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "This service has been disabled for your center by an administrator",
			})
		}
		if !center.HasService(service.ID) {
			if err := db.DB.Model(&center).Association("Services").Append(&service); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Failed to enable service",
					"error":   err.Error(),
				})
			}
		}
	} else {
		if err := db.DB.Model(&center).Association("Services").Delete(&service); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to disable service",
				"error":   err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service availability updated",
		"data": fiber.Map{
			"serviceId": service.ID,
			"enabled":   input.Enabled,
		},
	})
}

// UpdateServiceSettings stores the center's overrides for one service:
// availability notes, custom fees and an estimated duration.
func UpdateServiceSettings(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	centerID, err := resolveCenterID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	serviceID, err := strconv.Atoi(c.Params("serviceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid service ID",
		})
	}

	type SettingsInput struct {
		AvailabilityNotes string   `json:"availabilityNotes"`
		CustomFees        *float64 `json:"customFees"`
		EstimatedDuration *int     `json:"estimatedDuration"`
	}
	input := new(SettingsInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	if input.CustomFees != nil && *input.CustomFees < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Custom fees cannot be negative",
		})
	}
	if input.EstimatedDuration != nil && *input.EstimatedDuration <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Estimated duration must be positive",
		})
	}

	var center models.AkshayaCenter
	if err := db.DB.First(&center, centerID).Error; err != nil {
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

	var service models.Service
	if err := db.DB.First(&service, serviceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Service not found",
		})
	}

	if center.ServiceSettings == nil {
		center.ServiceSettings = models.ServiceSettingsMap{}
	}
	center.ServiceSettings[strconv.Itoa(int(service.ID))] = models.ServiceSetting{
		AvailabilityNotes: input.AvailabilityNotes,
		CustomFees:        input.CustomFees,
		EstimatedDuration: input.EstimatedDuration,
		UpdatedAt:         utils.Now(),
		UpdatedByID:       authUser.UserID,
	}

	if err := db.DB.Save(&center).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update service settings",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service settings updated",
		"data":    center.ServiceSettings[strconv.Itoa(int(service.ID))],
	})
}
