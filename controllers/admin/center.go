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
	"github.com/akshayaportal/services-backend/utils"
)

// ListCenters shows every center regardless of status, with its registrant.
func ListCenters(c *fiber.Ctx) error {
	query := db.DB.Preload("Services").Preload("RegisteredBy")
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var centers []models.AkshayaCenter
	if err := query.Order("created_at DESC").Find(&centers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch centers",
			"error":   err.Error(),
		})
	}

	for i := range centers {
		centers[i].RegisteredBy.Password = ""
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    centers,
	})
}

func loadCenter(c *fiber.Ctx) (*models.AkshayaCenter, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid center ID",
		})
	}

	var center models.AkshayaCenter
	err = db.DB.Preload("Services").Preload("HiddenServices").First(&center, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Center not found",
			})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch center",
			"error":   err.Error(),
		})
	}
	return &center, nil
}

// ApproveCenter activates a center: status goes active, every active catalog
// service is assigned, and the registering user and their staff record are
// switched on.
func ApproveCenter(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	center, err := loadCenter(c)
	if center == nil {
		return err
	}

	if center.Status == models.CenterActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Center is already active",
		})
	}

	center.Status = models.CenterActive
	if err := db.DB.Save(center).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to approve center",
			"error":   err.Error(),
		})
	}

	assignAllActiveServices(center)

	// Approve the registering user and activate their staff record.
	now := utils.Now()
	err = db.DB.Model(&models.User{}).Where("id = ?", center.RegisteredByID).Updates(map[string]interface{}{
		"approval_status": models.ApprovalApproved,
		"reviewed_by_id":  authUser.UserID,
		"reviewed_at":     now,
	}).Error
	if err != nil {
		logrus.WithError(err).WithField("user_id", center.RegisteredByID).Warn("Failed to approve registering user")
	}
	err = db.DB.Model(&models.Staff{}).
		Where("user_id = ? AND center_id = ?", center.RegisteredByID, center.ID).
		Updates(map[string]interface{}{"is_active": true, "assigned_by_id": authUser.UserID}).Error
	if err != nil {
		logrus.WithError(err).WithField("center_id", center.ID).Warn("Failed to activate staff record")
	}

	go utils.NotifyUser(center.RegisteredByID, "system",
		"Center approved",
		"Your center "+center.Name+" has been approved and is now live.",
		models.JSONMap{"centerId": center.ID})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Center approved and services assigned",
		"data":    center,
	})
}

// RejectCenter declines a pending registration with review notes.
func RejectCenter(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	center, err := loadCenter(c)
	if center == nil {
		return err
	}

	type RejectInput struct {
		Notes string `json:"notes"`
	}
	input := new(RejectInput)
	_ = c.BodyParser(input)

	now := utils.Now()
	err = db.DB.Model(&models.User{}).Where("id = ?", center.RegisteredByID).Updates(map[string]interface{}{
		"approval_status": models.ApprovalRejected,
		"reviewed_by_id":  authUser.UserID,
		"reviewed_at":     now,
		"review_notes":    input.Notes,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to reject center",
			"error":   err.Error(),
		})
	}

	go utils.NotifyUser(center.RegisteredByID, "system",
		"Center registration rejected",
		"Your center registration for "+center.Name+" was not approved.",
		models.JSONMap{"centerId": center.ID})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Center registration rejected",
	})
}

// assignAllActiveServices enables every active catalog service at the center,
// skipping hidden ones.
func assignAllActiveServices(center *models.AkshayaCenter) {
	var services []models.Service
	if err := db.DB.Where("is_active = ?", true).Find(&services).Error; err != nil {
		logrus.WithError(err).Warn("Failed to load services for center assignment")
		return
	}

	for i := range services {
		if center.HasService(services[i].ID) || center.HasHiddenService(services[i].ID) {
			continue
		}
		if err := db.DB.Model(center).Association("Services").Append(&services[i]); err != nil {
			logrus.WithError(err).
				WithField("center_id", center.ID).
				WithField("service_id", services[i].ID).
				Warn("Failed to assign service to center")
		}
	}
}

// EnableAllServices re-runs the full service assignment for one center.
func EnableAllServices(c *fiber.Ctx) error {
	center, err := loadCenter(c)
	if center == nil {
		return err
	}

	assignAllActiveServices(center)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "All active services enabled for center",
	})
}

// HideService blocks a service at one center. The service is removed from the
// enabled list and staff cannot re-enable it until it is unhidden.
func HideService(c *fiber.Ctx) error {
	center, err := loadCenter(c)
	if center == nil {
		return err
	}

	serviceID, convErr := strconv.Atoi(c.Params("serviceId"))
	if convErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid service ID",
		})
	}

	var service models.Service
	if err := db.DB.First(&service, serviceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Service not found",
		})
	}

	if err := db.DB.Model(center).Association("Services").Delete(&service); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to hide service",
			"error":   err.Error(),
		})
	}
	if !center.HasHiddenService(service.ID) {
		if err := db.DB.Model(center).Association("HiddenServices").Append(&service); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to hide service",
				"error":   err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service hidden for center",
	})
}

// UnhideService lifts the block so center staff may enable the service again.
func UnhideService(c *fiber.Ctx) error {
	center, err := loadCenter(c)
	if center == nil {
		return err
	}

	serviceID, convErr := strconv.Atoi(c.Params("serviceId"))
	if convErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid service ID",
		})
	}

	var service models.Service
	if err := db.DB.First(&service, serviceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Service not found",
		})
	}

	if err := db.DB.Model(center).Association("HiddenServices").Delete(&service); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to unhide service",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service unhidden for center",
	})
}
