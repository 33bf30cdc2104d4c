package consumer

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/models"
)

// GetNotifications lists the citizen's notifications, newest first, with the
// unread count.
func GetNotifications(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User ID not found in context",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var notifications []models.Notification
	err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch notifications",
			"error":   err.Error(),
		})
	}

	var unread int64
	if err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch notifications",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"notifications": notifications,
			"unreadCount":   unread,
		},
	})
}

// MarkNotificationsRead marks the given notification IDs as read, or all of
// the citizen's notifications when no IDs are supplied.
func MarkNotificationsRead(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User ID not found in context",
		})
	}

	type MarkInput struct {
		IDs []uint `json:"ids"`
	}
	input := new(MarkInput)
	_ = c.BodyParser(input)

	query := db.DB.Model(&models.Notification{}).Where("user_id = ?", userID)
	if len(input.IDs) > 0 {
		query = query.Where("id IN ?", input.IDs)
	}

	if err := query.Update("is_read", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to mark notifications as read",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Notifications marked as read",
	})
}
