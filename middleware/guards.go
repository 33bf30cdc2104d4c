package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/akshayaportal/services-backend/models"
)

// RequirePermission gates a route on a staff permission. Admins pass
// unconditionally; staff must hold a granted entry for action.
func RequirePermission(action models.PermissionAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("authUser").(AuthUser)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not found in context.",
			})
		}

		if user.Role == models.RoleAdmin {
			return c.Next()
		}

		session, ok := c.Locals("staff").(*StaffSession)
		if !ok || session == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Access denied. Staff record not found.",
			})
		}

		if !session.Permissions.Has(action) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": fmt.Sprintf("Access denied. Permission '%s' required.", action),
			})
		}

		return c.Next()
	}
}

// CenterAccess restricts staff to their own center's data. Admins pass with
// no filter; staff get their center ID stored in locals, which every
// appointment-scoped handler must apply to its queries.
func CenterAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("authUser").(AuthUser)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not found in context.",
			})
		}

		if user.Role == models.RoleAdmin {
			return c.Next()
		}

		session, ok := c.Locals("staff").(*StaffSession)
		if !ok || session == nil || session.CenterID == 0 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Access denied. Center assignment required.",
			})
		}

		c.Locals("centerID", session.CenterID)

		return c.Next()
	}
}

// FilterCenterID returns the center filter set by CenterAccess; zero means
// the caller is an admin and sees all centers.
func FilterCenterID(c *fiber.Ctx) uint {
	centerID, _ := c.Locals("centerID").(uint)
	return centerID
}

// WorkingHoursCheck blocks staff outside their working window. Admins pass
// unconditionally. The workingHours marker lets the frontend branch its
// messaging.
func WorkingHoursCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("authUser").(AuthUser)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not found in context.",
			})
		}

		if user.Role == models.RoleAdmin {
			return c.Next()
		}

		session, ok := c.Locals("staff").(*StaffSession)
		if ok && session != nil && !session.IsCurrentlyWorking {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success":      false,
				"message":      "Access denied. Outside working hours.",
				"workingHours": true,
			})
		}

		return c.Next()
	}
}

// RequireRole gates a route on the JWT role claim set by Protected.
func RequireRole(role models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claimRole, _ := c.Locals("role").(string)
		if claimRole != string(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Access denied. Insufficient role.",
			})
		}
		return c.Next()
	}
}
