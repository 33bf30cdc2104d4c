package middleware

import (
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/utils"
)

// AuthUser is the normalized identity attached to every authenticated request.
type AuthUser struct {
	UserID uint
	Name   string
	Email  string
	Role   models.UserRole
}

// StaffSession is the staff context loaded for role "staff": center
// assignment, permissions and the working-hours flag evaluated at request
// time.
type StaffSession struct {
	StaffID            uint
	CenterID           uint
	CenterName         string
	Role               models.StaffRole
	Permissions        models.PermissionList
	IsCurrentlyWorking bool
}

// Protected verifies the bearer token and stores the user ID and role from
// its claims in request locals.
func Protected() fiber.Handler {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "solid_secret_key" // Replace with secure key in production
	}

	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"message": "Invalid token.",
				})
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"message": "Invalid token claims.",
				})
			}

			id, ok := claims["id"].(float64)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"message": "Invalid user ID in token.",
				})
			}

			role, _ := claims["role"].(string)

			c.Locals("userID", uint(id))
			c.Locals("role", role)

			return c.Next()
		},
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Access denied. No token provided.",
		})
	}
	if errors.Is(err, jwt.ErrTokenExpired) || strings.Contains(err.Error(), "expired") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Token expired.",
		})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Invalid token.",
	})
}

// StaffContext loads the authenticated user and, for role "staff", the
// active staff record with its center, and attaches both to request locals.
// Requests from inactive users, non-staff roles or unassigned staff are
// rejected here.
func StaffContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User ID not found in context.",
			})
		}

		var user models.User
		if err := db.DB.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"message": "Invalid token. User not found or inactive.",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Authentication error.",
				"error":   err.Error(),
			})
		}

		if !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid token. User not found or inactive.",
			})
		}

		if user.Role != models.RoleStaff && user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Access denied. Staff privileges required.",
			})
		}

		c.Locals("authUser", AuthUser{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
		})

		if user.Role == models.RoleStaff {
			var staff models.Staff
			err := db.DB.Preload("Center").
				Where("user_id = ? AND is_active = ?", user.ID, true).
				First(&staff).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
						"success": false,
						"message": "Access denied. Staff assignment not found or inactive.",
					})
				}
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Authentication error.",
					"error":   err.Error(),
				})
			}

			c.Locals("staff", &StaffSession{
				StaffID:            staff.ID,
				CenterID:           staff.CenterID,
				CenterName:         staff.Center.Name,
				Role:               staff.Role,
				Permissions:        staff.Permissions,
				IsCurrentlyWorking: staff.IsCurrentlyWorkingAt(utils.Now()),
			})
		}

		return c.Next()
	}
}
