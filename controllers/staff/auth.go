package staff

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/akshayaportal/services-backend/controllers"
	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/middleware"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/utils"
)

// Login authenticates a staff or admin user and returns the token plus the
// staff context for staff users.
func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	if input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Email and password are required",
		})
	}

	var user models.User
	if db.DB.Where("email = ? AND is_active = ?", input.Email, true).First(&user).RowsAffected == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid credentials",
		})
	}

	if user.Role != models.RoleStaff && user.Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Access denied. Staff privileges required.",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid credentials",
		})
	}

	var staffRecord *models.Staff
	if user.Role == models.RoleStaff {
		var record models.Staff
		err := db.DB.Preload("Center").
			Where("user_id = ? AND is_active = ?", user.ID, true).
			First(&record).Error
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Staff assignment not found or inactive. Please contact administrator.",
			})
		}
		staffRecord = &record

		now := utils.Now()
		staffRecord.LastLogin = &now
		db.DB.Save(staffRecord)
	}

	now := utils.Now()
	user.LastLogin = &now
	db.DB.Save(&user)

	token, err := controllers.IssueToken(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to generate token",
		})
	}

	responseData := fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	}

	if staffRecord != nil {
		responseData["staff"] = fiber.Map{
			"id":           staffRecord.ID,
			"centerId":     staffRecord.CenterID,
			"centerName":   staffRecord.Center.Name,
			"role":         staffRecord.Role,
			"permissions":  staffRecord.Permissions,
			"workingHours": staffRecord.WorkingHours,
			"preferences":  staffRecord.Preferences,
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"data":    responseData,
	})
}

// Register creates a staff user together with their center. The user starts
// with approval pending, the center inactive and the staff record inactive;
// all three are switched on by admin approval of the center.
func Register(c *fiber.Ctx) error {
	type RegisterInput struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Center   struct {
			Name      string             `json:"name"`
			Address   models.Address     `json:"address"`
			Latitude  float64            `json:"latitude"`
			Longitude float64            `json:"longitude"`
			Contact   models.ContactInfo `json:"contact"`
		} `json:"center"`
	}

	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	if input.Name == "" || input.Email == "" || input.Password == "" || input.Center.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Name, email, password and center name are required",
		})
	}

	var existing models.User
	if db.DB.Where("email = ?", input.Email).First(&existing).RowsAffected > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "User with this email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to hash password",
		})
	}

	user := models.User{
		Name:           input.Name,
		Email:          input.Email,
		Password:       string(hashedPassword),
		Phone:          input.Phone,
		Role:           models.RoleStaff,
		IsActive:       true,
		ApprovalStatus: models.ApprovalPending,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create user",
			"error":   err.Error(),
		})
	}

	center := models.AkshayaCenter{
		Name:           input.Center.Name,
		Address:        input.Center.Address,
		Latitude:       input.Center.Latitude,
		Longitude:      input.Center.Longitude,
		Contact:        input.Center.Contact,
		Status:         models.CenterInactive,
		RegisteredByID: user.ID,
	}
	if err := db.DB.Create(&center).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create center",
			"error":   err.Error(),
		})
	}

	// Staff record stays inactive until the center is approved; default
	// permissions are granted by the model hook.
	staffRecord := models.Staff{
		UserID:   user.ID,
		CenterID: center.ID,
		Role:     models.StaffRoleStaff,
		IsActive: false,
	}
	if err := db.DB.Create(&staffRecord).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create staff record",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration submitted. Your center is pending admin approval.",
		"data": fiber.Map{
			"userId":   user.ID,
			"centerId": center.ID,
			"staffId":  staffRecord.ID,
		},
	})
}

// GetProfile returns the staff member's user and staff records.
func GetProfile(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	var user models.User
	if err := db.DB.First(&user, authUser.UserID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch profile",
			"error":   err.Error(),
		})
	}
	user.Password = ""

	var staffRecord *models.Staff
	if authUser.Role == models.RoleStaff {
		var record models.Staff
		if err := db.DB.Preload("Center").Where("user_id = ?", authUser.UserID).First(&record).Error; err == nil {
			staffRecord = &record
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":  user,
			"staff": staffRecord,
		},
	})
}

// UpdateProfile lets staff edit their name, phone, preferences and working
// hours.
func UpdateProfile(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	type UpdateInput struct {
		Name         string                   `json:"name"`
		Phone        string                   `json:"phone"`
		Preferences  *models.StaffPreferences `json:"preferences"`
		WorkingHours models.WeeklySchedule    `json:"workingHours"`
	}

	input := new(UpdateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	var user models.User
	if err := db.DB.First(&user, authUser.UserID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update profile",
			"error":   err.Error(),
		})
	}
	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if err := db.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update profile",
			"error":   err.Error(),
		})
	}

	if authUser.Role == models.RoleStaff {
		var staffRecord models.Staff
		if err := db.DB.Where("user_id = ?", authUser.UserID).First(&staffRecord).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update profile",
				"error":   err.Error(),
			})
		}

		if input.Preferences != nil {
			staffRecord.Preferences = *input.Preferences
		}
		for day, schedule := range input.WorkingHours {
			staffRecord.WorkingHours[day] = schedule
		}

		if err := db.DB.Save(&staffRecord).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update profile",
				"error":   err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
	})
}

// ChangePassword verifies the current password before replacing it.
func ChangePassword(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	type ChangeInput struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	input := new(ChangeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Cannot parse JSON",
		})
	}

	if input.CurrentPassword == "" || input.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Current password and new password are required",
		})
	}

	if len(input.NewPassword) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "New password must be at least 6 characters long",
		})
	}

	var user models.User
	if err := db.DB.First(&user, authUser.UserID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to change password",
			"error":   err.Error(),
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Current password is incorrect",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to hash password",
		})
	}

	user.Password = string(hashedPassword)
	if err := db.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to change password",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password changed successfully",
	})
}

// staffSession returns the staff context set by middleware, nil for admins.
func staffSession(c *fiber.Ctx) *middleware.StaffSession {
	session, _ := c.Locals("staff").(*middleware.StaffSession)
	return session
}
