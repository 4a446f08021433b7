package controllers

import (
	"strconv"
	"strings"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/cascade"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct{}

// GetUsers returns all users with pagination
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var users []models.User
	var total int64

	query := database.DB.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Joins("JOIN user_roles ON user_roles.user_id = users.id").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("roles.name = ?", strings.ToLower(role))
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("users.is_active = ?", active == "true")
	}

	query.Count(&total)

	if err := query.Preload("Roles").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return errServer(c, "Failed to fetch users")
	}

	return c.JSON(fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetUser returns a specific user by ID
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := database.DB.Preload("Roles").First(&user, id).Error; err != nil {
		return errNotFound(c, "User")
	}

	return c.JSON(fiber.Map{
		"user": user,
	})
}

// UpdateUser updates basic account fields and role assignments
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := database.DB.Preload("Roles").First(&user, id).Error; err != nil {
		return errNotFound(c, "User")
	}

	var req struct {
		Email    string   `json:"email" validate:"omitempty,email"`
		FullName string   `json:"full_name"`
		Roles    []string `json:"roles"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	if req.Email != "" && req.Email != user.Email {
		var existing models.User
		if err := database.DB.Where("email = ? AND id <> ?", req.Email, id).First(&existing).Error; err == nil {
			return errConflict(c, "Email already exists")
		}
		user.Email = req.Email
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if req.Roles != nil {
			roles := make([]models.Role, 0, len(req.Roles))
			for _, name := range req.Roles {
				name = strings.ToLower(name)
				if !utils.IsValidRole(name) {
					return fiber.NewError(fiber.StatusBadRequest, "Invalid role: "+name)
				}
				var role models.Role
				if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
					role = models.Role{Name: name}
					if err := tx.Create(&role).Error; err != nil {
						return err
					}
				}
				roles = append(roles, role)
			}
			if err := tx.Model(&user).Association("Roles").Replace(roles); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if ferr, ok := err.(*fiber.Error); ok {
			return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
		}
		return errServer(c, "Failed to update user")
	}

	database.DB.Preload("Roles").First(&user, user.ID)

	middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{
		"username": user.Username,
	})

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// SetUserActive flips the account's active flag. Deactivated accounts
// fail authentication on their next request.
func (uc *UserController) SetUserActive(active bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return errBadRequest(c, "Invalid user ID")
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return errNotFound(c, "User")
		}

		if err := database.DB.Model(&user).Update("is_active", active).Error; err != nil {
			return errServer(c, "Failed to update user")
		}

		action := "deactivate"
		if active {
			action = "activate"
		}
		middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{
			"action":   action,
			"username": user.Username,
		})

		return c.JSON(fiber.Map{
			"message":   "User " + action + "d successfully",
			"is_active": active,
		})
	}
}

// ResetPassword lets an admin set a new password on any account
func (uc *UserController) ResetPassword(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return errNotFound(c, "User")
	}

	var req struct {
		NewPassword string `json:"new_password" validate:"required,min=6"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return errServer(c, "Failed to hash password")
	}

	if err := database.DB.Model(&user).Update("password", hashedPassword).Error; err != nil {
		return errServer(c, "Failed to reset password")
	}

	middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{
		"action":   "password_reset_admin",
		"username": user.Username,
	})

	return c.JSON(fiber.Map{
		"message": "Password reset successfully",
	})
}

// DeleteUser removes an account and everything hanging off it
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return errNotFound(c, "User")
	}

	current, err := middleware.GetCurrentUser(c)
	if err == nil && current.ID == user.ID {
		return errBadRequest(c, "Cannot delete your own account")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteUser(tx, id)
	})
	if err != nil {
		return errServer(c, "Failed to delete user")
	}

	middleware.LogActivity(c, "DELETE", "users", id, fiber.Map{
		"username": user.Username,
	})

	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
