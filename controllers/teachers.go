package controllers

import (
	"errors"
	"strconv"
	"time"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/cascade"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TeacherController struct{}

// TeacherRequest creates a teacher profile together with its user account
// in a single transaction.
type TeacherRequest struct {
	EmployeeNumber string     `json:"employee_number" validate:"required"`
	Username       string     `json:"username" validate:"required,min=3,max=50"`
	Password       string     `json:"password" validate:"required,min=6"`
	Email          string     `json:"email" validate:"required,email"`
	FullName       string     `json:"full_name"`
	HireDate       *time.Time `json:"hire_date"`
	SubjectIDs     []uint     `json:"subject_ids"`
	ClassIDs       []uint     `json:"class_ids"`
}

// GetTeachers returns all teachers with pagination
func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var teachers []models.Teacher
	var total int64

	query := database.DB.Model(&models.Teacher{})
	query.Count(&total)

	if err := query.Preload("User").Preload("Subjects").Preload("Classes").
		Offset(offset).Limit(limit).Find(&teachers).Error; err != nil {
		return errServer(c, "Failed to fetch teachers")
	}

	return c.JSON(fiber.Map{
		"teachers": teachers,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetTeacher returns a specific teacher by ID
func (tc *TeacherController) GetTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid teacher ID")
	}

	var teacher models.Teacher
	if err := database.DB.Preload("User").Preload("Subjects").Preload("Classes").
		First(&teacher, id).Error; err != nil {
		return errNotFound(c, "Teacher")
	}

	return c.JSON(fiber.Map{
		"teacher": teacher,
	})
}

// CreateTeacher creates a user account and teacher profile atomically.
// If profile creation fails the account never appears.
func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	var req TeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var existing models.User
	if err := database.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error; err == nil {
		return errConflict(c, "Username or email already exists")
	}
	var existingTeacher models.Teacher
	if err := database.DB.Where("employee_number = ?", req.EmployeeNumber).First(&existingTeacher).Error; err == nil {
		return errConflict(c, "Employee number already exists")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return errServer(c, "Failed to hash password")
	}

	var teacher models.Teacher
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", "teacher").First(&role).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			role = models.Role{Name: "teacher"}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
		}

		user := models.User{
			Username: req.Username,
			Password: hashedPassword,
			Email:    req.Email,
			FullName: req.FullName,
			IsActive: true,
			Roles:    []models.Role{role},
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		teacher = models.Teacher{
			EmployeeNumber: req.EmployeeNumber,
			UserID:         user.ID,
			HireDate:       req.HireDate,
		}
		if err := tx.Create(&teacher).Error; err != nil {
			return err
		}

		if len(req.SubjectIDs) > 0 {
			var subjects []models.Subject
			if err := tx.Find(&subjects, req.SubjectIDs).Error; err != nil {
				return err
			}
			if err := tx.Model(&teacher).Association("Subjects").Replace(subjects); err != nil {
				return err
			}
		}
		if len(req.ClassIDs) > 0 {
			var classes []models.Class
			if err := tx.Find(&classes, req.ClassIDs).Error; err != nil {
				return err
			}
			if err := tx.Model(&teacher).Association("Classes").Replace(classes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errServer(c, "Failed to create teacher")
	}

	database.DB.Preload("User").Preload("Subjects").Preload("Classes").First(&teacher, teacher.ID)

	middleware.LogActivity(c, "CREATE", "teachers", teacher.ID, fiber.Map{
		"employee_number": teacher.EmployeeNumber,
		"username":        req.Username,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Teacher created successfully",
		"teacher": teacher,
	})
}

// UpdateTeacher updates a teacher profile and its assignments
func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid teacher ID")
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		return errNotFound(c, "Teacher")
	}

	var req struct {
		EmployeeNumber string     `json:"employee_number"`
		FullName       string     `json:"full_name"`
		HireDate       *time.Time `json:"hire_date"`
		SubjectIDs     []uint     `json:"subject_ids"`
		ClassIDs       []uint     `json:"class_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.EmployeeNumber != "" && req.EmployeeNumber != teacher.EmployeeNumber {
		var existing models.Teacher
		if err := database.DB.Where("employee_number = ? AND id <> ?", req.EmployeeNumber, id).First(&existing).Error; err == nil {
			return errConflict(c, "Employee number already exists")
		}
		teacher.EmployeeNumber = req.EmployeeNumber
	}
	if req.HireDate != nil {
		teacher.HireDate = req.HireDate
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&teacher).Error; err != nil {
			return err
		}
		if req.FullName != "" {
			if err := tx.Model(&models.User{}).Where("id = ?", teacher.UserID).Update("full_name", req.FullName).Error; err != nil {
				return err
			}
		}
		if req.SubjectIDs != nil {
			var subjects []models.Subject
			if len(req.SubjectIDs) > 0 {
				if err := tx.Find(&subjects, req.SubjectIDs).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&teacher).Association("Subjects").Replace(subjects); err != nil {
				return err
			}
		}
		if req.ClassIDs != nil {
			var classes []models.Class
			if len(req.ClassIDs) > 0 {
				if err := tx.Find(&classes, req.ClassIDs).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&teacher).Association("Classes").Replace(classes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errServer(c, "Failed to update teacher")
	}

	database.DB.Preload("User").Preload("Subjects").Preload("Classes").First(&teacher, teacher.ID)

	middleware.LogActivity(c, "UPDATE", "teachers", teacher.ID, fiber.Map{
		"employee_number": teacher.EmployeeNumber,
	})

	return c.JSON(fiber.Map{
		"message": "Teacher updated successfully",
		"teacher": teacher,
	})
}

// DeleteTeacher removes a teacher profile and its class-subject links.
// The user account stays and is removed separately through user deletion.
func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid teacher ID")
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		return errNotFound(c, "Teacher")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteTeacher(tx, id)
	})
	if err != nil {
		return errServer(c, "Failed to delete teacher")
	}

	middleware.LogActivity(c, "DELETE", "teachers", id, fiber.Map{
		"employee_number": teacher.EmployeeNumber,
	})

	return c.JSON(fiber.Map{
		"message": "Teacher deleted successfully",
	})
}
