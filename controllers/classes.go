package controllers

import (
	"strconv"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/cascade"
	"schooladmin_go/services/policy"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ClassController struct{}

// ClassRequest represents the create/update body
type ClassRequest struct {
	Name           string `json:"name" validate:"required"`
	Section        string `json:"section"`
	ClassTeacherID uint   `json:"class_teacher_id"`
}

// GetClasses returns all classes with pagination
func (cc *ClassController) GetClasses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var classes []models.Class
	var total int64

	query := database.DB.Model(&models.Class{})
	query.Count(&total)

	if err := query.Preload("ClassTeacher").
		Offset(offset).Limit(limit).Find(&classes).Error; err != nil {
		return errServer(c, "Failed to fetch classes")
	}

	return c.JSON(fiber.Map{
		"classes": classes,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetClass returns a specific class with its roster
func (cc *ClassController) GetClass(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid class ID")
	}

	var class models.Class
	if err := database.DB.Preload("ClassTeacher").Preload("Students").
		First(&class, id).Error; err != nil {
		return errNotFound(c, "Class")
	}

	return c.JSON(fiber.Map{
		"class": class,
	})
}

// CreateClass creates a new class
func (cc *ClassController) CreateClass(c *fiber.Ctx) error {
	var req ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	if req.ClassTeacherID != 0 {
		var teacher models.User
		if err := database.DB.First(&teacher, req.ClassTeacherID).Error; err != nil {
			return errBadRequest(c, "Class teacher not found")
		}
	}

	class := models.Class{
		Name:           req.Name,
		Section:        req.Section,
		ClassTeacherID: req.ClassTeacherID,
	}
	if err := database.DB.Create(&class).Error; err != nil {
		return errServer(c, "Failed to create class")
	}

	database.DB.Preload("ClassTeacher").First(&class, class.ID)

	middleware.LogActivity(c, "CREATE", "classes", class.ID, fiber.Map{
		"name":    class.Name,
		"section": class.Section,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Class created successfully",
		"class":   class,
	})
}

// UpdateClass updates an existing class. Only the class teacher or an
// admin may change it.
func (cc *ClassController) UpdateClass(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid class ID")
	}

	var class models.Class
	if err := database.DB.First(&class, id).Error; err != nil {
		return errNotFound(c, "Class")
	}

	principal := principalFrom(c)
	decision := policy.Decide(principal, policy.Resource{
		Kind:     "class",
		OwnerIDs: []uint{class.ClassTeacherID},
	})
	if !policy.CanWrite(decision) {
		return errForbidden(c)
	}

	var req ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.Name != "" {
		class.Name = req.Name
	}
	if req.Section != "" {
		class.Section = req.Section
	}
	if req.ClassTeacherID != 0 {
		var teacher models.User
		if err := database.DB.First(&teacher, req.ClassTeacherID).Error; err != nil {
			return errBadRequest(c, "Class teacher not found")
		}
		class.ClassTeacherID = req.ClassTeacherID
	}

	if err := database.DB.Save(&class).Error; err != nil {
		return errServer(c, "Failed to update class")
	}

	database.DB.Preload("ClassTeacher").First(&class, class.ID)

	middleware.LogActivity(c, "UPDATE", "classes", class.ID, fiber.Map{
		"name": class.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Class updated successfully",
		"class":   class,
	})
}

// DeleteClass removes a class together with its enrolled students,
// attendance sheets and assessments.
func (cc *ClassController) DeleteClass(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid class ID")
	}

	var class models.Class
	if err := database.DB.First(&class, id).Error; err != nil {
		return errNotFound(c, "Class")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteClass(tx, id)
	})
	if err != nil {
		return errServer(c, "Failed to delete class")
	}

	middleware.LogActivity(c, "DELETE", "classes", id, fiber.Map{
		"name": class.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Class deleted successfully",
	})
}

// GetClassStudents returns the roster of a class
func (cc *ClassController) GetClassStudents(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid class ID")
	}

	var class models.Class
	if err := database.DB.First(&class, id).Error; err != nil {
		return errNotFound(c, "Class")
	}

	var students []models.Student
	if err := database.DB.Where("class_id = ?", id).Find(&students).Error; err != nil {
		return errServer(c, "Failed to fetch students")
	}

	return c.JSON(fiber.Map{
		"students": students,
	})
}

// AddStudentToClass enrolls an existing student into the class
func (cc *ClassController) AddStudentToClass(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid class ID")
	}

	var class models.Class
	if err := database.DB.First(&class, id).Error; err != nil {
		return errNotFound(c, "Class")
	}

	var req struct {
		StudentID uint `json:"student_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return errNotFound(c, "Student")
	}

	if student.ClassID != nil && *student.ClassID == id {
		return errConflict(c, "Student is already in this class")
	}

	if err := database.DB.Model(&student).Update("class_id", id).Error; err != nil {
		return errServer(c, "Failed to add student to class")
	}

	middleware.LogActivity(c, "UPDATE", "classes", id, fiber.Map{
		"action":     "add_student",
		"student_id": student.ID,
	})

	return c.JSON(fiber.Map{
		"message": "Student added to class successfully",
	})
}

// RemoveStudentFromClass detaches a student from the roster. The student
// record stays, unassigned.
func (cc *ClassController) RemoveStudentFromClass(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid class ID")
	}
	studentID, err := parseIDParam(c, "studentId")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	var student models.Student
	if err := database.DB.First(&student, studentID).Error; err != nil {
		return errNotFound(c, "Student")
	}
	if student.ClassID == nil || *student.ClassID != id {
		return errBadRequest(c, "Student is not in this class")
	}

	if err := database.DB.Model(&student).Update("class_id", nil).Error; err != nil {
		return errServer(c, "Failed to remove student from class")
	}

	middleware.LogActivity(c, "UPDATE", "classes", id, fiber.Map{
		"action":     "remove_student",
		"student_id": student.ID,
	})

	return c.JSON(fiber.Map{
		"message": "Student removed from class successfully",
	})
}
