package controllers

import (
	"strconv"
	"strings"
	"time"

	"schooladmin_go/config"
	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/cascade"
	"schooladmin_go/services/policy"
	"schooladmin_go/storage"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StudentController struct{}

// StudentRequest represents the create/update body
type StudentRequest struct {
	AdmissionNumber string     `json:"admission_number" validate:"required"`
	FirstName       string     `json:"first_name" validate:"required"`
	LastName        string     `json:"last_name" validate:"required"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	Gender          string     `json:"gender"`
	Address         string     `json:"address"`
	Email           string     `json:"email" validate:"omitempty,email"`
	Phone           string     `json:"phone"`
	ClassID         uint       `json:"class_id" validate:"required"`
	UserID          *uint      `json:"user_id"`
	EnrollmentDate  *time.Time `json:"enrollment_date"`
	GuardianIDs     []uint     `json:"guardian_ids"`
}

// GetStudents returns all students with pagination
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var students []models.Student
	var total int64

	query := database.DB.Model(&models.Student{})

	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	// Get total count
	query.Count(&total)

	if err := query.Preload("Class").Preload("Guardians").
		Offset(offset).Limit(limit).Find(&students).Error; err != nil {
		return errServer(c, "Failed to fetch students")
	}

	return c.JSON(fiber.Map{
		"students": students,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStudent returns a specific student by ID. Students see their own
// profile, guardians see their wards.
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	var student models.Student
	if err := database.DB.Preload("Class").Preload("Guardians").
		First(&student, id).Error; err != nil {
		return errNotFound(c, "Student")
	}

	principal := principalFrom(c)
	decision := policy.Decide(principal, policy.Resource{
		Kind:      "student",
		OwnerIDs:  []uint{student.Class.ClassTeacherID},
		StudentID: student.ID,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	return c.JSON(fiber.Map{
		"student": student,
	})
}

// CreateStudent creates a new student record
func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var class models.Class
	if err := database.DB.First(&class, req.ClassID).Error; err != nil {
		return errBadRequest(c, "Class not found")
	}

	var existing models.Student
	if err := database.DB.Where("admission_number = ?", req.AdmissionNumber).First(&existing).Error; err == nil {
		return errConflict(c, "Admission number already exists")
	}

	student := models.Student{
		AdmissionNumber: req.AdmissionNumber,
		UserID:          req.UserID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		Address:         req.Address,
		Email:           req.Email,
		Phone:           req.Phone,
		ClassID:         &req.ClassID,
		EnrollmentDate:  req.EnrollmentDate,
		IsActive:        true,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&student).Error; err != nil {
			return err
		}
		if len(req.GuardianIDs) > 0 {
			var guardians []models.User
			if err := tx.Find(&guardians, req.GuardianIDs).Error; err != nil {
				return err
			}
			if err := tx.Model(&student).Association("Guardians").Replace(guardians); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errServer(c, "Failed to create student")
	}

	database.DB.Preload("Class").Preload("Guardians").First(&student, student.ID)

	middleware.LogActivity(c, "CREATE", "students", student.ID, fiber.Map{
		"admission_number": student.AdmissionNumber,
		"class_id":         student.ClassID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Student created successfully",
		"student": student,
	})
}

// UpdateStudent updates an existing student record
func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		return errNotFound(c, "Student")
	}

	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.AdmissionNumber != "" && req.AdmissionNumber != student.AdmissionNumber {
		var existing models.Student
		if err := database.DB.Where("admission_number = ? AND id <> ?", req.AdmissionNumber, id).First(&existing).Error; err == nil {
			return errConflict(c, "Admission number already exists")
		}
		student.AdmissionNumber = req.AdmissionNumber
	}
	if req.ClassID != 0 && (student.ClassID == nil || req.ClassID != *student.ClassID) {
		var class models.Class
		if err := database.DB.First(&class, req.ClassID).Error; err != nil {
			return errBadRequest(c, "Class not found")
		}
		student.ClassID = &req.ClassID
	}
	if req.FirstName != "" {
		student.FirstName = req.FirstName
	}
	if req.LastName != "" {
		student.LastName = req.LastName
	}
	if req.DateOfBirth != nil {
		student.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != "" {
		student.Gender = req.Gender
	}
	if req.Address != "" {
		student.Address = req.Address
	}
	if req.Email != "" {
		student.Email = req.Email
	}
	if req.Phone != "" {
		student.Phone = req.Phone
	}
	if req.EnrollmentDate != nil {
		student.EnrollmentDate = req.EnrollmentDate
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&student).Error; err != nil {
			return err
		}
		if req.GuardianIDs != nil {
			var guardians []models.User
			if len(req.GuardianIDs) > 0 {
				if err := tx.Find(&guardians, req.GuardianIDs).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&student).Association("Guardians").Replace(guardians); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errServer(c, "Failed to update student")
	}

	database.DB.Preload("Class").Preload("Guardians").First(&student, student.ID)

	middleware.LogActivity(c, "UPDATE", "students", student.ID, fiber.Map{
		"admission_number": student.AdmissionNumber,
	})

	return c.JSON(fiber.Map{
		"message": "Student updated successfully",
		"student": student,
	})
}

// DeleteStudent removes a student and all dependent records
func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		return errNotFound(c, "Student")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteStudent(tx, id)
	})
	if err != nil {
		return errServer(c, "Failed to delete student")
	}

	middleware.LogActivity(c, "DELETE", "students", id, fiber.Map{
		"admission_number": student.AdmissionNumber,
	})

	return c.JSON(fiber.Map{
		"message": "Student deleted successfully",
	})
}

// UploadStudentPhoto stores a student photo in S3 and saves its URL
func (sc *StudentController) UploadStudentPhoto(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		return errNotFound(c, "Student")
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return errBadRequest(c, "Photo file is required")
	}

	allowed := strings.Split(config.AppConfig.AllowedExtensions, ",")
	if !utils.IsValidFileExtension(file.Filename, allowed) {
		return errBadRequest(c, "File type not allowed")
	}

	store, err := storage.NewPhotoStore()
	if err != nil {
		return errServer(c, "Storage not configured")
	}

	// Replace the old photo if there was one
	if student.PhotoURL != "" {
		_ = store.Delete(student.PhotoURL)
	}

	url, err := store.Upload(file, student.ID)
	if err != nil {
		return errServer(c, "Failed to upload photo")
	}

	if err := database.DB.Model(&student).Update("photo_url", url).Error; err != nil {
		return errServer(c, "Failed to save photo URL")
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, fiber.Map{
		"action": "photo_upload",
	})

	return c.JSON(fiber.Map{
		"message":   "Photo uploaded successfully",
		"photo_url": url,
	})
}
