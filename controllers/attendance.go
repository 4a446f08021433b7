package controllers

import (
	"time"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/policy"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AttendanceController struct{}

// AttendanceEntry is one student's mark on a sheet
type AttendanceEntry struct {
	StudentID uint   `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Remarks   string `json:"remarks"`
}

// AttendanceRequest represents one submitted sheet for a class and date.
// Submitting again for the same class/date replaces the earlier sheet.
type AttendanceRequest struct {
	ClassID uint              `json:"class_id" validate:"required"`
	Date    string            `json:"date" validate:"required"`
	Records []AttendanceEntry `json:"records" validate:"required,min=1"`
}

// GetAttendances lists sheets with optional class/date-range filters
func (ac *AttendanceController) GetAttendances(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Attendance{}).
		Preload("Class").Preload("Records.Student")

	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if from := c.Query("from"); from != "" {
		if date, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("date >= ?", date)
		}
	}
	if to := c.Query("to"); to != "" {
		if date, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("date <= ?", date)
		}
	}

	var sheets []models.Attendance
	if err := query.Order("date DESC").Find(&sheets).Error; err != nil {
		return errServer(c, "Failed to fetch attendance")
	}

	return c.JSON(fiber.Map{
		"attendance": sheets,
	})
}

// GetAttendance returns one sheet by ID
func (ac *AttendanceController) GetAttendance(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid attendance ID")
	}

	var sheet models.Attendance
	if err := database.DB.
		Preload("Class").Preload("Records.Student").
		First(&sheet, id).Error; err != nil {
		return errNotFound(c, "Attendance")
	}

	return c.JSON(fiber.Map{
		"attendance": sheet,
	})
}

// GetClassAttendanceByDate returns the sheet for a class on a given day
func (ac *AttendanceController) GetClassAttendanceByDate(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid class ID")
	}

	date, err := time.Parse("2006-01-02", c.Params("date"))
	if err != nil {
		return errBadRequest(c, "Invalid date format. Use YYYY-MM-DD")
	}

	var class models.Class
	if err := database.DB.First(&class, classID).Error; err != nil {
		return errNotFound(c, "Class")
	}

	var sheet models.Attendance
	if err := database.DB.
		Where("class_id = ? AND date = ?", classID, date).
		Preload("Records.Student").
		First(&sheet).Error; err != nil {
		return errNotFound(c, "Attendance")
	}

	return c.JSON(fiber.Map{
		"attendance": sheet,
	})
}

// GetStudentAttendance lists one student's marks across sheets
func (ac *AttendanceController) GetStudentAttendance(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	var student models.Student
	if err := database.DB.Preload("Class").First(&student, studentID).Error; err != nil {
		return errNotFound(c, "Student")
	}

	principal := principalFrom(c)
	ownerIDs := []uint{}
	if student.Class.ID != 0 {
		ownerIDs = append(ownerIDs, student.Class.ClassTeacherID)
	}
	decision := policy.Decide(principal, policy.Resource{
		Kind:      "attendance",
		OwnerIDs:  ownerIDs,
		StudentID: student.ID,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	type studentAttendanceRow struct {
		AttendanceID uint      `json:"attendance_id"`
		ClassID      uint      `json:"class_id"`
		Date         time.Time `json:"date"`
		Status       string    `json:"status"`
		Remarks      string    `json:"remarks"`
	}

	var records []studentAttendanceRow
	if err := database.DB.Model(&models.AttendanceRecord{}).
		Joins("JOIN attendances ON attendances.id = attendance_records.attendance_id").
		Where("attendance_records.student_id = ?", studentID).
		Select("attendance_records.attendance_id, attendances.class_id, attendances.date, attendance_records.status, attendance_records.remarks").
		Order("attendances.date DESC").
		Find(&records).Error; err != nil {
		return errServer(c, "Failed to fetch attendance")
	}

	return c.JSON(fiber.Map{
		"records": records,
	})
}

// SubmitAttendance records a sheet for a class and date. An existing sheet
// for the same class/date is replaced record by record.
func (ac *AttendanceController) SubmitAttendance(c *fiber.Ctx) error {
	var req AttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return errBadRequest(c, "Invalid date format. Use YYYY-MM-DD")
	}

	var class models.Class
	if err := database.DB.First(&class, req.ClassID).Error; err != nil {
		return errNotFound(c, "Class")
	}

	for _, entry := range req.Records {
		if !utils.IsValidAttendanceStatus(entry.Status) {
			return errBadRequest(c, "Invalid status. Must be one of: Present, Absent, Late, Excused")
		}
	}

	user := currentUser(c)

	var sheet models.Attendance
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("class_id = ? AND date = ?", req.ClassID, date).First(&sheet).Error; err == nil {
			if err := tx.Where("attendance_id = ?", sheet.ID).Delete(&models.AttendanceRecord{}).Error; err != nil {
				return err
			}
			sheet.RecordedByID = user.ID
			if err := tx.Save(&sheet).Error; err != nil {
				return err
			}
		} else {
			sheet = models.Attendance{
				ClassID:      req.ClassID,
				Date:         date,
				RecordedByID: user.ID,
			}
			if err := tx.Create(&sheet).Error; err != nil {
				return err
			}
		}

		for _, entry := range req.Records {
			var student models.Student
			if err := tx.First(&student, entry.StudentID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Student not found")
			}
			record := models.AttendanceRecord{
				AttendanceID: sheet.ID,
				StudentID:    entry.StudentID,
				Status:       entry.Status,
				Remarks:      entry.Remarks,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		return errServer(c, "Failed to record attendance")
	}

	database.DB.Preload("Class").Preload("Records.Student").First(&sheet, sheet.ID)

	middleware.LogActivity(c, "CREATE", "attendance", sheet.ID, fiber.Map{
		"class_id": req.ClassID,
		"date":     req.Date,
		"count":    len(req.Records),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Attendance recorded successfully",
		"attendance": sheet,
	})
}

// DeleteAttendance removes a sheet and its records
func (ac *AttendanceController) DeleteAttendance(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid attendance ID")
	}

	var sheet models.Attendance
	if err := database.DB.First(&sheet, id).Error; err != nil {
		return errNotFound(c, "Attendance")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attendance_id = ?", id).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sheet).Error
	})
	if err != nil {
		return errServer(c, "Failed to delete attendance")
	}

	middleware.LogActivity(c, "DELETE", "attendance", id, nil)

	return c.JSON(fiber.Map{
		"message": "Attendance deleted successfully",
	})
}
