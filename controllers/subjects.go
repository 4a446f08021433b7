package controllers

import (
	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/cascade"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubjectController struct{}

// SubjectRequest represents the create/update body
type SubjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	TeacherIDs  []uint `json:"teacher_ids"`
	ClassIDs    []uint `json:"class_ids"`
}

// GetSubjects returns all subjects
func (sc *SubjectController) GetSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject
	if err := database.DB.Preload("Teachers").Preload("Classes").Find(&subjects).Error; err != nil {
		return errServer(c, "Failed to fetch subjects")
	}

	return c.JSON(fiber.Map{
		"subjects": subjects,
	})
}

// GetSubject returns a specific subject by ID
func (sc *SubjectController) GetSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := database.DB.Preload("Teachers").Preload("Classes").First(&subject, id).Error; err != nil {
		return errNotFound(c, "Subject")
	}

	return c.JSON(fiber.Map{
		"subject": subject,
	})
}

// CreateSubject creates a new subject
func (sc *SubjectController) CreateSubject(c *fiber.Ctx) error {
	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var existing models.Subject
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return errConflict(c, "Subject already exists")
	}

	subject := models.Subject{
		Name:        req.Name,
		Description: req.Description,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subject).Error; err != nil {
			return err
		}
		return sc.replaceAssignments(tx, &subject, req.TeacherIDs, req.ClassIDs)
	})
	if err != nil {
		return errServer(c, "Failed to create subject")
	}

	database.DB.Preload("Teachers").Preload("Classes").First(&subject, subject.ID)

	middleware.LogActivity(c, "CREATE", "subjects", subject.ID, fiber.Map{
		"name": subject.Name,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Subject created successfully",
		"subject": subject,
	})
}

// UpdateSubject updates a subject and its assignments
func (sc *SubjectController) UpdateSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := database.DB.First(&subject, id).Error; err != nil {
		return errNotFound(c, "Subject")
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.Name != "" && req.Name != subject.Name {
		var existing models.Subject
		if err := database.DB.Where("name = ? AND id <> ?", req.Name, id).First(&existing).Error; err == nil {
			return errConflict(c, "Subject already exists")
		}
		subject.Name = req.Name
	}
	if req.Description != "" {
		subject.Description = req.Description
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&subject).Error; err != nil {
			return err
		}
		return sc.replaceAssignments(tx, &subject, req.TeacherIDs, req.ClassIDs)
	})
	if err != nil {
		return errServer(c, "Failed to update subject")
	}

	database.DB.Preload("Teachers").Preload("Classes").First(&subject, subject.ID)

	middleware.LogActivity(c, "UPDATE", "subjects", subject.ID, fiber.Map{
		"name": subject.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Subject updated successfully",
		"subject": subject,
	})
}

// replaceAssignments swaps teacher/class links when the request carries
// them; nil slices leave the existing links alone.
func (sc *SubjectController) replaceAssignments(tx *gorm.DB, subject *models.Subject, teacherIDs, classIDs []uint) error {
	if teacherIDs != nil {
		var teachers []models.User
		if len(teacherIDs) > 0 {
			if err := tx.Find(&teachers, teacherIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(subject).Association("Teachers").Replace(teachers); err != nil {
			return err
		}
	}
	if classIDs != nil {
		var classes []models.Class
		if len(classIDs) > 0 {
			if err := tx.Find(&classes, classIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(subject).Association("Classes").Replace(classes); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSubject removes a subject, its class links and its grades
func (sc *SubjectController) DeleteSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := database.DB.First(&subject, id).Error; err != nil {
		return errNotFound(c, "Subject")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteSubject(tx, id)
	})
	if err != nil {
		return errServer(c, "Failed to delete subject")
	}

	middleware.LogActivity(c, "DELETE", "subjects", id, fiber.Map{
		"name": subject.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Subject deleted successfully",
	})
}

// AssignTeacher adds a teacher to a subject
func (sc *SubjectController) AssignTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := database.DB.First(&subject, id).Error; err != nil {
		return errNotFound(c, "Subject")
	}

	var req struct {
		TeacherID uint `json:"teacher_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	var teacher models.User
	if err := database.DB.First(&teacher, req.TeacherID).Error; err != nil {
		return errNotFound(c, "Teacher")
	}

	if err := database.DB.Model(&subject).Association("Teachers").Append(&teacher); err != nil {
		return errServer(c, "Failed to assign teacher")
	}

	middleware.LogActivity(c, "UPDATE", "subjects", id, fiber.Map{
		"assigned_teacher_id": req.TeacherID,
	})

	return c.JSON(fiber.Map{
		"message": "Teacher assigned successfully",
	})
}

// RemoveTeacher removes a teacher from a subject
func (sc *SubjectController) RemoveTeacher(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid subject ID")
	}
	teacherID, err := parseIDParam(c, "teacherId")
	if err != nil {
		return errBadRequest(c, "Invalid teacher ID")
	}

	var subject models.Subject
	if err := database.DB.First(&subject, id).Error; err != nil {
		return errNotFound(c, "Subject")
	}

	var teacher models.User
	if err := database.DB.First(&teacher, teacherID).Error; err != nil {
		return errNotFound(c, "Teacher")
	}

	if err := database.DB.Model(&subject).Association("Teachers").Delete(&teacher); err != nil {
		return errServer(c, "Failed to remove teacher")
	}

	middleware.LogActivity(c, "UPDATE", "subjects", id, fiber.Map{
		"removed_teacher_id": teacherID,
	})

	return c.JSON(fiber.Map{
		"message": "Teacher removed successfully",
	})
}

// AssignClass adds a class to a subject
func (sc *SubjectController) AssignClass(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := database.DB.First(&subject, id).Error; err != nil {
		return errNotFound(c, "Subject")
	}

	var req struct {
		ClassID uint `json:"class_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	var class models.Class
	if err := database.DB.First(&class, req.ClassID).Error; err != nil {
		return errNotFound(c, "Class")
	}

	if err := database.DB.Model(&subject).Association("Classes").Append(&class); err != nil {
		return errServer(c, "Failed to assign class")
	}

	middleware.LogActivity(c, "UPDATE", "subjects", id, fiber.Map{
		"assigned_class_id": req.ClassID,
	})

	return c.JSON(fiber.Map{
		"message": "Class assigned successfully",
	})
}

// RemoveClass removes a class from a subject
func (sc *SubjectController) RemoveClass(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid subject ID")
	}
	classID, err := parseIDParam(c, "classId")
	if err != nil {
		return errBadRequest(c, "Invalid class ID")
	}

	var subject models.Subject
	if err := database.DB.First(&subject, id).Error; err != nil {
		return errNotFound(c, "Subject")
	}

	var class models.Class
	if err := database.DB.First(&class, classID).Error; err != nil {
		return errNotFound(c, "Class")
	}

	if err := database.DB.Model(&subject).Association("Classes").Delete(&class); err != nil {
		return errServer(c, "Failed to remove class")
	}

	middleware.LogActivity(c, "UPDATE", "subjects", id, fiber.Map{
		"removed_class_id": classID,
	})

	return c.JSON(fiber.Map{
		"message": "Class removed successfully",
	})
}

// AssignClassSubject links a subject to a class with a teaching teacher
func (sc *SubjectController) AssignClassSubject(c *fiber.Ctx) error {
	var req struct {
		ClassID   uint `json:"class_id" validate:"required"`
		SubjectID uint `json:"subject_id" validate:"required"`
		TeacherID uint `json:"teacher_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var class models.Class
	if err := database.DB.First(&class, req.ClassID).Error; err != nil {
		return errNotFound(c, "Class")
	}
	var subject models.Subject
	if err := database.DB.First(&subject, req.SubjectID).Error; err != nil {
		return errNotFound(c, "Subject")
	}
	var teacher models.Teacher
	if err := database.DB.First(&teacher, req.TeacherID).Error; err != nil {
		return errNotFound(c, "Teacher")
	}

	var existing models.ClassSubject
	if err := database.DB.Where("class_id = ? AND subject_id = ?", req.ClassID, req.SubjectID).First(&existing).Error; err == nil {
		return errConflict(c, "Subject is already assigned to this class")
	}

	cs := models.ClassSubject{
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
	}
	if err := database.DB.Create(&cs).Error; err != nil {
		return errServer(c, "Failed to assign subject")
	}

	database.DB.Preload("Class").Preload("Subject").Preload("Teacher.User").First(&cs, cs.ID)

	middleware.LogActivity(c, "CREATE", "class_subjects", cs.ID, fiber.Map{
		"class_id":   cs.ClassID,
		"subject_id": cs.SubjectID,
		"teacher_id": cs.TeacherID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Subject assigned successfully",
		"class_subject": cs,
	})
}

// GetClassSubjects lists subject assignments, optionally per class
func (sc *SubjectController) GetClassSubjects(c *fiber.Ctx) error {
	query := database.DB.Model(&models.ClassSubject{}).
		Preload("Class").Preload("Subject").Preload("Teacher.User")

	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}

	var assignments []models.ClassSubject
	if err := query.Find(&assignments).Error; err != nil {
		return errServer(c, "Failed to fetch class subjects")
	}

	return c.JSON(fiber.Map{
		"class_subjects": assignments,
	})
}

// RemoveClassSubject removes a class-subject assignment
func (sc *SubjectController) RemoveClassSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid assignment ID")
	}

	var cs models.ClassSubject
	if err := database.DB.First(&cs, id).Error; err != nil {
		return errNotFound(c, "Class subject")
	}

	if err := database.DB.Delete(&cs).Error; err != nil {
		return errServer(c, "Failed to remove assignment")
	}

	middleware.LogActivity(c, "DELETE", "class_subjects", id, nil)

	return c.JSON(fiber.Map{
		"message": "Assignment removed successfully",
	})
}
