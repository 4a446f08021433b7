package controllers

import (
	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/policy"
	"schooladmin_go/services/reports"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
)

type GradeController struct{}

// GradeRequest represents the create/update body
type GradeRequest struct {
	StudentID    uint    `json:"student_id" validate:"required"`
	AssessmentID *uint   `json:"assessment_id"`
	SubjectID    uint    `json:"subject_id" validate:"required"`
	ClassID      uint    `json:"class_id" validate:"required"`
	Term         string  `json:"term" validate:"required"`
	Session      string  `json:"session" validate:"required"`
	Score        float64 `json:"score" validate:"gte=0"`
	Remarks      string  `json:"remarks"`
}

func gradeLetter(score float64) string {
	var scale []models.GradeScale
	if err := database.DB.Order("min_score DESC").Find(&scale).Error; err != nil {
		return ""
	}
	return reports.LetterFor(score, scale)
}

// GetGrades lists grades with optional filters
func (gc *GradeController) GetGrades(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Grade{}).
		Preload("Student").Preload("Subject").Preload("Class")

	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if term := c.Query("term"); term != "" {
		query = query.Where("term = ?", term)
	}
	if session := c.Query("session"); session != "" {
		query = query.Where("session = ?", session)
	}

	var grades []models.Grade
	if err := query.Order("id DESC").Find(&grades).Error; err != nil {
		return errServer(c, "Failed to fetch grades")
	}

	return c.JSON(fiber.Map{
		"grades": grades,
	})
}

// GetGrade returns one grade by ID
func (gc *GradeController) GetGrade(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid grade ID")
	}

	var grade models.Grade
	if err := database.DB.
		Preload("Student").Preload("Subject").Preload("Class").Preload("GradedBy").
		First(&grade, id).Error; err != nil {
		return errNotFound(c, "Grade")
	}

	principal := principalFrom(c)
	decision := policy.Decide(principal, policy.Resource{
		Kind:      "grade",
		OwnerIDs:  []uint{grade.GradedByID},
		StudentID: grade.StudentID,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	return c.JSON(fiber.Map{
		"grade": grade,
	})
}

// GetStudentGrades lists one student's grades, optionally per term/session
func (gc *GradeController) GetStudentGrades(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	var student models.Student
	if err := database.DB.Preload("Class").First(&student, studentID).Error; err != nil {
		return errNotFound(c, "Student")
	}

	principal := principalFrom(c)
	decision := policy.Decide(principal, policy.Resource{
		Kind:      "grade",
		OwnerIDs:  []uint{student.Class.ClassTeacherID},
		StudentID: student.ID,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	query := database.DB.Where("student_id = ?", studentID).
		Preload("Subject").Preload("Class")
	if term := c.Query("term"); term != "" {
		query = query.Where("term = ?", term)
	}
	if session := c.Query("session"); session != "" {
		query = query.Where("session = ?", session)
	}

	var grades []models.Grade
	if err := query.Order("id DESC").Find(&grades).Error; err != nil {
		return errServer(c, "Failed to fetch grades")
	}

	return c.JSON(fiber.Map{
		"grades": grades,
	})
}

// GetSubjectGrades lists grades of a subject, optionally per class/term
func (gc *GradeController) GetSubjectGrades(c *fiber.Ctx) error {
	subjectID, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := database.DB.First(&subject, subjectID).Error; err != nil {
		return errNotFound(c, "Subject")
	}

	query := database.DB.Where("subject_id = ?", subjectID).
		Preload("Student").Preload("Class")
	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if term := c.Query("term"); term != "" {
		query = query.Where("term = ?", term)
	}

	var grades []models.Grade
	if err := query.Order("id DESC").Find(&grades).Error; err != nil {
		return errServer(c, "Failed to fetch grades")
	}

	return c.JSON(fiber.Map{
		"grades": grades,
	})
}

// CreateGrade records a grade; the letter is derived from the grade scale
func (gc *GradeController) CreateGrade(c *fiber.Ctx) error {
	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}
	if !utils.IsValidTerm(req.Term) {
		return errBadRequest(c, "Invalid term. Must be one of: 1st, 2nd, 3rd")
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return errNotFound(c, "Student")
	}
	var subject models.Subject
	if err := database.DB.First(&subject, req.SubjectID).Error; err != nil {
		return errNotFound(c, "Subject")
	}
	var class models.Class
	if err := database.DB.First(&class, req.ClassID).Error; err != nil {
		return errNotFound(c, "Class")
	}
	if req.AssessmentID != nil {
		var assessment models.Assessment
		if err := database.DB.First(&assessment, *req.AssessmentID).Error; err != nil {
			return errNotFound(c, "Assessment")
		}
	}

	user := currentUser(c)

	grade := models.Grade{
		StudentID:    req.StudentID,
		AssessmentID: req.AssessmentID,
		SubjectID:    req.SubjectID,
		ClassID:      req.ClassID,
		Term:         req.Term,
		Session:      req.Session,
		Score:        req.Score,
		Grade:        gradeLetter(req.Score),
		Remarks:      req.Remarks,
		GradedByID:   user.ID,
	}

	if err := database.DB.Create(&grade).Error; err != nil {
		return errServer(c, "Failed to create grade")
	}

	database.DB.Preload("Student").Preload("Subject").Preload("Class").First(&grade, grade.ID)

	middleware.LogActivity(c, "CREATE", "grades", grade.ID, fiber.Map{
		"student_id": grade.StudentID,
		"subject_id": grade.SubjectID,
		"score":      grade.Score,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Grade recorded successfully",
		"grade":   grade,
	})
}

// UpdateGrade updates score/remarks; the letter follows the score
func (gc *GradeController) UpdateGrade(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid grade ID")
	}

	var grade models.Grade
	if err := database.DB.First(&grade, id).Error; err != nil {
		return errNotFound(c, "Grade")
	}

	var req struct {
		Score   *float64 `json:"score"`
		Remarks *string  `json:"remarks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.Score != nil {
		if *req.Score < 0 {
			return errBadRequest(c, "Score cannot be negative")
		}
		grade.Score = *req.Score
		grade.Grade = gradeLetter(*req.Score)
	}
	if req.Remarks != nil {
		grade.Remarks = *req.Remarks
	}

	if err := database.DB.Save(&grade).Error; err != nil {
		return errServer(c, "Failed to update grade")
	}

	middleware.LogActivity(c, "UPDATE", "grades", grade.ID, fiber.Map{
		"score": grade.Score,
	})

	return c.JSON(fiber.Map{
		"message": "Grade updated successfully",
		"grade":   grade,
	})
}

// DeleteGrade removes a grade
func (gc *GradeController) DeleteGrade(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid grade ID")
	}

	var grade models.Grade
	if err := database.DB.First(&grade, id).Error; err != nil {
		return errNotFound(c, "Grade")
	}

	if err := database.DB.Delete(&grade).Error; err != nil {
		return errServer(c, "Failed to delete grade")
	}

	middleware.LogActivity(c, "DELETE", "grades", id, fiber.Map{
		"student_id": grade.StudentID,
	})

	return c.JSON(fiber.Map{
		"message": "Grade deleted successfully",
	})
}
