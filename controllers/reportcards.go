package controllers

import (
	"time"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/policy"
	"schooladmin_go/services/reports"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

type ReportCardController struct{}

// GetReportCard recomputes a student's report card for a term and session.
// Scores always come live from grade rows; only the remarks are cached.
func (rc *ReportCardController) GetReportCard(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "studentId")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	term := c.Query("term")
	session := c.Query("session")
	if term == "" || session == "" {
		return errBadRequest(c, "term and session query parameters are required")
	}
	if !utils.IsValidTerm(term) {
		return errBadRequest(c, "Invalid term. Must be one of: 1st, 2nd, 3rd")
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
		Kind:      "report_card",
		OwnerIDs:  ownerIDs,
		StudentID: student.ID,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	var grades []models.Grade
	if err := database.DB.
		Where("student_id = ? AND term = ? AND session = ?", studentID, term, session).
		Preload("Subject").
		Find(&grades).Error; err != nil {
		return errServer(c, "Failed to fetch grades")
	}

	summary, err := reports.Build(grades)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No grades found for this term/session"})
	}

	// Rank against classmates' averages for the same term/session.
	if student.ClassID != nil {
		var classmateIDs []uint
		if err := database.DB.Model(&models.Student{}).
			Where("class_id = ?", *student.ClassID).
			Pluck("id", &classmateIDs).Error; err != nil {
			return errServer(c, "Failed to compute class position")
		}

		var classGrades []models.Grade
		if err := database.DB.
			Where("student_id IN ? AND term = ? AND session = ?", classmateIDs, term, session).
			Find(&classGrades).Error; err != nil {
			return errServer(c, "Failed to compute class position")
		}

		byStudent := make(map[uint][]models.Grade)
		for _, g := range classGrades {
			byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
		}
		averages := make([]float64, 0, len(byStudent))
		for _, gs := range byStudent {
			_, _, avg := reports.Aggregate(gs)
			averages = append(averages, avg)
		}
		summary.Position = reports.Position(summary.Average, averages)
	}

	var card models.ReportCard
	remarks := ""
	if err := database.DB.
		Where("student_id = ? AND term = ? AND session = ?", studentID, term, session).
		First(&card).Error; err == nil {
		remarks = card.Remarks
	}

	return c.JSON(fiber.Map{
		"student":     student,
		"term":        term,
		"session":     session,
		"report_card": summary,
		"remarks":     remarks,
	})
}

// UpdateRemarks creates or updates the cached teacher commentary for one
// (student, class, term, session) key
func (rc *ReportCardController) UpdateRemarks(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "studentId")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	var req struct {
		Term    string `json:"term" validate:"required"`
		Session string `json:"session" validate:"required"`
		Remarks string `json:"remarks" validate:"required"`
	}
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
	if err := database.DB.First(&student, studentID).Error; err != nil {
		return errNotFound(c, "Student")
	}
	if student.ClassID == nil {
		return errBadRequest(c, "Student is not assigned to a class")
	}

	user := currentUser(c)

	card := models.ReportCard{
		StudentID:     student.ID,
		ClassID:       *student.ClassID,
		Term:          req.Term,
		Session:       req.Session,
		Remarks:       req.Remarks,
		GeneratedByID: user.ID,
		GeneratedAt:   time.Now(),
	}
	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "class_id"}, {Name: "term"}, {Name: "session"}},
		DoUpdates: clause.AssignmentColumns([]string{"remarks", "generated_by_id", "generated_at", "updated_at"}),
	}).Create(&card).Error; err != nil {
		return errServer(c, "Failed to save remarks")
	}

	middleware.LogActivity(c, "UPDATE", "report_cards", card.ID, fiber.Map{
		"student_id": studentID,
		"term":       req.Term,
		"session":    req.Session,
	})

	return c.JSON(fiber.Map{
		"message":     "Remarks saved successfully",
		"report_card": card,
	})
}
