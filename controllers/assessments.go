package controllers

import (
	"time"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/cascade"
	"schooladmin_go/services/policy"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssessmentController struct{}

// AssessmentRequest represents the create/update body
type AssessmentRequest struct {
	Title     string  `json:"title" validate:"required"`
	SubjectID uint    `json:"subject_id" validate:"required"`
	ClassID   uint    `json:"class_id" validate:"required"`
	Term      string  `json:"term" validate:"required"`
	Session   string  `json:"session" validate:"required"`
	MaxScore  float64 `json:"max_score" validate:"required,gte=1"`
	Date      string  `json:"date"`
}

// ScoreEntry is one student's score in a bulk submission
type ScoreEntry struct {
	StudentID uint    `json:"student_id" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0"`
	Feedback  string  `json:"feedback"`
}

// visibleStudentIDs are the student profiles the caller may see under
// the student-self and guardian-ward rules.
func visibleStudentIDs(p policy.Principal) []uint {
	var ids []uint
	if p.StudentID != 0 {
		ids = append(ids, p.StudentID)
	}
	return append(ids, p.Wards...)
}

// GetAssessments lists assessments with optional class/subject/term
// filters. Non-admin callers see a role-scoped slice: teachers get
// assessments they created or that target their class, students and
// guardians get assessments with a score entry for a visible student.
func (ac *AssessmentController) GetAssessments(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Assessment{}).
		Preload("Subject").Preload("Class")

	principal := principalFrom(c)
	switch {
	case principal.HasRole("admin"):
		// unscoped
	case principal.HasRole("teacher"):
		query = query.Where(
			"created_by_id = ? OR class_id IN (?)",
			principal.UserID,
			database.DB.Model(&models.Class{}).Select("id").
				Where("class_teacher_id = ?", principal.UserID),
		)
	default:
		visible := visibleStudentIDs(principal)
		if len(visible) == 0 {
			return errForbidden(c)
		}
		query = query.Where(
			"id IN (?)",
			database.DB.Model(&models.AssessmentScore{}).Select("assessment_id").
				Where("student_id IN ?", visible),
		)
	}

	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if subjectID := c.Query("subject_id"); subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}
	if term := c.Query("term"); term != "" {
		query = query.Where("term = ?", term)
	}
	if session := c.Query("session"); session != "" {
		query = query.Where("session = ?", session)
	}

	var assessments []models.Assessment
	if err := query.Order("date DESC, id DESC").Find(&assessments).Error; err != nil {
		return errServer(c, "Failed to fetch assessments")
	}

	return c.JSON(fiber.Map{
		"assessments": assessments,
	})
}

// GetAssessment returns one assessment with its scores. Restricted
// callers (student-self, guardian-ward) only see score entries for
// students visible to them.
func (ac *AssessmentController) GetAssessment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid assessment ID")
	}

	var assessment models.Assessment
	if err := database.DB.
		Preload("Subject").Preload("Class").
		Preload("Scores.Student").
		First(&assessment, id).Error; err != nil {
		return errNotFound(c, "Assessment")
	}

	scoreStudents := make([]uint, 0, len(assessment.Scores))
	for _, s := range assessment.Scores {
		scoreStudents = append(scoreStudents, s.StudentID)
	}

	principal := principalFrom(c)
	decision := policy.Decide(principal, policy.Resource{
		Kind:       "assessment",
		OwnerIDs:   []uint{assessment.CreatedByID, assessment.Class.ClassTeacherID},
		StudentIDs: scoreStudents,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	if decision == policy.AllowRestricted {
		visible := make(map[uint]bool)
		for _, id := range policy.VisibleStudents(principal, scoreStudents) {
			visible[id] = true
		}
		kept := assessment.Scores[:0]
		for _, s := range assessment.Scores {
			if visible[s.StudentID] {
				kept = append(kept, s)
			}
		}
		assessment.Scores = kept
	}

	return c.JSON(fiber.Map{
		"assessment": assessment,
	})
}

// CreateAssessment creates a new assessment
func (ac *AssessmentController) CreateAssessment(c *fiber.Ctx) error {
	var req AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}
	if !utils.IsValidTerm(req.Term) {
		return errBadRequest(c, "Invalid term. Must be one of: 1st, 2nd, 3rd")
	}

	var subject models.Subject
	if err := database.DB.First(&subject, req.SubjectID).Error; err != nil {
		return errNotFound(c, "Subject")
	}
	var class models.Class
	if err := database.DB.First(&class, req.ClassID).Error; err != nil {
		return errNotFound(c, "Class")
	}

	user := currentUser(c)

	assessment := models.Assessment{
		Title:       req.Title,
		SubjectID:   req.SubjectID,
		ClassID:     req.ClassID,
		Term:        req.Term,
		Session:     req.Session,
		MaxScore:    req.MaxScore,
		Date:        time.Now(),
		CreatedByID: user.ID,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return errBadRequest(c, "Invalid date format. Use YYYY-MM-DD")
		}
		assessment.Date = date
	}

	if err := database.DB.Create(&assessment).Error; err != nil {
		return errServer(c, "Failed to create assessment")
	}

	database.DB.Preload("Subject").Preload("Class").First(&assessment, assessment.ID)

	middleware.LogActivity(c, "CREATE", "assessments", assessment.ID, fiber.Map{
		"title":    assessment.Title,
		"class_id": assessment.ClassID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Assessment created successfully",
		"assessment": assessment,
	})
}

// UpdateAssessment updates an assessment
func (ac *AssessmentController) UpdateAssessment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid assessment ID")
	}

	var assessment models.Assessment
	if err := database.DB.First(&assessment, id).Error; err != nil {
		return errNotFound(c, "Assessment")
	}

	var req AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.Title != "" {
		assessment.Title = req.Title
	}
	if req.Term != "" {
		if !utils.IsValidTerm(req.Term) {
			return errBadRequest(c, "Invalid term. Must be one of: 1st, 2nd, 3rd")
		}
		assessment.Term = req.Term
	}
	if req.Session != "" {
		assessment.Session = req.Session
	}
	if req.MaxScore > 0 {
		assessment.MaxScore = req.MaxScore
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return errBadRequest(c, "Invalid date format. Use YYYY-MM-DD")
		}
		assessment.Date = date
	}

	if err := database.DB.Save(&assessment).Error; err != nil {
		return errServer(c, "Failed to update assessment")
	}

	middleware.LogActivity(c, "UPDATE", "assessments", assessment.ID, fiber.Map{
		"title": assessment.Title,
	})

	return c.JSON(fiber.Map{
		"message":    "Assessment updated successfully",
		"assessment": assessment,
	})
}

// DeleteAssessment removes an assessment and its scores; grades that
// referenced it keep their values with the link cleared
func (ac *AssessmentController) DeleteAssessment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid assessment ID")
	}

	var assessment models.Assessment
	if err := database.DB.First(&assessment, id).Error; err != nil {
		return errNotFound(c, "Assessment")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteAssessment(tx, id)
	})
	if err != nil {
		return errServer(c, "Failed to delete assessment")
	}

	middleware.LogActivity(c, "DELETE", "assessments", id, fiber.Map{
		"title": assessment.Title,
	})

	return c.JSON(fiber.Map{
		"message": "Assessment deleted successfully",
	})
}

// SubmitScores records scores for an assessment in bulk; a resubmitted
// student score overwrites the previous one
func (ac *AssessmentController) SubmitScores(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid assessment ID")
	}

	var assessment models.Assessment
	if err := database.DB.First(&assessment, id).Error; err != nil {
		return errNotFound(c, "Assessment")
	}

	var req struct {
		Scores []ScoreEntry `json:"scores" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if len(req.Scores) == 0 {
		return errBadRequest(c, "At least one score is required")
	}

	for _, entry := range req.Scores {
		if entry.Score < 0 || entry.Score > assessment.MaxScore {
			return errBadRequest(c, "Score must be between 0 and the assessment max score")
		}
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for _, entry := range req.Scores {
			var student models.Student
			if err := tx.First(&student, entry.StudentID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Student not found")
			}

			score := models.AssessmentScore{
				AssessmentID: assessment.ID,
				StudentID:    entry.StudentID,
				Score:        entry.Score,
				Feedback:     entry.Feedback,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "assessment_id"}, {Name: "student_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"score", "feedback", "updated_at"}),
			}).Create(&score).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		return errServer(c, "Failed to submit scores")
	}

	middleware.LogActivity(c, "UPDATE", "assessment_scores", assessment.ID, fiber.Map{
		"count": len(req.Scores),
	})

	return c.JSON(fiber.Map{
		"message": "Scores submitted successfully",
		"count":   len(req.Scores),
	})
}
