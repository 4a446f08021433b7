package cascade

import (
	"schooladmin_go/models"

	"gorm.io/gorm"
)

// Dependent is one child relation removed when its parent goes away.
// Model is a zero-value GORM model; FK is the column referencing the
// parent. JoinTable names a bare many2many table cleared with raw SQL
// instead of a model delete.
type Dependent struct {
	Model     interface{}
	FK        string
	JoinTable string
}

// table declares every cascade in one place. Handlers never delete child
// rows ad hoc; they call the Delete* functions below, which walk this
// table inside the caller's transaction.
var table = map[string][]Dependent{
	"user": {
		{Model: &models.Teacher{}, FK: "user_id"},
		{Model: &models.Message{}, FK: "sender_id"},
		{Model: &models.ReportCard{}, FK: "generated_by_id"},
		{Model: &models.ActivityLog{}, FK: "user_id"},
		{JoinTable: "user_roles", FK: "user_id"},
		{JoinTable: "student_guardians", FK: "user_id"},
		{JoinTable: "message_recipients", FK: "user_id"},
		{JoinTable: "message_reads", FK: "user_id"},
	},
	"student": {
		{Model: &models.Grade{}, FK: "student_id"},
		{Model: &models.AssessmentScore{}, FK: "student_id"},
		{Model: &models.AttendanceRecord{}, FK: "student_id"},
		{Model: &models.Invoice{}, FK: "student_id"},
		{Model: &models.Payment{}, FK: "student_id"},
		{Model: &models.BusAssignment{}, FK: "student_id"},
		{Model: &models.RoomAssignment{}, FK: "student_id"},
		{Model: &models.ReportCard{}, FK: "student_id"},
		{JoinTable: "student_guardians", FK: "student_id"},
	},
	"teacher": {
		{Model: &models.ClassSubject{}, FK: "teacher_id"},
		{JoinTable: "teacher_subjects", FK: "teacher_id"},
		{JoinTable: "teacher_classes", FK: "teacher_id"},
	},
	"class": {
		{Model: &models.ClassSubject{}, FK: "class_id"},
		{Model: &models.ReportCard{}, FK: "class_id"},
		{Model: &models.Grade{}, FK: "class_id"},
		{JoinTable: "subject_classes", FK: "class_id"},
		{JoinTable: "teacher_classes", FK: "class_id"},
	},
	"subject": {
		{Model: &models.ClassSubject{}, FK: "subject_id"},
		{Model: &models.Grade{}, FK: "subject_id"},
		{JoinTable: "subject_teachers", FK: "subject_id"},
		{JoinTable: "subject_classes", FK: "subject_id"},
		{JoinTable: "teacher_subjects", FK: "subject_id"},
	},
	"assessment": {
		{Model: &models.AssessmentScore{}, FK: "assessment_id"},
	},
	"attendance": {
		{Model: &models.AttendanceRecord{}, FK: "attendance_id"},
	},
	"message": {
		{JoinTable: "message_recipients", FK: "message_id"},
		{JoinTable: "message_reads", FK: "message_id"},
	},
	"bus": {
		{Model: &models.BusAssignment{}, FK: "bus_id"},
	},
	"hostel": {
		{Model: &models.RoomAssignment{}, FK: "hostel_id"},
	},
}

// Dependents exposes the declared children of a parent kind.
func Dependents(kind string) []Dependent {
	return table[kind]
}

// Kinds lists every parent kind the engine knows about.
func Kinds() []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	return out
}

// fanOut removes every declared dependent of (kind, id) inside tx.
func fanOut(tx *gorm.DB, kind string, id uint) error {
	for _, d := range table[kind] {
		if d.JoinTable != "" {
			if err := tx.Exec("DELETE FROM "+d.JoinTable+" WHERE "+d.FK+" = ?", id).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Where(d.FK+" = ?", id).Delete(d.Model).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteUser removes a user and its dependents.
func DeleteUser(tx *gorm.DB, id uint) error {
	// The teacher profile cascade runs first so class-subject links held
	// through the profile go with it.
	var teacher models.Teacher
	if err := tx.Where("user_id = ?", id).First(&teacher).Error; err == nil {
		if err := DeleteTeacher(tx, teacher.ID); err != nil {
			return err
		}
	}
	if err := fanOut(tx, "user", id); err != nil {
		return err
	}
	return tx.Delete(&models.User{}, id).Error
}

// DeleteStudent removes a student and everything recorded about them,
// including their rows on shared attendance sheets.
func DeleteStudent(tx *gorm.DB, id uint) error {
	if err := fanOut(tx, "student", id); err != nil {
		return err
	}
	return tx.Delete(&models.Student{}, id).Error
}

// DeleteTeacher removes a teacher profile and its subject assignments.
// The linked user account is left in place.
func DeleteTeacher(tx *gorm.DB, id uint) error {
	if err := fanOut(tx, "teacher", id); err != nil {
		return err
	}
	return tx.Delete(&models.Teacher{}, id).Error
}

// DeleteClass removes a class, its enrolled students (each through the
// full student cascade), its attendance sheets and assessments.
func DeleteClass(tx *gorm.DB, id uint) error {
	var studentIDs []uint
	if err := tx.Model(&models.Student{}).Where("class_id = ?", id).Pluck("id", &studentIDs).Error; err != nil {
		return err
	}
	for _, sid := range studentIDs {
		if err := DeleteStudent(tx, sid); err != nil {
			return err
		}
	}

	var attendanceIDs []uint
	if err := tx.Model(&models.Attendance{}).Where("class_id = ?", id).Pluck("id", &attendanceIDs).Error; err != nil {
		return err
	}
	for _, aid := range attendanceIDs {
		if err := DeleteAttendance(tx, aid); err != nil {
			return err
		}
	}

	var assessmentIDs []uint
	if err := tx.Model(&models.Assessment{}).Where("class_id = ?", id).Pluck("id", &assessmentIDs).Error; err != nil {
		return err
	}
	for _, aid := range assessmentIDs {
		if err := DeleteAssessment(tx, aid); err != nil {
			return err
		}
	}

	if err := fanOut(tx, "class", id); err != nil {
		return err
	}
	return tx.Delete(&models.Class{}, id).Error
}

// DeleteSubject removes a subject, its class links and its grades.
func DeleteSubject(tx *gorm.DB, id uint) error {
	if err := fanOut(tx, "subject", id); err != nil {
		return err
	}
	return tx.Delete(&models.Subject{}, id).Error
}

// DeleteAssessment removes an assessment and its score rows. Grades that
// referenced the assessment keep their values with the link cleared.
func DeleteAssessment(tx *gorm.DB, id uint) error {
	if err := fanOut(tx, "assessment", id); err != nil {
		return err
	}
	if err := tx.Model(&models.Grade{}).Where("assessment_id = ?", id).Update("assessment_id", nil).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Assessment{}, id).Error
}

// DeleteAttendance removes a sheet and its per-student records.
func DeleteAttendance(tx *gorm.DB, id uint) error {
	if err := fanOut(tx, "attendance", id); err != nil {
		return err
	}
	return tx.Delete(&models.Attendance{}, id).Error
}

// DeleteMessage removes a message and its recipient/read links.
func DeleteMessage(tx *gorm.DB, id uint) error {
	if err := fanOut(tx, "message", id); err != nil {
		return err
	}
	return tx.Delete(&models.Message{}, id).Error
}

// DeleteBus removes a bus and its student assignments.
func DeleteBus(tx *gorm.DB, id uint) error {
	if err := fanOut(tx, "bus", id); err != nil {
		return err
	}
	return tx.Delete(&models.Bus{}, id).Error
}

// DeleteHostel removes a hostel and its room assignments.
func DeleteHostel(tx *gorm.DB, id uint) error {
	if err := fanOut(tx, "hostel", id); err != nil {
		return err
	}
	return tx.Delete(&models.Hostel{}, id).Error
}
