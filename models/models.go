package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Role model. Roles are referenced by name throughout the authorization
// policy (admin, teacher, student, guardian, finance).
type Role struct {
	BaseModel
	Name        string `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description string `json:"description" gorm:"size:255"`
}

// User model
type User struct {
	BaseModel
	Username string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Email    string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	FullName string `json:"full_name" gorm:"size:200"`
	IsActive bool   `json:"is_active" gorm:"default:true"`

	// Relationships
	Roles []Role `json:"roles,omitempty" gorm:"many2many:user_roles"`
}

// Student model. AdmissionNumber is the domain-readable secondary key.
type Student struct {
	BaseModel
	AdmissionNumber string     `json:"admission_number" gorm:"size:50;not null;uniqueIndex"`
	UserID          *uint      `json:"user_id" gorm:"uniqueIndex"`
	FirstName       string     `json:"first_name" gorm:"size:100;not null"`
	LastName        string     `json:"last_name" gorm:"size:100;not null"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	Gender          string     `json:"gender" gorm:"size:20"`
	Address         string     `json:"address" gorm:"size:500"`
	Email           string     `json:"email" gorm:"size:255;index"`
	Phone           string     `json:"phone" gorm:"size:20"`
	ClassID         *uint      `json:"class_id" gorm:"index"`
	EnrollmentDate  *time.Time `json:"enrollment_date"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
	PhotoURL        string     `json:"photo_url" gorm:"size:500"`
	MedicalInfo     JSON       `json:"medical_info" gorm:"type:json"`

	// Relationships. Guardians are users carrying the guardian role; the
	// join table backs the ward list embedded in auth tokens.
	Class     Class  `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Guardians []User `json:"guardians,omitempty" gorm:"many2many:student_guardians"`
}

// Teacher model. EmployeeNumber is the domain-readable secondary key.
type Teacher struct {
	BaseModel
	EmployeeNumber string     `json:"employee_number" gorm:"size:50;not null;uniqueIndex"`
	UserID         uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	HireDate       *time.Time `json:"hire_date"`

	// Relationships
	User     User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Subjects []Subject `json:"subjects,omitempty" gorm:"many2many:teacher_subjects"`
	Classes  []Class   `json:"classes,omitempty" gorm:"many2many:teacher_classes"`
}

// Class model
type Class struct {
	BaseModel
	Name           string `json:"name" gorm:"size:100;not null"`
	Section        string `json:"section" gorm:"size:50"`
	ClassTeacherID uint   `json:"class_teacher_id" gorm:"index"`

	// Relationships. ClassTeacher is a User reference, matching the
	// ownership checks in the authorization policy.
	ClassTeacher User      `json:"class_teacher,omitempty" gorm:"foreignKey:ClassTeacherID"`
	Students     []Student `json:"students,omitempty" gorm:"foreignKey:ClassID"`
}

// Subject model. Teachers here are User references used by the
// owning-teacher-of-subject authorization rule.
type Subject struct {
	BaseModel
	Name        string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`

	// Relationships
	Teachers []User  `json:"teachers,omitempty" gorm:"many2many:subject_teachers"`
	Classes  []Class `json:"classes,omitempty" gorm:"many2many:subject_classes"`
}

// ClassSubject links a subject being taught in a class by a teacher profile.
type ClassSubject struct {
	BaseModel
	ClassID   uint `json:"class_id" gorm:"not null;index"`
	SubjectID uint `json:"subject_id" gorm:"not null;index"`
	TeacherID uint `json:"teacher_id" gorm:"not null;index"`

	// Relationships
	Class   Class   `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Subject Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Teacher Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

// Assessment model with per-student score rows
type Assessment struct {
	BaseModel
	ClassID     uint      `json:"class_id" gorm:"not null;index"`
	SubjectID   uint      `json:"subject_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"size:255"`
	Date        time.Time `json:"date" gorm:"not null"`
	MaxScore    float64   `json:"max_score" gorm:"not null"`
	Term        string    `json:"term" gorm:"size:10;not null;type:enum('1st','2nd','3rd')"`
	Session     string    `json:"session" gorm:"size:20;not null"`
	CreatedByID uint      `json:"created_by_id" gorm:"not null;index"`

	// Relationships
	Class     Class             `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Subject   Subject           `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	CreatedBy User              `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	Scores    []AssessmentScore `json:"scores,omitempty" gorm:"foreignKey:AssessmentID"`
}

// AssessmentScore is one student's entry in an assessment. Resubmitting a
// score for the same (assessment, student) updates the existing row.
type AssessmentScore struct {
	BaseModel
	AssessmentID uint    `json:"assessment_id" gorm:"not null;uniqueIndex:idx_assessment_student"`
	StudentID    uint    `json:"student_id" gorm:"not null;uniqueIndex:idx_assessment_student"`
	Score        float64 `json:"score"`
	Feedback     string  `json:"feedback" gorm:"type:text"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Grade model. Term, session, subject and class are denormalized onto the
// grade so report aggregation can query without walking the assessment.
// There is deliberately no unique constraint on (student, assessment);
// callers must not assume exactly one grade per pair.
type Grade struct {
	BaseModel
	StudentID    uint    `json:"student_id" gorm:"not null;index"`
	AssessmentID *uint   `json:"assessment_id" gorm:"index"`
	SubjectID    uint    `json:"subject_id" gorm:"not null;index"`
	ClassID      uint    `json:"class_id" gorm:"not null;index"`
	Term         string  `json:"term" gorm:"size:10;not null;type:enum('1st','2nd','3rd')"`
	Session      string  `json:"session" gorm:"size:20;not null"`
	Score        float64 `json:"score" gorm:"not null"`
	Grade        string  `json:"grade" gorm:"size:5"`
	Remarks      string  `json:"remarks" gorm:"size:500"`
	GradedByID   uint    `json:"graded_by_id" gorm:"index"`

	// Relationships
	Student  Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Subject  Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Class    Class   `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	GradedBy User    `json:"graded_by,omitempty" gorm:"foreignKey:GradedByID"`
}

// GradeScale maps score ranges to letter grades
type GradeScale struct {
	BaseModel
	Grade    string  `json:"grade" gorm:"size:5;not null;uniqueIndex"`
	MinScore float64 `json:"min_score" gorm:"not null"`
	MaxScore float64 `json:"max_score" gorm:"not null"`
	Remark   string  `json:"remark" gorm:"size:100"`
}

// FeeCategory model
type FeeCategory struct {
	BaseModel
	Name        string  `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string  `json:"description" gorm:"type:text"`
	Amount      float64 `json:"amount" gorm:"not null"`
	IsRecurring bool    `json:"is_recurring" gorm:"default:false"`
}

// Invoice model. PaidAmount moves with payment state transitions; overdue
// is computed at query time, never stored.
type Invoice struct {
	BaseModel
	InvoiceNumber string     `json:"invoice_number" gorm:"size:50;not null;uniqueIndex"`
	StudentID     uint       `json:"student_id" gorm:"not null;index"`
	FeeCategoryID uint       `json:"fee_category_id" gorm:"not null;index"`
	TotalAmount   float64    `json:"total_amount" gorm:"not null"`
	PaidAmount    float64    `json:"paid_amount" gorm:"default:0"`
	DueDate       time.Time  `json:"due_date" gorm:"not null;index"`
	Status        string     `json:"status" gorm:"size:20;not null;default:'unpaid';type:enum('unpaid','partial','paid','void')"`
	IssuedDate    time.Time  `json:"issued_date"`
	Remarks       string     `json:"remarks" gorm:"size:500"`
	CreatedByID   uint       `json:"created_by_id" gorm:"index"`
	VoidedByID    *uint      `json:"voided_by_id"`
	VoidedAt      *time.Time `json:"voided_at"`
	VoidReason    string     `json:"void_reason" gorm:"size:500"`

	// Relationships
	Student     Student     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	FeeCategory FeeCategory `json:"fee_category,omitempty" gorm:"foreignKey:FeeCategoryID"`
	CreatedBy   User        `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

// Payment model
type Payment struct {
	BaseModel
	PaymentNumber string     `json:"payment_number" gorm:"size:50;not null;uniqueIndex"`
	InvoiceID     *uint      `json:"invoice_id" gorm:"index"`
	StudentID     uint       `json:"student_id" gorm:"not null;index"`
	Amount        float64    `json:"amount" gorm:"not null"`
	PaymentDate   time.Time  `json:"payment_date" gorm:"not null"`
	Method        string     `json:"method" gorm:"size:50"`
	Status        string     `json:"status" gorm:"size:20;not null;default:'pending';type:enum('pending','confirmed','rejected')"`
	Remarks       string     `json:"remarks" gorm:"size:500"`
	RecordedByID  uint       `json:"recorded_by_id" gorm:"index"`
	ProcessedByID *uint      `json:"processed_by_id"`
	ProcessedAt   *time.Time `json:"processed_at"`

	// Relationships
	Invoice    *Invoice `json:"invoice,omitempty" gorm:"foreignKey:InvoiceID"`
	Student    Student  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	RecordedBy User     `json:"recorded_by,omitempty" gorm:"foreignKey:RecordedByID"`
}

// Attendance is one sheet per (class, date); resubmission replaces the
// prior sheet for that key.
type Attendance struct {
	BaseModel
	ClassID      uint      `json:"class_id" gorm:"not null;uniqueIndex:idx_class_date"`
	Date         time.Time `json:"date" gorm:"not null;uniqueIndex:idx_class_date"`
	RecordedByID uint      `json:"recorded_by_id" gorm:"index"`

	// Relationships
	Class   Class              `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Records []AttendanceRecord `json:"records,omitempty" gorm:"foreignKey:AttendanceID"`
}

// AttendanceRecord is one student's entry on an attendance sheet
type AttendanceRecord struct {
	BaseModel
	AttendanceID uint   `json:"attendance_id" gorm:"not null;index"`
	StudentID    uint   `json:"student_id" gorm:"not null;index"`
	Status       string `json:"status" gorm:"size:20;not null;type:enum('Present','Absent','Late','Excused')"`
	Remarks      string `json:"remarks" gorm:"size:255"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// ReportCard caches teacher commentary per (student, class, term, session);
// score data is always recomputed live from grades.
type ReportCard struct {
	BaseModel
	StudentID     uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_report_card_key"`
	ClassID       uint      `json:"class_id" gorm:"not null;uniqueIndex:idx_report_card_key"`
	Term          string    `json:"term" gorm:"size:10;not null;uniqueIndex:idx_report_card_key;type:enum('1st','2nd','3rd')"`
	Session       string    `json:"session" gorm:"size:20;not null;uniqueIndex:idx_report_card_key"`
	Remarks       string    `json:"remarks" gorm:"type:text"`
	GeneratedByID uint      `json:"generated_by_id" gorm:"index"`
	GeneratedAt   time.Time `json:"generated_at"`

	// Relationships
	Student     Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Class       Class   `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	GeneratedBy User    `json:"generated_by,omitempty" gorm:"foreignKey:GeneratedByID"`
}

// Message model
type Message struct {
	BaseModel
	SenderID    uint      `json:"sender_id" gorm:"not null;index"`
	Subject     string    `json:"subject" gorm:"size:255"`
	Body        string    `json:"body" gorm:"type:text;not null"`
	SentAt      time.Time `json:"sent_at"`
	Type        string    `json:"type" gorm:"size:20;default:'Message';type:enum('Notification','Message','Alert')"`
	Status      string    `json:"status" gorm:"size:20;default:'Sent';type:enum('Sent','Delivered','Read')"`
	Attachments JSON      `json:"attachments" gorm:"type:json"`

	// Relationships
	Sender     User   `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipients []User `json:"recipients,omitempty" gorm:"many2many:message_recipients"`
	ReadBy     []User `json:"read_by,omitempty" gorm:"many2many:message_reads"`
}

// Bus model
type Bus struct {
	BaseModel
	BusNumber   string `json:"bus_number" gorm:"size:50;not null;uniqueIndex"`
	DriverName  string `json:"driver_name" gorm:"size:200"`
	DriverPhone string `json:"driver_phone" gorm:"size:20"`
	Capacity    int    `json:"capacity"`
	Route       string `json:"route" gorm:"size:500"`
}

// BusAssignment model
type BusAssignment struct {
	BaseModel
	BusID           uint       `json:"bus_id" gorm:"not null;index"`
	StudentID       uint       `json:"student_id" gorm:"not null;index"`
	PickupLocation  string     `json:"pickup_location" gorm:"size:255"`
	DropoffLocation string     `json:"dropoff_location" gorm:"size:255"`
	AssignedDate    *time.Time `json:"assigned_date"`
	Status          string     `json:"status" gorm:"size:20;default:'Active';type:enum('Active','Inactive')"`
	Remarks         string     `json:"remarks" gorm:"size:255"`

	// Relationships
	Bus     Bus     `json:"bus,omitempty" gorm:"foreignKey:BusID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Hostel model
type Hostel struct {
	BaseModel
	Name     string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Warden   string `json:"warden" gorm:"size:200"`
	Capacity int    `json:"capacity"`
	Address  string `json:"address" gorm:"size:500"`
}

// RoomAssignment model
type RoomAssignment struct {
	BaseModel
	HostelID     uint       `json:"hostel_id" gorm:"not null;index"`
	RoomNumber   string     `json:"room_number" gorm:"size:50;not null"`
	StudentID    uint       `json:"student_id" gorm:"not null;index"`
	BedNumber    string     `json:"bed_number" gorm:"size:50"`
	AssignedDate *time.Time `json:"assigned_date"`
	Status       string     `json:"status" gorm:"size:20;default:'Active';type:enum('Active','Inactive')"`
	Remarks      string     `json:"remarks" gorm:"size:255"`

	// Relationships
	Hostel  Hostel  `json:"hostel,omitempty" gorm:"foreignKey:HostelID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"`
	Error       string    `json:"error" gorm:"type:text"`
}

// RoleNames flattens a user's role set for policy checks and JWT claims.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
