package routes

import (
	"schooladmin_go/controllers"
	"schooladmin_go/middleware"
	"schooladmin_go/services"
	"schooladmin_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub, healthService *services.HealthService) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	studentController := &controllers.StudentController{}
	importController := &controllers.StudentImportController{}
	teacherController := &controllers.TeacherController{}
	classController := &controllers.ClassController{}
	subjectController := &controllers.SubjectController{}
	assessmentController := &controllers.AssessmentController{}
	gradeController := &controllers.GradeController{}
	feeCategoryController := &controllers.FeeCategoryController{}
	invoiceController := &controllers.InvoiceController{}
	paymentController := &controllers.PaymentController{}
	attendanceController := &controllers.AttendanceController{}
	reportCardController := &controllers.ReportCardController{}
	messageController := &controllers.MessageController{Hub: wsHub}
	transportController := &controllers.TransportController{}
	hostelController := &controllers.HostelController{}
	dashboardController := &controllers.DashboardController{}
	logController := &controllers.LogController{}
	healthController := controllers.NewHealthController(healthService)
	wsController := controllers.NewWebSocketController(wsHub)

	// API group
	api := app.Group("/api")

	// Public routes (no authentication required)
	api.Get("/health", healthController.GetHealthStatus)

	auth := api.Group("/auth")
	auth.Post("/register/:role", authController.Register)
	auth.Post("/login", authController.Login)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Post("/auth/logout", authController.Logout)
	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)

	// User management routes (admin only)
	users := protected.Group("/users", middleware.RequireAdmin())
	users.Get("/", userController.GetUsers)
	users.Get("/:id", userController.GetUser)
	users.Put("/:id", userController.UpdateUser)
	users.Put("/:id/activate", userController.SetUserActive(true))
	users.Put("/:id/deactivate", userController.SetUserActive(false))
	users.Put("/:id/reset-password", userController.ResetPassword)
	users.Delete("/:id", userController.DeleteUser)

	// Student management routes
	students := protected.Group("/students")
	students.Get("/", middleware.RequireTeacherOrAdmin(), studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Post("/", middleware.RequireTeacherOrAdmin(), studentController.CreateStudent)
	students.Post("/import", middleware.RequireAdmin(), importController.Import)
	students.Post("/:id/photo", middleware.RequireTeacherOrAdmin(), studentController.UploadStudentPhoto)
	students.Put("/:id", middleware.RequireTeacherOrAdmin(), studentController.UpdateStudent)
	students.Delete("/:id", middleware.RequireAdmin(), studentController.DeleteStudent)

	// Teacher management routes
	teachers := protected.Group("/teachers")
	teachers.Get("/", middleware.RequireTeacherOrAdmin(), teacherController.GetTeachers)
	teachers.Get("/:id", middleware.RequireTeacherOrAdmin(), teacherController.GetTeacher)
	teachers.Post("/", middleware.RequireAdmin(), teacherController.CreateTeacher)
	teachers.Put("/:id", middleware.RequireAdmin(), teacherController.UpdateTeacher)
	teachers.Delete("/:id", middleware.RequireAdmin(), teacherController.DeleteTeacher)

	// Class management routes
	classes := protected.Group("/classes")
	classes.Get("/", middleware.RequireTeacherOrAdmin(), classController.GetClasses)
	classes.Get("/:id", middleware.RequireTeacherOrAdmin(), classController.GetClass)
	classes.Post("/", middleware.RequireAdmin(), classController.CreateClass)
	classes.Put("/:id", middleware.RequireTeacherOrAdmin(), classController.UpdateClass)
	classes.Delete("/:id", middleware.RequireAdmin(), classController.DeleteClass)
	classes.Get("/:id/students", middleware.RequireTeacherOrAdmin(), classController.GetClassStudents)
	classes.Post("/:id/students", middleware.RequireTeacherOrAdmin(), classController.AddStudentToClass)
	classes.Delete("/:id/students/:studentId", middleware.RequireTeacherOrAdmin(), classController.RemoveStudentFromClass)

	// Subject management routes
	subjects := protected.Group("/subjects")
	subjects.Get("/", middleware.RequireTeacherOrAdmin(), subjectController.GetSubjects)
	subjects.Get("/:id", middleware.RequireTeacherOrAdmin(), subjectController.GetSubject)
	subjects.Post("/", middleware.RequireAdmin(), subjectController.CreateSubject)
	subjects.Put("/:id", middleware.RequireAdmin(), subjectController.UpdateSubject)
	subjects.Delete("/:id", middleware.RequireAdmin(), subjectController.DeleteSubject)
	subjects.Post("/:id/teachers", middleware.RequireAdmin(), subjectController.AssignTeacher)
	subjects.Delete("/:id/teachers/:teacherId", middleware.RequireAdmin(), subjectController.RemoveTeacher)
	subjects.Post("/:id/classes", middleware.RequireAdmin(), subjectController.AssignClass)
	subjects.Delete("/:id/classes/:classId", middleware.RequireAdmin(), subjectController.RemoveClass)

	// Class-subject assignment routes
	classSubjects := protected.Group("/class-subjects", middleware.RequireTeacherOrAdmin())
	classSubjects.Get("/", subjectController.GetClassSubjects)
	classSubjects.Post("/", middleware.RequireAdmin(), subjectController.AssignClassSubject)
	classSubjects.Delete("/:id", middleware.RequireAdmin(), subjectController.RemoveClassSubject)

	// Assessment routes. Reads are open to all authenticated roles;
	// the controller scopes the result to the caller (students and
	// guardians only see their own score entries).
	assessments := protected.Group("/assessments")
	assessments.Get("/", assessmentController.GetAssessments)
	assessments.Get("/:id", assessmentController.GetAssessment)
	assessments.Post("/", middleware.RequireTeacherOrAdmin(), assessmentController.CreateAssessment)
	assessments.Post("/:id/scores", middleware.RequireTeacherOrAdmin(), assessmentController.SubmitScores)
	assessments.Put("/:id", middleware.RequireTeacherOrAdmin(), assessmentController.UpdateAssessment)
	assessments.Delete("/:id", middleware.RequireTeacherOrAdmin(), assessmentController.DeleteAssessment)

	// Grade routes
	grades := protected.Group("/grades")
	grades.Get("/", middleware.RequireTeacherOrAdmin(), gradeController.GetGrades)
	grades.Get("/student/:id", gradeController.GetStudentGrades)
	grades.Get("/subject/:id", middleware.RequireTeacherOrAdmin(), gradeController.GetSubjectGrades)
	grades.Get("/:id", gradeController.GetGrade)
	grades.Post("/", middleware.RequireTeacherOrAdmin(), gradeController.CreateGrade)
	grades.Put("/:id", middleware.RequireTeacherOrAdmin(), gradeController.UpdateGrade)
	grades.Delete("/:id", middleware.RequireTeacherOrAdmin(), gradeController.DeleteGrade)

	// Fee category routes (finance)
	feeCategories := protected.Group("/fee-categories", middleware.RequireFinanceOrAdmin())
	feeCategories.Get("/", feeCategoryController.GetFeeCategories)
	feeCategories.Get("/:id", feeCategoryController.GetFeeCategory)
	feeCategories.Post("/", feeCategoryController.CreateFeeCategory)
	feeCategories.Put("/:id", feeCategoryController.UpdateFeeCategory)
	feeCategories.Delete("/:id", feeCategoryController.DeleteFeeCategory)

	// Invoice routes
	invoices := protected.Group("/invoices")
	invoices.Get("/", middleware.RequireFinanceOrAdmin(), invoiceController.GetInvoices)
	invoices.Get("/status/overdue", middleware.RequireFinanceOrAdmin(), invoiceController.GetOverdueInvoices)
	invoices.Get("/student/:id", invoiceController.GetStudentInvoices)
	invoices.Get("/:id", invoiceController.GetInvoice)
	invoices.Post("/", middleware.RequireFinanceOrAdmin(), invoiceController.CreateInvoice)
	invoices.Put("/:id", middleware.RequireFinanceOrAdmin(), invoiceController.UpdateInvoice)
	invoices.Put("/:id/void", middleware.RequireFinanceOrAdmin(), invoiceController.VoidInvoice)
	invoices.Delete("/:id", middleware.RequireFinanceOrAdmin(), invoiceController.DeleteInvoice)

	// Payment routes
	payments := protected.Group("/payments")
	payments.Get("/", middleware.RequireFinanceOrAdmin(), paymentController.GetPayments)
	payments.Get("/student/:id", paymentController.GetStudentPayments)
	payments.Get("/invoice/:id", middleware.RequireFinanceOrAdmin(), paymentController.GetInvoicePayments)
	payments.Get("/:id", paymentController.GetPayment)
	payments.Post("/", middleware.RequireFinanceOrAdmin(), paymentController.CreatePayment)
	payments.Put("/:id/status", middleware.RequireFinanceOrAdmin(), paymentController.UpdatePaymentStatus)

	// Attendance routes
	attendance := protected.Group("/attendance")
	attendance.Get("/", middleware.RequireTeacherOrAdmin(), attendanceController.GetAttendances)
	attendance.Get("/class/:id/date/:date", middleware.RequireTeacherOrAdmin(), attendanceController.GetClassAttendanceByDate)
	attendance.Get("/student/:id", attendanceController.GetStudentAttendance)
	attendance.Get("/:id", middleware.RequireTeacherOrAdmin(), attendanceController.GetAttendance)
	attendance.Post("/", middleware.RequireTeacherOrAdmin(), attendanceController.SubmitAttendance)
	attendance.Delete("/:id", middleware.RequireTeacherOrAdmin(), attendanceController.DeleteAttendance)

	// Report card routes
	reportCards := protected.Group("/report-cards")
	reportCards.Get("/:studentId", reportCardController.GetReportCard)
	reportCards.Put("/:studentId/remarks", middleware.RequireTeacherOrAdmin(), reportCardController.UpdateRemarks)

	// Messaging routes
	messages := protected.Group("/messages")
	messages.Get("/", messageController.GetMessages)
	messages.Get("/:id", messageController.GetMessage)
	messages.Post("/", messageController.SendMessage)
	messages.Put("/:id/read", messageController.MarkRead)
	messages.Delete("/:id", messageController.DeleteMessage)

	// Transport routes
	buses := protected.Group("/buses", middleware.RequireAdmin())
	buses.Get("/", transportController.GetBuses)
	buses.Get("/:id", transportController.GetBus)
	buses.Post("/", transportController.CreateBus)
	buses.Put("/:id", transportController.UpdateBus)
	buses.Delete("/:id", transportController.DeleteBus)

	busAssignments := protected.Group("/bus-assignments", middleware.RequireAdmin())
	busAssignments.Get("/", transportController.GetBusAssignments)
	busAssignments.Post("/", transportController.CreateBusAssignment)
	busAssignments.Put("/:id", transportController.UpdateBusAssignment)
	busAssignments.Delete("/:id", transportController.DeleteBusAssignment)

	// Hostel routes
	hostels := protected.Group("/hostels", middleware.RequireAdmin())
	hostels.Get("/", hostelController.GetHostels)
	hostels.Get("/:id", hostelController.GetHostel)
	hostels.Post("/", hostelController.CreateHostel)
	hostels.Put("/:id", hostelController.UpdateHostel)
	hostels.Delete("/:id", hostelController.DeleteHostel)

	roomAssignments := protected.Group("/room-assignments", middleware.RequireAdmin())
	roomAssignments.Get("/", hostelController.GetRoomAssignments)
	roomAssignments.Post("/", hostelController.CreateRoomAssignment)
	roomAssignments.Put("/:id", hostelController.UpdateRoomAssignment)
	roomAssignments.Delete("/:id", hostelController.DeleteRoomAssignment)

	// Dashboard (admin and finance)
	protected.Get("/dashboard/stats", middleware.RequireFinanceOrAdmin(), dashboardController.GetStats)

	// Activity log routes (admin only)
	logs := protected.Group("/activity-logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/stats", logController.GetLogStats)
	logs.Get("/export", logController.ExportLogs)
	logs.Get("/archives", logController.GetLogArchives)
	logs.Get("/archives/:id/download", logController.DownloadLogArchive)
	logs.Get("/:id", logController.GetLog)
	logs.Delete("/old", logController.DeleteOldLogs)
	logs.Post("/flush-cache", logController.FlushCachedLogs)

	// WebSocket routes
	ws := protected.Group("/ws")
	ws.Get("/stats", middleware.RequireAdmin(), wsController.GetWebSocketStats)

	// WebSocket connection endpoint - use websocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}
