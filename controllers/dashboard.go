package controllers

import (
	"time"

	"schooladmin_go/database"
	"schooladmin_go/models"
	"schooladmin_go/services/finance"

	"github.com/gofiber/fiber/v2"
)

type DashboardController struct{}

// GetStats returns aggregate counts for the admin dashboard. Responses
// carry no-cache headers so the console always sees live numbers.
func (dc *DashboardController) GetStats(c *fiber.Ctx) error {
	c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Set("Pragma", "no-cache")
	c.Set("Expires", "0")

	var (
		studentCount  int64
		teacherCount  int64
		classCount    int64
		subjectCount  int64
		invoiceCount  int64
		overdueCount  int64
		pendingCount  int64
		messageCount  int64
		totalBilled   float64
		totalReceived float64
	)

	database.DB.Model(&models.Student{}).Where("is_active = ?", true).Count(&studentCount)
	database.DB.Model(&models.Teacher{}).Count(&teacherCount)
	database.DB.Model(&models.Class{}).Count(&classCount)
	database.DB.Model(&models.Subject{}).Count(&subjectCount)
	database.DB.Model(&models.Invoice{}).Where("status <> ?", finance.InvoiceVoid).Count(&invoiceCount)
	database.DB.Model(&models.Invoice{}).
		Where("status IN ? AND due_date < ?", []string{finance.InvoiceUnpaid, finance.InvoicePartial}, time.Now()).
		Count(&overdueCount)
	database.DB.Model(&models.Payment{}).Where("status = ?", finance.PaymentPending).Count(&pendingCount)
	database.DB.Model(&models.Message{}).Count(&messageCount)

	type sums struct {
		Billed   float64
		Received float64
	}
	var s sums
	database.DB.Model(&models.Invoice{}).
		Where("status <> ?", finance.InvoiceVoid).
		Select("COALESCE(SUM(total_amount), 0) AS billed, COALESCE(SUM(paid_amount), 0) AS received").
		Scan(&s)
	totalBilled = s.Billed
	totalReceived = s.Received

	today := time.Now().Truncate(24 * time.Hour)
	var sheetsToday int64
	database.DB.Model(&models.Attendance{}).Where("date >= ?", today).Count(&sheetsToday)

	return c.JSON(fiber.Map{
		"students":         studentCount,
		"teachers":         teacherCount,
		"classes":          classCount,
		"subjects":         subjectCount,
		"invoices":         invoiceCount,
		"overdue_invoices": overdueCount,
		"pending_payments": pendingCount,
		"messages":         messageCount,
		"total_billed":     totalBilled,
		"total_received":   totalReceived,
		"outstanding":      totalBilled - totalReceived,
		"attendance_today": sheetsToday,
		"generated_at":     time.Now(),
	})
}
