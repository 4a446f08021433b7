package controllers

import (
	"time"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/finance"
	"schooladmin_go/services/policy"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type InvoiceController struct{}

// InvoiceRequest represents the create body
type InvoiceRequest struct {
	StudentID     uint    `json:"student_id" validate:"required"`
	FeeCategoryID uint    `json:"fee_category_id" validate:"required"`
	TotalAmount   float64 `json:"total_amount" validate:"required,gte=0"`
	DueDate       string  `json:"due_date" validate:"required"`
	Remarks       string  `json:"remarks"`
}

// GetInvoices lists invoices with optional status/student filters
func (ic *InvoiceController) GetInvoices(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Invoice{}).
		Preload("Student").Preload("FeeCategory")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}

	var invoices []models.Invoice
	if err := query.Order("due_date DESC, id DESC").Find(&invoices).Error; err != nil {
		return errServer(c, "Failed to fetch invoices")
	}

	return c.JSON(fiber.Map{
		"invoices": invoices,
	})
}

// GetInvoice returns one invoice by ID
func (ic *InvoiceController) GetInvoice(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid invoice ID")
	}

	var invoice models.Invoice
	if err := database.DB.
		Preload("Student").Preload("FeeCategory").Preload("CreatedBy").
		First(&invoice, id).Error; err != nil {
		return errNotFound(c, "Invoice")
	}

	principal := principalFrom(c)
	decision := policy.Decide(principal, policy.Resource{
		Kind:      "invoice",
		OwnerIDs:  []uint{invoice.CreatedByID},
		StudentID: invoice.StudentID,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	return c.JSON(fiber.Map{
		"invoice": invoice,
	})
}

// GetStudentInvoices lists a student's invoices; void ones stay hidden
func (ic *InvoiceController) GetStudentInvoices(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid student ID")
	}

	var student models.Student
	if err := database.DB.First(&student, studentID).Error; err != nil {
		return errNotFound(c, "Student")
	}

	principal := principalFrom(c)
	decision := policy.Decide(principal, policy.Resource{
		Kind:      "invoice",
		StudentID: student.ID,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	var invoices []models.Invoice
	if err := database.DB.
		Where("student_id = ? AND status <> ?", studentID, finance.InvoiceVoid).
		Preload("FeeCategory").
		Order("due_date DESC").
		Find(&invoices).Error; err != nil {
		return errServer(c, "Failed to fetch invoices")
	}

	return c.JSON(fiber.Map{
		"invoices": invoices,
	})
}

// GetOverdueInvoices lists unpaid or partial invoices past their due date
func (ic *InvoiceController) GetOverdueInvoices(c *fiber.Ctx) error {
	var invoices []models.Invoice
	if err := database.DB.
		Where("status IN ? AND due_date < ?", []string{finance.InvoiceUnpaid, finance.InvoicePartial}, time.Now()).
		Preload("Student").Preload("FeeCategory").
		Order("due_date").
		Find(&invoices).Error; err != nil {
		return errServer(c, "Failed to fetch overdue invoices")
	}

	return c.JSON(fiber.Map{
		"invoices": invoices,
	})
}

// CreateInvoice issues a new invoice
func (ic *InvoiceController) CreateInvoice(c *fiber.Ctx) error {
	var req InvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return errNotFound(c, "Student")
	}
	var category models.FeeCategory
	if err := database.DB.First(&category, req.FeeCategoryID).Error; err != nil {
		return errNotFound(c, "Fee category")
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return errBadRequest(c, "Invalid due date format. Use YYYY-MM-DD")
	}

	user := currentUser(c)

	invoice := models.Invoice{
		InvoiceNumber: finance.NewInvoiceNumber(),
		StudentID:     req.StudentID,
		FeeCategoryID: req.FeeCategoryID,
		TotalAmount:   req.TotalAmount,
		PaidAmount:    0,
		DueDate:       dueDate,
		Status:        finance.InvoiceUnpaid,
		IssuedDate:    time.Now(),
		Remarks:       req.Remarks,
		CreatedByID:   user.ID,
	}

	if err := database.DB.Create(&invoice).Error; err != nil {
		return errServer(c, "Failed to create invoice")
	}

	database.DB.Preload("Student").Preload("FeeCategory").First(&invoice, invoice.ID)

	middleware.LogActivity(c, "CREATE", "invoices", invoice.ID, fiber.Map{
		"invoice_number": invoice.InvoiceNumber,
		"student_id":     invoice.StudentID,
		"total_amount":   invoice.TotalAmount,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Invoice created successfully",
		"invoice": invoice,
	})
}

// UpdateInvoice updates amount/due date/remarks on a non-void invoice
func (ic *InvoiceController) UpdateInvoice(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid invoice ID")
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, id).Error; err != nil {
		return errNotFound(c, "Invoice")
	}
	if invoice.Status == finance.InvoiceVoid {
		return errBadRequest(c, "Cannot update a void invoice")
	}

	var req struct {
		TotalAmount *float64 `json:"total_amount"`
		DueDate     string   `json:"due_date"`
		Remarks     *string  `json:"remarks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.TotalAmount != nil {
		if *req.TotalAmount < 0 {
			return errBadRequest(c, "Total amount cannot be negative")
		}
		invoice.TotalAmount = *req.TotalAmount
	}
	if req.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return errBadRequest(c, "Invalid due date format. Use YYYY-MM-DD")
		}
		invoice.DueDate = dueDate
	}
	if req.Remarks != nil {
		invoice.Remarks = *req.Remarks
	}

	invoice.Status = finance.ComputeStatus(invoice.Status, invoice.TotalAmount, invoice.PaidAmount)

	if err := database.DB.Save(&invoice).Error; err != nil {
		return errServer(c, "Failed to update invoice")
	}

	middleware.LogActivity(c, "UPDATE", "invoices", invoice.ID, fiber.Map{
		"invoice_number": invoice.InvoiceNumber,
	})

	return c.JSON(fiber.Map{
		"message": "Invoice updated successfully",
		"invoice": invoice,
	})
}

// VoidInvoice marks an invoice void; voiding is final
func (ic *InvoiceController) VoidInvoice(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid invoice ID")
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, id).Error; err != nil {
		return errNotFound(c, "Invoice")
	}
	if invoice.Status == finance.InvoiceVoid {
		return errBadRequest(c, "Invoice is already void")
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	user := currentUser(c)
	now := time.Now()

	invoice.Status = finance.InvoiceVoid
	invoice.VoidedByID = &user.ID
	invoice.VoidedAt = &now
	invoice.VoidReason = req.Reason

	if err := database.DB.Save(&invoice).Error; err != nil {
		return errServer(c, "Failed to void invoice")
	}

	middleware.LogActivity(c, "VOID", "invoices", invoice.ID, fiber.Map{
		"invoice_number": invoice.InvoiceNumber,
		"reason":         req.Reason,
	})

	return c.JSON(fiber.Map{
		"message": "Invoice voided successfully",
		"invoice": invoice,
	})
}

// DeleteInvoice hard-deletes an invoice only while nothing has been paid
// or recorded against it
func (ic *InvoiceController) DeleteInvoice(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid invoice ID")
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, id).Error; err != nil {
		return errNotFound(c, "Invoice")
	}

	var paymentCount int64
	if err := database.DB.Model(&models.Payment{}).Where("invoice_id = ?", id).Count(&paymentCount).Error; err != nil {
		return errServer(c, "Failed to delete invoice")
	}
	if paymentCount > 0 || !finance.CanDelete(invoice.Status, invoice.PaidAmount) {
		return errBadRequest(c, "Cannot delete invoice with payments. Void it instead.")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&invoice).Error
	})
	if err != nil {
		return errServer(c, "Failed to delete invoice")
	}

	middleware.LogActivity(c, "DELETE", "invoices", id, fiber.Map{
		"invoice_number": invoice.InvoiceNumber,
	})

	return c.JSON(fiber.Map{
		"message": "Invoice deleted successfully",
	})
}
