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
	"gorm.io/gorm/clause"
)

type PaymentController struct{}

// PaymentRequest represents the create body
type PaymentRequest struct {
	InvoiceID *uint   `json:"invoice_id"`
	StudentID uint    `json:"student_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method"`
	Remarks   string  `json:"remarks"`
}

// GetPayments lists payments with optional filters
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Payment{}).
		Preload("Student").Preload("Invoice")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}

	var payments []models.Payment
	if err := query.Order("payment_date DESC, id DESC").Find(&payments).Error; err != nil {
		return errServer(c, "Failed to fetch payments")
	}

	return c.JSON(fiber.Map{
		"payments": payments,
	})
}

// GetPayment returns one payment by ID
func (pc *PaymentController) GetPayment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid payment ID")
	}

	var payment models.Payment
	if err := database.DB.
		Preload("Student").Preload("Invoice").Preload("RecordedBy").
		First(&payment, id).Error; err != nil {
		return errNotFound(c, "Payment")
	}

	principal := principalFrom(c)
	decision := policy.Decide(principal, policy.Resource{
		Kind:      "payment",
		OwnerIDs:  []uint{payment.RecordedByID},
		StudentID: payment.StudentID,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	return c.JSON(fiber.Map{
		"payment": payment,
	})
}

// GetStudentPayments lists a student's payments
func (pc *PaymentController) GetStudentPayments(c *fiber.Ctx) error {
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
		Kind:      "payment",
		StudentID: student.ID,
	})
	if !policy.CanRead(decision) {
		return errForbidden(c)
	}

	var payments []models.Payment
	if err := database.DB.
		Where("student_id = ?", studentID).
		Preload("Invoice").
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return errServer(c, "Failed to fetch payments")
	}

	return c.JSON(fiber.Map{
		"payments": payments,
	})
}

// GetInvoicePayments lists the payments recorded against an invoice
func (pc *PaymentController) GetInvoicePayments(c *fiber.Ctx) error {
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid invoice ID")
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, invoiceID).Error; err != nil {
		return errNotFound(c, "Invoice")
	}

	var payments []models.Payment
	if err := database.DB.
		Where("invoice_id = ?", invoiceID).
		Preload("Student").
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return errServer(c, "Failed to fetch payments")
	}

	return c.JSON(fiber.Map{
		"payments": payments,
	})
}

// CreatePayment records a payment. The amount is credited to the linked
// invoice immediately, while the payment itself starts out pending;
// confirming later credits it a second time (see finance.TransitionDelta).
// Balance updates run under a row lock on the invoice.
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	var req PaymentRequest
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

	user := currentUser(c)

	payment := models.Payment{
		PaymentNumber: finance.NewPaymentNumber(),
		InvoiceID:     req.InvoiceID,
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		PaymentDate:   time.Now(),
		Method:        req.Method,
		Status:        finance.PaymentPending,
		Remarks:       req.Remarks,
		RecordedByID:  user.ID,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if req.InvoiceID != nil {
			var invoice models.Invoice
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&invoice, *req.InvoiceID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
			}
			if invoice.Status == finance.InvoiceVoid {
				return fiber.NewError(fiber.StatusBadRequest, "Cannot record a payment against a void invoice")
			}

			invoice.PaidAmount = finance.ApplyDelta(invoice.PaidAmount, finance.CreationDelta(req.Amount))
			invoice.Status = finance.ComputeStatus(invoice.Status, invoice.TotalAmount, invoice.PaidAmount)
			if err := tx.Save(&invoice).Error; err != nil {
				return err
			}
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		return errServer(c, "Failed to record payment")
	}

	database.DB.Preload("Student").Preload("Invoice").First(&payment, payment.ID)

	middleware.LogActivity(c, "CREATE", "payments", payment.ID, fiber.Map{
		"payment_number": payment.PaymentNumber,
		"student_id":     payment.StudentID,
		"amount":         payment.Amount,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"payment": payment,
	})
}

// UpdatePaymentStatus drives the payment state machine and moves the
// invoice balance by the transition delta
func (pc *PaymentController) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid payment ID")
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=pending confirmed rejected"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var payment models.Payment
	if err := database.DB.First(&payment, id).Error; err != nil {
		return errNotFound(c, "Payment")
	}

	delta := finance.TransitionDelta(payment.Status, req.Status, payment.Amount)

	user := currentUser(c)
	now := time.Now()

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if payment.InvoiceID != nil && delta != 0 {
			var invoice models.Invoice
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&invoice, *payment.InvoiceID).Error; err != nil {
				return err
			}
			invoice.PaidAmount = finance.ApplyDelta(invoice.PaidAmount, delta)
			invoice.Status = finance.ComputeStatus(invoice.Status, invoice.TotalAmount, invoice.PaidAmount)
			if err := tx.Save(&invoice).Error; err != nil {
				return err
			}
		}

		payment.Status = req.Status
		payment.ProcessedByID = &user.ID
		payment.ProcessedAt = &now
		return tx.Save(&payment).Error
	})
	if err != nil {
		return errServer(c, "Failed to update payment status")
	}

	database.DB.Preload("Invoice").First(&payment, payment.ID)

	middleware.LogActivity(c, "UPDATE", "payments", payment.ID, fiber.Map{
		"payment_number": payment.PaymentNumber,
		"status":         payment.Status,
	})

	return c.JSON(fiber.Map{
		"message": "Payment status updated successfully",
		"payment": payment,
	})
}
