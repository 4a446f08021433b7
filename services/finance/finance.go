package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
)

// Invoice statuses
const (
	InvoiceUnpaid  = "unpaid"
	InvoicePartial = "partial"
	InvoicePaid    = "paid"
	InvoiceVoid    = "void"
)

// CreationDelta is the paid-amount adjustment applied when a payment is
// recorded. A freshly recorded payment is pending, yet its amount is
// credited to the invoice immediately. Confirming later credits it AGAIN
// (see TransitionDelta) — the books double-count confirmed payments.
// Existing balances were built on this behavior, so it is kept as-is.
func CreationDelta(amount float64) float64 {
	return amount
}

// TransitionDelta returns the paid-amount adjustment for a payment status
// transition:
//
//	pending   -> confirmed  +amount (on top of the creation credit)
//	confirmed -> rejected   -amount
//	anything else            0     (status is reassigned, balance untouched;
//	                                pending->rejected in particular leaves the
//	                                creation credit in place)
func TransitionDelta(from, to string, amount float64) float64 {
	switch {
	case from == PaymentPending && to == PaymentConfirmed:
		return amount
	case from == PaymentConfirmed && to == PaymentRejected:
		return -amount
	}
	return 0
}

// ApplyDelta adjusts an invoice's paid amount, clamping at zero so
// reversals can never drive it negative.
func ApplyDelta(paid, delta float64) float64 {
	paid += delta
	if paid < 0 {
		return 0
	}
	return paid
}

// ComputeStatus derives an invoice's status from its amounts: paid when
// the balance covers the total (a zero-total invoice is always paid),
// partial when anything is credited, unpaid otherwise. Void is sticky: a
// voided invoice never transitions back regardless of amounts.
func ComputeStatus(current string, total, paid float64) string {
	if current == InvoiceVoid {
		return InvoiceVoid
	}
	switch {
	case paid >= total:
		return InvoicePaid
	case paid > 0:
		return InvoicePartial
	default:
		return InvoiceUnpaid
	}
}

// IsOverdue reports whether an invoice should surface in overdue listings.
// Paid and void invoices are never overdue.
func IsOverdue(status string, dueDate, now time.Time) bool {
	if status == InvoicePaid || status == InvoiceVoid {
		return false
	}
	return dueDate.Before(now)
}

// CanDelete reports whether an invoice may be hard-deleted. Anything with
// money against it must be voided instead.
func CanDelete(status string, paid float64) bool {
	return status == InvoiceUnpaid && paid == 0
}

// NewInvoiceNumber generates a unique invoice reference.
func NewInvoiceNumber() string {
	return "INV-" + strings.ToUpper(uuid.New().String()[:8])
}

// NewPaymentNumber generates a unique payment reference.
func NewPaymentNumber() string {
	return "PAY-" + strings.ToUpper(uuid.New().String()[:8])
}
