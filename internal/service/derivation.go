package service

import "github.com/noah-isme/schooldb-api/internal/models"

// DeriveFee recomputes balance and payment status from the amounts.
// Overpayment clamps the balance to zero. Any caller-supplied balance or
// status is overwritten.
func DeriveFee(fee *models.FeeRecord) {
	balance := fee.AmountDue - fee.AmountPaid
	if balance < 0 {
		balance = 0
	}
	fee.Balance = balance
	switch {
	case balance == 0:
		fee.PaymentStatus = models.PaymentStatusPaid
	case balance < fee.AmountDue:
		fee.PaymentStatus = models.PaymentStatusPartial
	default:
		fee.PaymentStatus = models.PaymentStatusUnpaid
	}
}

// GradeForMarks maps marks to the fixed letter bands. Each lower bound
// belongs to the higher band.
func GradeForMarks(marks float64) models.Grade {
	switch {
	case marks >= 80:
		return models.GradeA
	case marks >= 70:
		return models.GradeB
	case marks >= 60:
		return models.GradeC
	case marks >= 50:
		return models.GradeD
	case marks >= 40:
		return models.GradeE
	default:
		return models.GradeF
	}
}

// DerivePerformance fills in the grade only when none is set.
func DerivePerformance(record *models.PerformanceRecord) {
	if record.Grade == "" {
		record.Grade = GradeForMarks(record.Marks)
	}
}

// AvailableCopies is the number of copies on the shelf, never negative.
func AvailableCopies(total, borrowed int) int {
	if available := total - borrowed; available > 0 {
		return available
	}
	return 0
}

// ApplyAvailability fills the derived availability fields of a book.
func ApplyAvailability(book *models.BookAvailability) {
	book.AvailableCopies = AvailableCopies(book.TotalCopies, book.BorrowedCount)
	book.IsAvailable = book.AvailableCopies > 0
}
