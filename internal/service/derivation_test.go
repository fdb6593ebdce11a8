package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/schooldb-api/internal/models"
)

func TestDeriveFee(t *testing.T) {
	cases := []struct {
		name    string
		due     float64
		paid    float64
		balance float64
		status  models.PaymentStatus
	}{
		{"fully paid", 1000, 1000, 0, models.PaymentStatusPaid},
		{"partial", 1000, 400, 600, models.PaymentStatusPartial},
		{"nothing paid", 1000, 0, 1000, models.PaymentStatusUnpaid},
		{"overpaid clamps", 1000, 1500, 0, models.PaymentStatusPaid},
		{"nothing due", 0, 0, 0, models.PaymentStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee := &models.FeeRecord{AmountDue: tc.due, AmountPaid: tc.paid, Balance: -42, PaymentStatus: models.PaymentStatusUnpaid}
			DeriveFee(fee)
			assert.Equal(t, tc.balance, fee.Balance)
			assert.Equal(t, tc.status, fee.PaymentStatus)

			DeriveFee(fee)
			assert.Equal(t, tc.balance, fee.Balance)
			assert.Equal(t, tc.status, fee.PaymentStatus)
		})
	}
}

func TestDeriveFeeStatusEquivalences(t *testing.T) {
	for due := 0.0; due <= 300; due += 50 {
		for paid := 0.0; paid <= 300; paid += 25 {
			fee := &models.FeeRecord{AmountDue: due, AmountPaid: paid}
			DeriveFee(fee)
			assert.GreaterOrEqual(t, fee.Balance, 0.0)
			assert.Equal(t, fee.Balance == 0, fee.PaymentStatus == models.PaymentStatusPaid)
			assert.Equal(t, fee.Balance > 0 && fee.Balance < due, fee.PaymentStatus == models.PaymentStatusPartial)
		}
	}
}

func TestGradeForMarks(t *testing.T) {
	cases := map[float64]models.Grade{
		100: models.GradeA, 85: models.GradeA, 80: models.GradeA,
		79.9: models.GradeB, 72: models.GradeB, 70: models.GradeB,
		65: models.GradeC, 60: models.GradeC,
		55: models.GradeD, 50: models.GradeD,
		45: models.GradeE, 40: models.GradeE,
		39.5: models.GradeF, 30: models.GradeF, 0: models.GradeF,
	}
	for marks, want := range cases {
		assert.Equal(t, want, GradeForMarks(marks), "marks %v", marks)
	}
}

func TestDerivePerformanceKeepsExplicitGrade(t *testing.T) {
	derived := &models.PerformanceRecord{Marks: 72}
	DerivePerformance(derived)
	assert.Equal(t, models.GradeB, derived.Grade)

	explicit := &models.PerformanceRecord{Marks: 72, Grade: models.GradeA}
	DerivePerformance(explicit)
	assert.Equal(t, models.GradeA, explicit.Grade)

	derived.Marks = 20
	DerivePerformance(derived)
	assert.Equal(t, models.GradeB, derived.Grade)
}

func TestAvailableCopies(t *testing.T) {
	assert.Equal(t, 3, AvailableCopies(3, 0))
	assert.Equal(t, 1, AvailableCopies(3, 2))
	assert.Equal(t, 0, AvailableCopies(3, 3))
	assert.Equal(t, 0, AvailableCopies(1, 4))

	book := &models.BookAvailability{Book: models.Book{TotalCopies: 2}, BorrowedCount: 2}
	ApplyAvailability(book)
	assert.Equal(t, 0, book.AvailableCopies)
	assert.False(t, book.IsAvailable)
}
