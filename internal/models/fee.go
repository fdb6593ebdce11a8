package models

import "time"

// PaymentStatus classifies how much of a fee has been settled.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
)

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPartial, PaymentStatusUnpaid:
		return true
	default:
		return false
	}
}

// FeeRecord is the amount billed and settled for one student and term.
// Balance and PaymentStatus are derived on every write.
type FeeRecord struct {
	ID              string        `db:"id" json:"id"`
	AdmissionNumber string        `db:"admission_number" json:"admission_number"`
	Term            string        `db:"term" json:"term"`
	AmountDue       float64       `db:"amount_due" json:"amount_due"`
	AmountPaid      float64       `db:"amount_paid" json:"amount_paid"`
	Balance         float64       `db:"balance" json:"balance"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`
	RecordedAt      time.Time     `db:"recorded_at" json:"recorded_at"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// FeeRecordDetail adds the student's name for the fee register.
type FeeRecordDetail struct {
	FeeRecord
	StudentName string `db:"student_name" json:"student_name"`
}

// FeeFilter narrows the fee register.
type FeeFilter struct {
	AdmissionNumber string
	Term            string
	Status          PaymentStatus
	Page            int
	PageSize        int
}
