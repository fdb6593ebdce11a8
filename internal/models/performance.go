package models

import "time"

// Grade is a letter grade A through F.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
)

// Valid reports whether g is a letter grade.
func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeE, GradeF:
		return true
	default:
		return false
	}
}

// PerformanceRecord holds the marks a student scored in one subject and term.
type PerformanceRecord struct {
	ID              string    `db:"id" json:"id"`
	AdmissionNumber string    `db:"admission_number" json:"admission_number"`
	Term            string    `db:"term" json:"term"`
	Subject         string    `db:"subject" json:"subject"`
	Marks           float64   `db:"marks" json:"marks"`
	Grade           Grade     `db:"grade" json:"grade"`
	TeacherComments string    `db:"teacher_comments" json:"teacher_comments"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// PerformanceFilter narrows performance listings.
type PerformanceFilter struct {
	AdmissionNumber string
	Term            string
	Subject         string
	Page            int
	PageSize        int
}

// PerformanceMark is one performance record joined with its owner, the
// input row for every ranking computation.
type PerformanceMark struct {
	AdmissionNumber string  `db:"admission_number"`
	FirstName       string  `db:"first_name"`
	LastName        string  `db:"last_name"`
	Stream          string  `db:"stream"`
	Term            string  `db:"term"`
	Marks           float64 `db:"marks"`
}
