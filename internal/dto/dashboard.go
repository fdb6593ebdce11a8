package dto

import "github.com/noah-isme/schooldb-api/internal/models"

// FeeSummary totals a student's fee records.
type FeeSummary struct {
	TotalDue     float64 `json:"total_due"`
	TotalPaid    float64 `json:"total_paid"`
	TotalBalance float64 `json:"total_balance"`
}

// StudentDashboard aggregates everything recorded about one student.
type StudentDashboard struct {
	Student            models.Student             `json:"student"`
	HasPhoto           bool                       `json:"has_photo"`
	DisciplineRecords  []models.DisciplineRecord  `json:"discipline_records"`
	BorrowRecords      []models.BorrowRecord      `json:"borrow_records"`
	FeeRecords         []models.FeeRecord         `json:"fee_records"`
	Fees               FeeSummary                 `json:"fees"`
	PerformanceRecords []models.PerformanceRecord `json:"performance_records"`
	AverageMarks       float64                    `json:"average_marks"`
	OverallRank        *int                       `json:"overall_rank,omitempty"`
	StreamRank         *int                       `json:"stream_rank,omitempty"`
	RankedStudents     int                        `json:"ranked_students"`
	StreamStudents     int                        `json:"stream_students"`
	StudentTrend       []models.TermAverage       `json:"student_trend"`
	StreamTrend        []models.TermAverage       `json:"stream_trend"`
}
