package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/dto"
	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type dashboardStudentReader interface {
	FindByAdmissionNumber(ctx context.Context, admissionNumber string) (*models.Student, error)
}

type dashboardDisciplineReader interface {
	ListByStudent(ctx context.Context, admissionNumber string) ([]models.DisciplineRecord, error)
}

type dashboardLoanReader interface {
	ListByStudent(ctx context.Context, admissionNumber string, openOnly bool) ([]models.BorrowRecord, error)
}

type dashboardFeeReader interface {
	ListByStudent(ctx context.Context, admissionNumber string) ([]models.FeeRecord, error)
}

type dashboardPerformanceReader interface {
	ListByStudent(ctx context.Context, admissionNumber string) ([]models.PerformanceRecord, error)
	RankingRows(ctx context.Context) ([]models.PerformanceMark, error)
}

// DashboardRepositories groups the readers the student dashboard draws from.
type DashboardRepositories struct {
	Students    dashboardStudentReader
	Discipline  dashboardDisciplineReader
	Loans       dashboardLoanReader
	Fees        dashboardFeeReader
	Performance dashboardPerformanceReader
}

// DashboardService assembles the per-student dashboard.
type DashboardService struct {
	repos   DashboardRepositories
	metrics queryObserver
	logger  *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(repos DashboardRepositories, metrics queryObserver, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repos: repos, metrics: metrics, logger: logger}
}

// Student returns the student's records, average, ranks and term trends.
func (s *DashboardService) Student(ctx context.Context, admissionNumber string) (*dto.StudentDashboard, error) {
	student, err := s.repos.Students.FindByAdmissionNumber(ctx, admissionNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Student with admission number %s not found.", admissionNumber))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	discipline, err := s.repos.Discipline.ListByStudent(ctx, admissionNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load discipline records")
	}
	loans, err := s.repos.Loans.ListByStudent(ctx, admissionNumber, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load library records")
	}
	fees, err := s.repos.Fees.ListByStudent(ctx, admissionNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee records")
	}
	performance, err := s.repos.Performance.ListByStudent(ctx, admissionNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load performance records")
	}

	started := time.Now()
	rows, err := s.repos.Performance.RankingRows(ctx)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("ranking_rows", time.Since(started))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load performance")
	}

	dashboard := &dto.StudentDashboard{
		Student:            *student,
		HasPhoto:           student.HasPhoto(),
		DisciplineRecords:  nonNil(discipline),
		BorrowRecords:      nonNil(loans),
		FeeRecords:         nonNil(fees),
		Fees:               summariseFees(fees),
		PerformanceRecords: nonNil(performance),
	}

	if len(performance) > 0 {
		var total float64
		for _, record := range performance {
			total += record.Marks
		}
		dashboard.AverageMarks = total / float64(len(performance))
	}

	averages := AverageByStudent(rows)
	overall := RankStudents(averages)
	streamRanked := RankStream(averages, student.Stream)
	dashboard.RankedStudents = len(overall)
	dashboard.StreamStudents = len(streamRanked)
	if entry, ok := FindRank(overall, admissionNumber); ok {
		rank := entry.Rank
		dashboard.OverallRank = &rank
	}
	if entry, ok := FindRank(streamRanked, admissionNumber); ok {
		rank := entry.Rank
		dashboard.StreamRank = &rank
	}

	own := make([]models.PerformanceMark, 0, len(performance))
	streamRows := make([]models.PerformanceMark, 0)
	for _, row := range rows {
		if row.AdmissionNumber == admissionNumber {
			own = append(own, row)
		}
		if row.Stream == student.Stream {
			streamRows = append(streamRows, row)
		}
	}
	dashboard.StudentTrend = TermTrend(own)
	dashboard.StreamTrend = TermTrend(streamRows)

	return dashboard, nil
}

func summariseFees(fees []models.FeeRecord) dto.FeeSummary {
	var summary dto.FeeSummary
	for _, fee := range fees {
		summary.TotalDue += fee.AmountDue
		summary.TotalPaid += fee.AmountPaid
		summary.TotalBalance += fee.Balance
	}
	return summary
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
