package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type stubDiscipline []models.DisciplineRecord

func (s stubDiscipline) ListByStudent(ctx context.Context, admissionNumber string) ([]models.DisciplineRecord, error) {
	var out []models.DisciplineRecord
	for _, r := range s {
		if r.AdmissionNumber == admissionNumber {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubLoans []models.BorrowRecord

func (s stubLoans) ListByStudent(ctx context.Context, admissionNumber string, openOnly bool) ([]models.BorrowRecord, error) {
	var out []models.BorrowRecord
	for _, r := range s {
		if r.AdmissionNumber == admissionNumber && (!openOnly || !r.Returned) {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubFees []models.FeeRecord

func (s stubFees) ListByStudent(ctx context.Context, admissionNumber string) ([]models.FeeRecord, error) {
	var out []models.FeeRecord
	for _, r := range s {
		if r.AdmissionNumber == admissionNumber {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubPerformance struct {
	stubRankingRepo
}

func (s stubPerformance) ListByStudent(ctx context.Context, admissionNumber string) ([]models.PerformanceRecord, error) {
	var out []models.PerformanceRecord
	for _, r := range s.rows {
		if r.AdmissionNumber == admissionNumber {
			out = append(out, models.PerformanceRecord{AdmissionNumber: r.AdmissionNumber, Term: r.Term, Marks: r.Marks})
		}
	}
	return out, nil
}

func newDashboardFixture() *DashboardService {
	students := newMockStudentRepo(
		sampleStudent("S1", "Form 1", "East", "Achieng"),
		sampleStudent("S2", "Form 1", "West", "Mutua"),
		sampleStudent("S3", "Form 1", "East", "Njeri"),
		sampleStudent("S5", "Form 1", "East", "Wafula"),
	)
	return NewDashboardService(DashboardRepositories{
		Students:    students,
		Discipline:  stubDiscipline{{AdmissionNumber: "S3", Offense: "Noise"}},
		Loans:       stubLoans{{AdmissionNumber: "S3", BookTitle: "Atlas"}},
		Fees:        stubFees{{AdmissionNumber: "S3", AmountDue: 1000, AmountPaid: 250, Balance: 750}, {AdmissionNumber: "S3", AmountDue: 500, AmountPaid: 500}},
		Performance: stubPerformance{stubRankingRepo{rows: rankingFixtureRows()}},
	}, nil, nil)
}

func TestDashboardServiceStudent(t *testing.T) {
	svc := newDashboardFixture()

	dashboard, err := svc.Student(context.Background(), "S3")
	require.NoError(t, err)
	assert.Equal(t, "S3", dashboard.Student.AdmissionNumber)
	assert.Len(t, dashboard.DisciplineRecords, 1)
	assert.Len(t, dashboard.BorrowRecords, 1)
	assert.Len(t, dashboard.FeeRecords, 2)
	assert.Equal(t, 1500.0, dashboard.Fees.TotalDue)
	assert.Equal(t, 750.0, dashboard.Fees.TotalBalance)
	assert.InDelta(t, 75, dashboard.AverageMarks, 1e-9)

	require.NotNil(t, dashboard.OverallRank)
	assert.Equal(t, 3, *dashboard.OverallRank)
	require.NotNil(t, dashboard.StreamRank)
	assert.Equal(t, 2, *dashboard.StreamRank)
	assert.Equal(t, 4, dashboard.RankedStudents)
	assert.Equal(t, 2, dashboard.StreamStudents)

	require.Len(t, dashboard.StudentTrend, 1)
	assert.Equal(t, "Term 1", dashboard.StudentTrend[0].Term)
	require.Len(t, dashboard.StreamTrend, 1)
	assert.InDelta(t, 82.5, dashboard.StreamTrend[0].Average, 1e-9)
}

func TestDashboardServiceStudentWithoutRecords(t *testing.T) {
	svc := newDashboardFixture()

	dashboard, err := svc.Student(context.Background(), "S5")
	require.NoError(t, err)
	assert.Zero(t, dashboard.AverageMarks)
	assert.Nil(t, dashboard.OverallRank)
	assert.Nil(t, dashboard.StreamRank)
	assert.NotNil(t, dashboard.FeeRecords)
	assert.Empty(t, dashboard.StudentTrend)
	assert.Len(t, dashboard.StreamTrend, 1)
}

func TestDashboardServiceUnknownStudent(t *testing.T) {
	svc := newDashboardFixture()

	_, err := svc.Student(context.Background(), "S404")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "Student with admission number S404 not found.", appErr.Message)
}
