package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type stubFeeRegister struct {
	fees       []models.FeeRecordDetail
	lastFilter models.FeeFilter
}

func (s *stubFeeRegister) ListAll(ctx context.Context, filter models.FeeFilter) ([]models.FeeRecordDetail, error) {
	s.lastFilter = filter
	return s.fees, nil
}

type recordedExport struct {
	report, format string
	rows           int
}

type stubExportMetrics struct {
	exports []recordedExport
}

func (s *stubExportMetrics) RecordExport(report, format string, rows int) {
	s.exports = append(s.exports, recordedExport{report: report, format: format, rows: rows})
}

func newExportFixture() (*ExportService, *stubFeeRegister) {
	rankings := NewRankingService(stubRankingRepo{rows: rankingFixtureRows()}, nil, nil)
	fees := &stubFeeRegister{fees: []models.FeeRecordDetail{{
		FeeRecord:   models.FeeRecord{AdmissionNumber: "S1", Term: "Term 1", AmountDue: 1000, AmountPaid: 250, Balance: 750, PaymentStatus: models.PaymentStatusPartial},
		StudentName: "Amina Achieng",
	}}}
	svc := NewExportService(rankings, fees, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC) }
	return svc, fees
}

func TestExportServiceRankingCSV(t *testing.T) {
	svc, _ := newExportFixture()

	file, err := svc.Ranking(context.Background(), ExportFormatCSV, "")
	require.NoError(t, err)
	assert.Equal(t, "ranking-20240630.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Rank,Admission Number,Name,Stream,Average Marks,Records", lines[0])
	assert.Equal(t, "1,S1,FirstS1 Last,East,90.00,1", lines[1])
	assert.Equal(t, "2,S2,FirstS2 Last,West,75.00,2", lines[2])
}

func TestExportServiceRecordsMetrics(t *testing.T) {
	svc, _ := newExportFixture()
	recorder := &stubExportMetrics{}
	svc.metrics = recorder

	_, err := svc.Ranking(context.Background(), ExportFormatCSV, "")
	require.NoError(t, err)
	_, err = svc.FeeRegister(context.Background(), ExportFormatPDF, models.FeeFilter{})
	require.NoError(t, err)

	assert.Equal(t, []recordedExport{
		{report: "rankings", format: "csv", rows: 4},
		{report: "fee_register", format: "pdf", rows: 1},
	}, recorder.exports)
}

func TestExportServiceStreamRankingPDF(t *testing.T) {
	svc, _ := newExportFixture()

	file, err := svc.Ranking(context.Background(), ExportFormatPDF, "West Wing")
	require.NoError(t, err)
	assert.Equal(t, "ranking-west-wing-20240630.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))
}

func TestExportServiceFeeRegister(t *testing.T) {
	svc, fees := newExportFixture()

	file, err := svc.FeeRegister(context.Background(), "CSV", models.FeeFilter{Term: "Term 1"})
	require.NoError(t, err)
	assert.Equal(t, "fee-register-20240630.csv", file.Filename)
	assert.Contains(t, string(file.Data), "S1,Amina Achieng,Term 1,1000.00,250.00,750.00,partial")
	assert.Equal(t, "Term 1", fees.lastFilter.Term)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.Ranking(context.Background(), "xlsx", "")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "format", appErr.Field)
}
