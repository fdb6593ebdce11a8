package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/dto"
	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/internal/service"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type fakeRankingSrv struct {
	stream string
}

func (f *fakeRankingSrv) Overview(_ context.Context, stream string) (*dto.RankingOverview, error) {
	f.stream = stream
	return &dto.RankingOverview{
		Overall:        []models.RankedStudent{{Rank: 1, StudentAverage: models.StudentAverage{AdmissionNumber: "S1", Average: 90}}},
		StreamAverages: []models.StreamAverage{{Stream: "East", Average: 82.5}},
	}, nil
}

func (f *fakeRankingSrv) Stream(_ context.Context, stream string) ([]models.RankedStudent, error) {
	f.stream = stream
	return []models.RankedStudent{
		{Rank: 1, StudentAverage: models.StudentAverage{AdmissionNumber: "S1", Stream: stream}},
		{Rank: 2, StudentAverage: models.StudentAverage{AdmissionNumber: "S3", Stream: stream}},
	}, nil
}

type fakeDashboardSrv struct {
	resp *dto.StudentDashboard
	err  error
	seen string
}

func (f *fakeDashboardSrv) Student(_ context.Context, admission string) (*dto.StudentDashboard, error) {
	f.seen = admission
	return f.resp, f.err
}

type fakeExportSrv struct {
	format service.ExportFormat
	stream string
	filter models.FeeFilter
	err    error
}

func (f *fakeExportSrv) Ranking(_ context.Context, format service.ExportFormat, stream string) (*service.ExportFile, error) {
	f.format, f.stream = format, stream
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{Filename: "ranking-20240630.csv", ContentType: "text/csv", Data: []byte("Rank,Admission\n1,S1\n")}, nil
}

func (f *fakeExportSrv) FeeRegister(_ context.Context, format service.ExportFormat, filter models.FeeFilter) (*service.ExportFile, error) {
	f.format, f.filter = format, filter
	return &service.ExportFile{Filename: "fee-register-20240630.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}, nil
}

func TestRankingHandlerOverviewPassesStream(t *testing.T) {
	srv := &fakeRankingSrv{}
	handler := NewRankingHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/rankings?stream=East", nil)

	handler.Overview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "East", srv.stream)
	var overview dto.RankingOverview
	decodeData(t, decodeEnvelope(t, rec), &overview)
	require.Len(t, overview.Overall, 1)
	assert.Equal(t, "S1", overview.Overall[0].AdmissionNumber)
}

func TestRankingHandlerStreamMeta(t *testing.T) {
	handler := NewRankingHandler(&fakeRankingSrv{})
	c, rec := newTestContext(http.MethodGet, "/rankings/streams/West", nil)
	c.Params = gin.Params{{Key: "stream", Value: "West"}}

	handler.Stream(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "West", env.Meta["stream"])
	assert.EqualValues(t, 2, env.Meta["count"])
}

func TestDashboardHandlerStudent(t *testing.T) {
	rank := 2
	srv := &fakeDashboardSrv{resp: &dto.StudentDashboard{
		Student:      models.Student{AdmissionNumber: "ADM001"},
		AverageMarks: 72.5,
		OverallRank:  &rank,
	}}
	handler := NewDashboardHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/students/ADM001/dashboard", nil)
	c.Params = gin.Params{{Key: "admission_number", Value: "ADM001"}}

	handler.Student(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ADM001", srv.seen)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.Meta, "processing_time_ms")
	var dashboard dto.StudentDashboard
	decodeData(t, env, &dashboard)
	require.NotNil(t, dashboard.OverallRank)
	assert.Equal(t, 2, *dashboard.OverallRank)
}

func TestDashboardHandlerUnknownStudent(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.Clone(appErrors.ErrNotFound, "Student with admission number X not found.")})
	c, rec := newTestContext(http.MethodGet, "/students/X/dashboard", nil)

	handler.Student(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardHandlerWithoutService(t *testing.T) {
	handler := NewDashboardHandler(nil)
	c, rec := newTestContext(http.MethodGet, "/students/X/dashboard", nil)

	handler.Student(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExportHandlerRankingDefaultsToCSV(t *testing.T) {
	srv := &fakeExportSrv{}
	handler := NewExportHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/exports/rankings?stream=East", nil)

	handler.Ranking(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatCSV, srv.format)
	assert.Equal(t, "East", srv.stream)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="ranking-20240630.csv"; filename*=UTF-8''ranking-20240630.csv`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "1,S1")
}

func TestExportHandlerFeeRegisterPDF(t *testing.T) {
	srv := &fakeExportSrv{}
	handler := NewExportHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/exports/fees?format=pdf&status=unpaid", nil)

	handler.FeeRegister(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatPDF, srv.format)
	assert.Equal(t, models.PaymentStatusUnpaid, srv.filter.Status)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestExportHandlerRenderFailure(t *testing.T) {
	handler := NewExportHandler(&fakeExportSrv{err: appErrors.Wrap(errors.New("boom"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")})
	c, rec := newTestContext(http.MethodGet, "/exports/rankings", nil)

	handler.Ranking(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
