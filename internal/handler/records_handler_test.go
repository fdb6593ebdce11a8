package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/internal/service"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type fakeFeeSrv struct {
	filter  models.FeeFilter
	updated service.UpdateFeeRequest
	id      string
	err     error
}

func (f *fakeFeeSrv) List(_ context.Context, filter models.FeeFilter) ([]models.FeeRecordDetail, *models.Pagination, error) {
	f.filter = filter
	if f.err != nil {
		return nil, nil, f.err
	}
	return []models.FeeRecordDetail{}, &models.Pagination{}, nil
}

func (f *fakeFeeSrv) Get(context.Context, string) (*models.FeeRecord, error) {
	return &models.FeeRecord{}, f.err
}

func (f *fakeFeeSrv) Create(context.Context, service.CreateFeeRequest) (*models.FeeRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.FeeRecord{}, nil
}

func (f *fakeFeeSrv) Update(_ context.Context, id string, req service.UpdateFeeRequest) (*models.FeeRecord, error) {
	f.id, f.updated = id, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.FeeRecord{ID: id, AmountDue: req.AmountDue, AmountPaid: req.AmountPaid, Balance: req.AmountDue - req.AmountPaid, PaymentStatus: models.PaymentStatusPartial}, nil
}

func (f *fakeFeeSrv) Delete(context.Context, string) error {
	return f.err
}

type fakePerformanceSrv struct {
	created service.CreatePerformanceRequest
	err     error
}

func (f *fakePerformanceSrv) List(context.Context, models.PerformanceFilter) ([]models.PerformanceRecord, *models.Pagination, error) {
	return nil, &models.Pagination{}, f.err
}

func (f *fakePerformanceSrv) Get(context.Context, string) (*models.PerformanceRecord, error) {
	return &models.PerformanceRecord{}, f.err
}

func (f *fakePerformanceSrv) Create(_ context.Context, req service.CreatePerformanceRequest) (*models.PerformanceRecord, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.PerformanceRecord{AdmissionNumber: req.AdmissionNumber, Marks: *req.Marks, Grade: "A"}, nil
}

func (f *fakePerformanceSrv) Update(context.Context, string, service.UpdatePerformanceRequest) (*models.PerformanceRecord, error) {
	return &models.PerformanceRecord{}, f.err
}

func (f *fakePerformanceSrv) Delete(context.Context, string) error {
	return f.err
}

type fakeDisciplineSrv struct {
	filter models.DisciplineFilter
	err    error
}

func (f *fakeDisciplineSrv) List(_ context.Context, filter models.DisciplineFilter) ([]models.DisciplineRecord, *models.Pagination, error) {
	f.filter = filter
	return []models.DisciplineRecord{}, &models.Pagination{}, f.err
}

func (f *fakeDisciplineSrv) Get(context.Context, string) (*models.DisciplineRecord, error) {
	return nil, f.err
}

func (f *fakeDisciplineSrv) Create(context.Context, service.CreateDisciplineRequest) (*models.DisciplineRecord, error) {
	return &models.DisciplineRecord{}, f.err
}

func (f *fakeDisciplineSrv) Update(context.Context, string, service.UpdateDisciplineRequest) (*models.DisciplineRecord, error) {
	return &models.DisciplineRecord{}, f.err
}

func (f *fakeDisciplineSrv) Delete(context.Context, string) error {
	return f.err
}

func TestFeeHandlerListFilters(t *testing.T) {
	srv := &fakeFeeSrv{}
	handler := NewFeeHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/fees?status=partial&term=Term+1&admission_number=ADM001", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PaymentStatusPartial, srv.filter.Status)
	assert.Equal(t, "Term 1", srv.filter.Term)
	assert.Equal(t, "ADM001", srv.filter.AdmissionNumber)
}

func TestFeeHandlerListRejectsUnknownStatus(t *testing.T) {
	handler := NewFeeHandler(&fakeFeeSrv{err: appErrors.FieldError("status", "status is not a valid choice")})
	c, rec := newTestContext(http.MethodGet, "/fees?status=overdue", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decodeEnvelope(t, rec).Error.Field)
}

func TestFeeHandlerUpdate(t *testing.T) {
	srv := &fakeFeeSrv{}
	handler := NewFeeHandler(srv)
	c, rec := newTestContext(http.MethodPut, "/fees/fee-1", map[string]interface{}{"term": "Term 1", "amount_due": 1000, "amount_paid": 400})
	c.Params = gin.Params{{Key: "id", Value: "fee-1"}}

	handler.Update(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fee-1", srv.id)
	assert.Equal(t, 400.0, srv.updated.AmountPaid)

	var fee models.FeeRecord
	decodeData(t, decodeEnvelope(t, rec), &fee)
	assert.Equal(t, 600.0, fee.Balance)
}

func TestFeeHandlerCreateOverpayment(t *testing.T) {
	handler := NewFeeHandler(&fakeFeeSrv{err: appErrors.FieldError("amount_paid", "Amount paid cannot be more than amount due.")})
	c, rec := newTestContext(http.MethodPost, "/fees", map[string]interface{}{"admission_number": "ADM001", "term": "Term 1", "amount_due": 100, "amount_paid": 150})

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "amount_paid", env.Error.Field)
	assert.Equal(t, "Amount paid cannot be more than amount due.", env.Error.Message)
}

func TestPerformanceHandlerCreate(t *testing.T) {
	srv := &fakePerformanceSrv{}
	handler := NewPerformanceHandler(srv)
	c, rec := newTestContext(http.MethodPost, "/performance", map[string]interface{}{"admission_number": "ADM001", "term": "Term 1", "subject": "Mathematics", "marks": 85})

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, srv.created.Marks)
	assert.Equal(t, 85.0, *srv.created.Marks)
	assert.Empty(t, srv.created.Grade)
}

func TestPerformanceHandlerCreateMalformed(t *testing.T) {
	handler := NewPerformanceHandler(&fakePerformanceSrv{})
	c, rec := newTestContext(http.MethodPost, "/performance", map[string]interface{}{"marks": "eighty"})

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDisciplineHandlerListAndMissingRecord(t *testing.T) {
	srv := &fakeDisciplineSrv{}
	handler := NewDisciplineHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/discipline?admission_number=ADM001&search=late", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ADM001", srv.filter.AdmissionNumber)
	assert.Equal(t, "late", srv.filter.Search)

	srv.err = appErrors.Clone(appErrors.ErrNotFound, "discipline record not found")
	c, rec = newTestContext(http.MethodGet, "/discipline/missing", nil)
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
