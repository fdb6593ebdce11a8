package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/models"
)

var feeRowColumns = []string{"id", "admission_number", "term", "amount_due", "amount_paid", "balance", "payment_status", "recorded_at", "created_at", "updated_at"}

func TestFeeRepositoryListNewestFirst(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(append(feeRowColumns, "student_name")).
		AddRow("f1", "S1", "T1", 1000.0, 400.0, 600.0, "partial", now, now, now, "Amina Otieno")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND f.term = $1 AND f.payment_status = $2 ORDER BY f.recorded_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("T1", models.PaymentStatusPartial).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM fee_records f WHERE 1=1 AND f.term = $1")).
		WithArgs("T1", models.PaymentStatusPartial).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	fees, total, err := repo.List(context.Background(), models.FeeFilter{Term: "T1", Status: models.PaymentStatusPartial})
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 600.0, fees[0].Balance)
	assert.Equal(t, models.PaymentStatusPartial, fees[0].PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectExec("INSERT INTO fee_records").
		WithArgs(sqlmock.AnyArg(), "S1", "T1", 1000.0, 1000.0, 0.0, models.PaymentStatusPaid, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	fee := &models.FeeRecord{AdmissionNumber: "S1", Term: "T1", AmountDue: 1000, AmountPaid: 1000, PaymentStatus: models.PaymentStatusPaid}
	require.NoError(t, repo.Create(context.Background(), fee))
	assert.NotEmpty(t, fee.ID)
	assert.False(t, fee.RecordedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectExec("UPDATE fee_records SET").
		WithArgs("T2", 500.0, 0.0, 500.0, models.PaymentStatusUnpaid, sqlmock.AnyArg(), "f1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	fee := &models.FeeRecord{ID: "f1", Term: "T2", AmountDue: 500, Balance: 500, PaymentStatus: models.PaymentStatusUnpaid}
	require.NoError(t, repo.Update(context.Background(), fee))
	assert.NoError(t, mock.ExpectationsWereMet())
}
