package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/models"
)

var borrowRowColumns = []string{"id", "admission_number", "book_id", "book_title", "borrow_date", "return_date", "returned", "status", "created_at"}

func TestBorrowRepositoryBorrowCreatesRecord(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBorrowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT title, total_copies FROM books WHERE id = $1 FOR UPDATE")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "total_copies"}).AddRow("Algebra", 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM borrow_records WHERE book_id = $1 AND returned = false")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO borrow_records").
		WithArgs(sqlmock.AnyArg(), "S1", "b1", "Algebra", sqlmock.AnyArg(), nil, false, models.BorrowStatusBorrowed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	record, err := repo.Borrow(context.Background(), BorrowParams{AdmissionNumber: "S1", BookID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "Algebra", record.BookTitle)
	assert.Equal(t, models.BorrowStatusBorrowed, record.Status)
	assert.False(t, record.Returned)
	assert.False(t, record.BorrowDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowRepositoryBorrowRejectsWhenAllCopiesOut(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBorrowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "total_copies"}).AddRow("Algebra", 1))
	mock.ExpectQuery("SELECT COUNT").WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	record, err := repo.Borrow(context.Background(), BorrowParams{AdmissionNumber: "S2", BookID: "b1"})
	assert.Nil(t, record)
	assert.ErrorIs(t, err, models.ErrNoAvailableCopies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowRepositoryBorrowMissingBook(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBorrowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("nope").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Borrow(context.Background(), BorrowParams{AdmissionNumber: "S1", BookID: "nope"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowRepositoryReturnLatest(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBorrowRepository(db)

	borrowed := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY br.borrow_date DESC, br.created_at DESC LIMIT 1 FOR UPDATE")).
		WithArgs("S1", "b1").
		WillReturnRows(sqlmock.NewRows(borrowRowColumns).AddRow("r1", "S1", "b1", "Algebra", borrowed, nil, false, "borrowed", borrowed))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE borrow_records SET return_date = $2, returned = true, status = $3 WHERE id = $1")).
		WithArgs("r1", sqlmock.AnyArg(), models.BorrowStatusReturned).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	at := borrowed.Add(72 * time.Hour)
	record, err := repo.ReturnLatest(context.Background(), "S1", "b1", at)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.Returned)
	assert.Equal(t, models.BorrowStatusReturned, record.Status)
	require.NotNil(t, record.ReturnDate)
	assert.True(t, record.ReturnDate.Equal(at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowRepositoryReturnWithoutOpenLoanIsNoop(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBorrowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("S1", "b1").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	record, err := repo.ReturnLatest(context.Background(), "S1", "b1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowRepositoryReturnPropagatesFailures(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBorrowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("S1", "b1").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.ReturnLatest(context.Background(), "S1", "b1", time.Now())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowRepositoryInsertLegacyRecord(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBorrowRepository(db)

	mock.ExpectExec("INSERT INTO borrow_records").
		WithArgs(sqlmock.AnyArg(), "S1", nil, "Old Atlas", sqlmock.AnyArg(), nil, false, models.BorrowStatusBorrowed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.BorrowRecord{AdmissionNumber: "S1", BookTitle: "Old Atlas", BorrowDate: time.Now()}
	require.NoError(t, repo.Insert(context.Background(), record))
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBorrowRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(append(borrowRowColumns, "student_name")).
		AddRow("r1", "S1", nil, "Algebra", now, nil, false, "borrowed", now, "Amina Otieno")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND LOWER(br.admission_number) LIKE $1 AND LOWER(br.book_title) LIKE $2 ORDER BY br.borrow_date DESC")).
		WithArgs("%s1%", "%alg%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM borrow_records br WHERE")).
		WithArgs("%s1%", "%alg%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.BorrowFilter{AdmissionNumber: "S1", BookTitle: "Alg"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, records[0].BookID)
	assert.Equal(t, "Amina Otieno", records[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
