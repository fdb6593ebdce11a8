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

func TestDisciplineRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDisciplineRepository(db)

	now := time.Now()
	cols := []string{"id", "admission_number", "date", "offense", "action_taken", "teacher_in_charge", "created_at", "updated_at"}
	rows := sqlmock.NewRows(cols).
		AddRow("d2", "S1", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), "Late", "Warning", "Mr. Mwangi", now, now).
		AddRow("d1", "S1", "2024-01-15", "Noise", "Detention", "Ms. Wanjiru", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE admission_number = $1 ORDER BY date DESC, created_at DESC")).
		WithArgs("S1").
		WillReturnRows(rows)

	records, err := repo.ListByStudent(context.Background(), "S1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-03-02", records[0].Date.String())
	assert.Equal(t, "2024-01-15", records[1].Date.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisciplineRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDisciplineRepository(db)

	mock.ExpectExec("INSERT INTO discipline_records").
		WithArgs(sqlmock.AnyArg(), "S1", "2024-03-02", "Late", "Warning", "Mr. Mwangi", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	date, err := models.ParseDate("2024-03-02")
	require.NoError(t, err)
	record := &models.DisciplineRecord{AdmissionNumber: "S1", Date: date, Offense: "Late", ActionTaken: "Warning", TeacherInCharge: "Mr. Mwangi"}
	require.NoError(t, repo.Create(context.Background(), record))
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
