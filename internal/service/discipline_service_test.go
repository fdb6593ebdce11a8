package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schooldb-api/internal/models"
	appErrors "github.com/noah-isme/schooldb-api/pkg/errors"
)

type mockDisciplineRepo struct {
	records map[string]models.DisciplineRecord
}

func (m *mockDisciplineRepo) List(ctx context.Context, filter models.DisciplineFilter) ([]models.DisciplineRecord, int, error) {
	out := make([]models.DisciplineRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *mockDisciplineRepo) FindByID(ctx context.Context, id string) (*models.DisciplineRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (m *mockDisciplineRepo) Create(ctx context.Context, record *models.DisciplineRecord) error {
	if m.records == nil {
		m.records = map[string]models.DisciplineRecord{}
	}
	record.ID = "disc-1"
	m.records[record.ID] = *record
	return nil
}

func (m *mockDisciplineRepo) Update(ctx context.Context, record *models.DisciplineRecord) error {
	m.records[record.ID] = *record
	return nil
}

func (m *mockDisciplineRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	return nil
}

func TestDisciplineServiceLifecycle(t *testing.T) {
	repo := &mockDisciplineRepo{}
	svc := NewDisciplineService(repo, newMockStudentRepo(sampleStudent("S1", "Form 1", "East", "Achieng")), nil, nil)
	fields := DisciplineFields{Date: "2024-03-04", Offense: "Late to class", ActionTaken: "Warning", TeacherInCharge: "Mr. Kariuki"}

	record, err := svc.Create(context.Background(), CreateDisciplineRequest{AdmissionNumber: "S1", DisciplineFields: fields})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", record.Date.String())

	fields.ActionTaken = "Detention"
	updated, err := svc.Update(context.Background(), "disc-1", UpdateDisciplineRequest{DisciplineFields: fields})
	require.NoError(t, err)
	assert.Equal(t, "Detention", updated.ActionTaken)
	assert.Equal(t, "S1", repo.records["disc-1"].AdmissionNumber)

	require.NoError(t, svc.Delete(context.Background(), "disc-1"))
	_, err = svc.Get(context.Background(), "disc-1")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestDisciplineServiceValidation(t *testing.T) {
	svc := NewDisciplineService(&mockDisciplineRepo{}, newMockStudentRepo(sampleStudent("S1", "Form 1", "East", "Achieng")), nil, nil)

	_, err := svc.Create(context.Background(), CreateDisciplineRequest{AdmissionNumber: "S1", DisciplineFields: DisciplineFields{Date: "04-03-2024", Offense: "x", ActionTaken: "y", TeacherInCharge: "z"}})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "date", appErr.Field)

	_, err = svc.Create(context.Background(), CreateDisciplineRequest{AdmissionNumber: "S2", DisciplineFields: DisciplineFields{Date: "2024-03-04", Offense: "x", ActionTaken: "y", TeacherInCharge: "z"}})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	_, _, err = svc.List(context.Background(), models.DisciplineFilter{AdmissionNumber: "S1"})
	assert.NoError(t, err)
}
