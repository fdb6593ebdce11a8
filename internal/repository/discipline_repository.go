package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/schooldb-api/internal/models"
)

const disciplineColumns = `id, admission_number, date, offense, action_taken, teacher_in_charge, created_at, updated_at`

// DisciplineRepository persists discipline records.
type DisciplineRepository struct {
	db *sqlx.DB
}

// NewDisciplineRepository constructs a DisciplineRepository.
func NewDisciplineRepository(db *sqlx.DB) *DisciplineRepository {
	return &DisciplineRepository{db: db}
}

// List returns discipline records, most recent first.
func (r *DisciplineRepository) List(ctx context.Context, filter models.DisciplineFilter) ([]models.DisciplineRecord, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.AdmissionNumber != "" {
		args = append(args, filter.AdmissionNumber)
		conditions = append(conditions, fmt.Sprintf("admission_number = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(offense) LIKE $%d OR LOWER(teacher_in_charge) LIKE $%d)", len(args), len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM discipline_records %s ORDER BY date DESC, created_at DESC LIMIT %d OFFSET %d", disciplineColumns, where, limit, offset)
	var records []models.DisciplineRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list discipline records: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM discipline_records "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count discipline records: %w", err)
	}
	return records, total, nil
}

// ListByStudent returns a student's discipline history, most recent first.
func (r *DisciplineRepository) ListByStudent(ctx context.Context, admissionNumber string) ([]models.DisciplineRecord, error) {
	var records []models.DisciplineRecord
	query := "SELECT " + disciplineColumns + " FROM discipline_records WHERE admission_number = $1 ORDER BY date DESC, created_at DESC"
	if err := r.db.SelectContext(ctx, &records, query, admissionNumber); err != nil {
		return nil, fmt.Errorf("list student discipline: %w", err)
	}
	return records, nil
}

// FindByID fetches a discipline record.
func (r *DisciplineRepository) FindByID(ctx context.Context, id string) (*models.DisciplineRecord, error) {
	var record models.DisciplineRecord
	if err := r.db.GetContext(ctx, &record, "SELECT "+disciplineColumns+" FROM discipline_records WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a discipline record.
func (r *DisciplineRepository) Create(ctx context.Context, record *models.DisciplineRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO discipline_records (id, admission_number, date, offense, action_taken, teacher_in_charge, created_at, updated_at)
        VALUES (:id, :admission_number, :date, :offense, :action_taken, :teacher_in_charge, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create discipline record: %w", err)
	}
	return nil
}

// Update modifies a discipline record.
func (r *DisciplineRepository) Update(ctx context.Context, record *models.DisciplineRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE discipline_records SET date = :date, offense = :offense, action_taken = :action_taken,
        teacher_in_charge = :teacher_in_charge, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update discipline record: %w", err)
	}
	return nil
}

// Delete removes a discipline record.
func (r *DisciplineRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discipline_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discipline record: %w", err)
	}
	return requireAffected(res)
}
