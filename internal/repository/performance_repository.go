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

const performanceColumns = `p.id, p.admission_number, p.term, p.subject, p.marks, p.grade, p.teacher_comments, p.created_at, p.updated_at`

const rankingSelect = `SELECT p.admission_number, s.first_name, s.last_name, s.stream, p.term, p.marks
        FROM performance_records p JOIN students s ON s.admission_number = p.admission_number`

// PerformanceRepository persists academic performance records.
type PerformanceRepository struct {
	db *sqlx.DB
}

// NewPerformanceRepository constructs a PerformanceRepository.
func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// List returns performance records ordered by term then subject.
func (r *PerformanceRepository) List(ctx context.Context, filter models.PerformanceFilter) ([]models.PerformanceRecord, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.AdmissionNumber != "" {
		args = append(args, filter.AdmissionNumber)
		conditions = append(conditions, fmt.Sprintf("p.admission_number = $%d", len(args)))
	}
	if filter.Term != "" {
		args = append(args, filter.Term)
		conditions = append(conditions, fmt.Sprintf("p.term = $%d", len(args)))
	}
	if filter.Subject != "" {
		args = append(args, strings.ToLower(filter.Subject))
		conditions = append(conditions, fmt.Sprintf("LOWER(p.subject) = $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM performance_records p %s ORDER BY p.term, p.subject, p.admission_number LIMIT %d OFFSET %d", performanceColumns, where, limit, offset)
	var records []models.PerformanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list performance records: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM performance_records p "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count performance records: %w", err)
	}
	return records, total, nil
}

// ListByStudent returns a student's records ordered by term then subject.
func (r *PerformanceRepository) ListByStudent(ctx context.Context, admissionNumber string) ([]models.PerformanceRecord, error) {
	var records []models.PerformanceRecord
	query := "SELECT " + performanceColumns + " FROM performance_records p WHERE p.admission_number = $1 ORDER BY p.term, p.subject"
	if err := r.db.SelectContext(ctx, &records, query, admissionNumber); err != nil {
		return nil, fmt.Errorf("list student performance: %w", err)
	}
	return records, nil
}

// FindByID fetches a performance record.
func (r *PerformanceRepository) FindByID(ctx context.Context, id string) (*models.PerformanceRecord, error) {
	var record models.PerformanceRecord
	if err := r.db.GetContext(ctx, &record, "SELECT "+performanceColumns+" FROM performance_records p WHERE p.id = $1", id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a performance record; the grade must already be set.
func (r *PerformanceRepository) Create(ctx context.Context, record *models.PerformanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO performance_records (id, admission_number, term, subject, marks, grade, teacher_comments, created_at, updated_at)
        VALUES (:id, :admission_number, :term, :subject, :marks, :grade, :teacher_comments, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create performance record: %w", err)
	}
	return nil
}

// Update modifies a performance record.
func (r *PerformanceRepository) Update(ctx context.Context, record *models.PerformanceRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE performance_records SET term = :term, subject = :subject, marks = :marks, grade = :grade,
        teacher_comments = :teacher_comments, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update performance record: %w", err)
	}
	return nil
}

// Delete removes a performance record.
func (r *PerformanceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM performance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete performance record: %w", err)
	}
	return requireAffected(res)
}

// RankingRows returns every mark joined with its owner's name and stream.
func (r *PerformanceRepository) RankingRows(ctx context.Context) ([]models.PerformanceMark, error) {
	var rows []models.PerformanceMark
	if err := r.db.SelectContext(ctx, &rows, rankingSelect+" ORDER BY p.admission_number, p.term"); err != nil {
		return nil, fmt.Errorf("load ranking rows: %w", err)
	}
	return rows, nil
}

// RankingRowsForStream restricts RankingRows to one stream.
func (r *PerformanceRepository) RankingRowsForStream(ctx context.Context, stream string) ([]models.PerformanceMark, error) {
	var rows []models.PerformanceMark
	if err := r.db.SelectContext(ctx, &rows, rankingSelect+" WHERE s.stream = $1 ORDER BY p.admission_number, p.term", stream); err != nil {
		return nil, fmt.Errorf("load stream ranking rows: %w", err)
	}
	return rows, nil
}
