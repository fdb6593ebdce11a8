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

const feeColumns = `f.id, f.admission_number, f.term, f.amount_due, f.amount_paid, f.balance, f.payment_status, f.recorded_at, f.created_at, f.updated_at`

// FeeRepository persists fee records.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

func feeWhere(filter models.FeeFilter) (string, []interface{}) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.AdmissionNumber != "" {
		args = append(args, "%"+strings.ToLower(filter.AdmissionNumber)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(f.admission_number) LIKE $%d", len(args)))
	}
	if filter.Term != "" {
		args = append(args, filter.Term)
		conditions = append(conditions, fmt.Sprintf("f.term = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("f.payment_status = $%d", len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List returns fee records newest first.
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeRecordDetail, int, error) {
	where, args := feeWhere(filter)
	limit, offset := pageWindow(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name
        FROM fee_records f JOIN students s ON s.admission_number = f.admission_number
        %s ORDER BY f.recorded_at DESC LIMIT %d OFFSET %d`, feeColumns, where, limit, offset)
	var fees []models.FeeRecordDetail
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fee records: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM fee_records f "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count fee records: %w", err)
	}
	return fees, total, nil
}

// ListAll returns the whole fee register for exports, ordered by term then admission number.
func (r *FeeRepository) ListAll(ctx context.Context, filter models.FeeFilter) ([]models.FeeRecordDetail, error) {
	where, args := feeWhere(filter)
	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name
        FROM fee_records f JOIN students s ON s.admission_number = f.admission_number
        %s ORDER BY f.term, f.admission_number`, feeColumns, where)
	var fees []models.FeeRecordDetail
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, fmt.Errorf("list fee register: %w", err)
	}
	return fees, nil
}

// ListByStudent returns a student's fee records ordered by term.
func (r *FeeRepository) ListByStudent(ctx context.Context, admissionNumber string) ([]models.FeeRecord, error) {
	var fees []models.FeeRecord
	query := "SELECT " + feeColumns + " FROM fee_records f WHERE f.admission_number = $1 ORDER BY f.term, f.recorded_at"
	if err := r.db.SelectContext(ctx, &fees, query, admissionNumber); err != nil {
		return nil, fmt.Errorf("list student fees: %w", err)
	}
	return fees, nil
}

// FindByID fetches a fee record.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.FeeRecord, error) {
	var fee models.FeeRecord
	if err := r.db.GetContext(ctx, &fee, "SELECT "+feeColumns+" FROM fee_records f WHERE f.id = $1", id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// Create inserts a fee record; balance and status must already be derived.
func (r *FeeRepository) Create(ctx context.Context, fee *models.FeeRecord) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fee.RecordedAt.IsZero() {
		fee.RecordedAt = now
	}
	fee.CreatedAt = now
	fee.UpdatedAt = now
	const query = `INSERT INTO fee_records (id, admission_number, term, amount_due, amount_paid, balance, payment_status, recorded_at, created_at, updated_at)
        VALUES (:id, :admission_number, :term, :amount_due, :amount_paid, :balance, :payment_status, :recorded_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee record: %w", err)
	}
	return nil
}

// Update modifies a fee record.
func (r *FeeRepository) Update(ctx context.Context, fee *models.FeeRecord) error {
	fee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fee_records SET term = :term, amount_due = :amount_due, amount_paid = :amount_paid, balance = :balance,
        payment_status = :payment_status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("update fee record: %w", err)
	}
	return nil
}

// Delete removes a fee record.
func (r *FeeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fee_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete fee record: %w", err)
	}
	return requireAffected(res)
}
