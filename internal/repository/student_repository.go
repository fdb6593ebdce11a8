package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/schooldb-api/internal/models"
)

const studentColumns = `admission_number, first_name, last_name, dob, gender, student_class, stream, contact_number, parent_name, parent_contact, address, photo_path, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Class != "" {
		args = append(args, filter.Class)
		conditions = append(conditions, fmt.Sprintf("student_class = $%d", len(args)))
	}
	if filter.Stream != "" {
		args = append(args, filter.Stream)
		conditions = append(conditions, fmt.Sprintf("stream = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(admission_number) LIKE $%d OR LOWER(first_name || ' ' || last_name) LIKE $%d)", len(args), len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"admission_number": "admission_number",
		"last_name":        "last_name",
		"student_class":    "student_class",
		"created_at":       "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "admission_number"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM students %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, where, column, order, limit, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns every student ordered for the class register.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students ORDER BY student_class, stream, last_name, first_name"
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// FindByAdmissionNumber fetches a student by admission number.
func (r *StudentRepository) FindByAdmissionNumber(ctx context.Context, admissionNumber string) (*models.Student, error) {
	var student models.Student
	query := "SELECT " + studentColumns + " FROM students WHERE admission_number = $1"
	if err := r.db.GetContext(ctx, &student, query, admissionNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// Exists reports whether the admission number is taken.
func (r *StudentRepository) Exists(ctx context.Context, admissionNumber string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE admission_number = $1 LIMIT 1", admissionNumber); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check admission number: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (admission_number, first_name, last_name, dob, gender, student_class, stream, contact_number, parent_name, parent_contact, address, photo_path, created_at, updated_at)
        VALUES (:admission_number, :first_name, :last_name, :dob, :gender, :student_class, :stream, :contact_number, :parent_name, :parent_contact, :address, :photo_path, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student's bio-data. The photo is managed by UpdatePhoto.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, dob = :dob, gender = :gender, student_class = :student_class, stream = :stream,
        contact_number = :contact_number, parent_name = :parent_name, parent_contact = :parent_contact, address = :address, updated_at = :updated_at
        WHERE admission_number = :admission_number`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdatePhoto stores or clears the photo reference.
func (r *StudentRepository) UpdatePhoto(ctx context.Context, admissionNumber string, photoPath *string) error {
	const query = `UPDATE students SET photo_path = $2, updated_at = $3 WHERE admission_number = $1`
	if _, err := r.db.ExecContext(ctx, query, admissionNumber, photoPath, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student photo: %w", err)
	}
	return nil
}

// Delete removes a student; owned records go with it through the foreign keys.
func (r *StudentRepository) Delete(ctx context.Context, admissionNumber string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE admission_number = $1`, admissionNumber)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireAffected(res)
}

// requireAffected maps a zero-row write to sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
