package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/schooldb-api/internal/models"
)

const borrowColumns = `br.id, br.admission_number, br.book_id, br.book_title, br.borrow_date, br.return_date, br.returned, br.status, br.created_at`

// BorrowParams describes a loan of a catalogued book.
type BorrowParams struct {
	AdmissionNumber string
	BookID          string
	BorrowDate      time.Time
}

// BorrowRepository persists library circulation records.
type BorrowRepository struct {
	db *sqlx.DB
}

// NewBorrowRepository constructs a BorrowRepository.
func NewBorrowRepository(db *sqlx.DB) *BorrowRepository {
	return &BorrowRepository{db: db}
}

// Borrow checks availability and records the loan in one transaction. The
// book row is locked so concurrent borrows of the same title queue behind
// each other. It returns models.ErrNoAvailableCopies when every copy is out
// and sql.ErrNoRows when the book does not exist.
func (r *BorrowRepository) Borrow(ctx context.Context, params BorrowParams) (record *models.BorrowRecord, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin borrow transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var book struct {
		Title       string `db:"title"`
		TotalCopies int    `db:"total_copies"`
	}
	if err = tx.GetContext(ctx, &book, `SELECT title, total_copies FROM books WHERE id = $1 FOR UPDATE`, params.BookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock book: %w", err)
	}

	var open int
	if err = tx.GetContext(ctx, &open, `SELECT COUNT(*) FROM borrow_records WHERE book_id = $1 AND returned = false`, params.BookID); err != nil {
		return nil, fmt.Errorf("count open borrows: %w", err)
	}
	if open >= book.TotalCopies {
		err = models.ErrNoAvailableCopies
		return nil, err
	}

	bookID := params.BookID
	record = &models.BorrowRecord{
		ID:              uuid.NewString(),
		AdmissionNumber: params.AdmissionNumber,
		BookID:          &bookID,
		BookTitle:       book.Title,
		BorrowDate:      params.BorrowDate,
		Status:          models.BorrowStatusBorrowed,
		CreatedAt:       time.Now().UTC(),
	}
	if record.BorrowDate.IsZero() {
		record.BorrowDate = record.CreatedAt
	}
	if err = insertBorrow(ctx, tx, record); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit borrow: %w", err)
	}
	return record, nil
}

// Insert stores a loan without an availability check. It backs title-only
// records that reference no catalogued book.
func (r *BorrowRepository) Insert(ctx context.Context, record *models.BorrowRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.BorrowStatusBorrowed
	}
	record.CreatedAt = time.Now().UTC()
	return insertBorrow(ctx, r.db, record)
}

// ReturnLatest closes the most recent open loan of the book by the student.
// It returns nil without error when there is nothing to return.
func (r *BorrowRepository) ReturnLatest(ctx context.Context, admissionNumber, bookID string, at time.Time) (record *models.BorrowRecord, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin return transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var open models.BorrowRecord
	const selectQuery = `SELECT ` + borrowColumns + ` FROM borrow_records br
        WHERE br.admission_number = $1 AND br.book_id = $2 AND br.returned = false
        ORDER BY br.borrow_date DESC, br.created_at DESC LIMIT 1 FOR UPDATE`
	if err = tx.GetContext(ctx, &open, selectQuery, admissionNumber, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			_ = tx.Rollback()
			return nil, nil
		}
		return nil, fmt.Errorf("lock open borrow: %w", err)
	}

	returnedAt := at.UTC()
	const updateQuery = `UPDATE borrow_records SET return_date = $2, returned = true, status = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, open.ID, returnedAt, models.BorrowStatusReturned); err != nil {
		return nil, fmt.Errorf("close borrow: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit return: %w", err)
	}

	open.ReturnDate = &returnedAt
	open.Returned = true
	open.Status = models.BorrowStatusReturned
	return &open, nil
}

// List returns circulation records matching admission number and title substrings, newest first.
func (r *BorrowRepository) List(ctx context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.AdmissionNumber != "" {
		args = append(args, "%"+strings.ToLower(filter.AdmissionNumber)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(br.admission_number) LIKE $%d", len(args)))
	}
	if filter.BookTitle != "" {
		args = append(args, "%"+strings.ToLower(filter.BookTitle)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(br.book_title) LIKE $%d", len(args)))
	}
	if filter.OpenOnly {
		conditions = append(conditions, "br.returned = false")
	}
	where := "WHERE " + strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name
        FROM borrow_records br JOIN students s ON s.admission_number = br.admission_number
        %s ORDER BY br.borrow_date DESC, br.created_at DESC LIMIT %d OFFSET %d`, borrowColumns, where, limit, offset)
	var records []models.BorrowRecordDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list borrow records: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM borrow_records br "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count borrow records: %w", err)
	}
	return records, total, nil
}

// ListByStudent returns a student's loans, newest first.
func (r *BorrowRepository) ListByStudent(ctx context.Context, admissionNumber string, openOnly bool) ([]models.BorrowRecord, error) {
	query := "SELECT " + borrowColumns + " FROM borrow_records br WHERE br.admission_number = $1"
	if openOnly {
		query += " AND br.returned = false"
	}
	query += " ORDER BY br.borrow_date DESC, br.created_at DESC"
	var records []models.BorrowRecord
	if err := r.db.SelectContext(ctx, &records, query, admissionNumber); err != nil {
		return nil, fmt.Errorf("list student borrow records: %w", err)
	}
	return records, nil
}

func insertBorrow(ctx context.Context, exec sqlx.ExtContext, record *models.BorrowRecord) error {
	const query = `INSERT INTO borrow_records (id, admission_number, book_id, book_title, borrow_date, return_date, returned, status, created_at)
        VALUES (:id, :admission_number, :book_id, :book_title, :borrow_date, :return_date, :returned, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, record); err != nil {
		return fmt.Errorf("insert borrow record: %w", err)
	}
	return nil
}
