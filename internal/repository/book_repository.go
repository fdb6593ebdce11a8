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

const bookColumns = `b.id, b.title, b.author, b.subject, b.isbn, b.total_copies, b.created_at, b.updated_at`

// availabilitySelect joins the live open-borrow count onto each book.
const availabilitySelect = `SELECT ` + bookColumns + `,
        COUNT(br.id) FILTER (WHERE br.returned = false) AS borrowed_count,
        MAX(br.borrow_date) AS last_borrowed_at
        FROM books b LEFT JOIN borrow_records br ON br.book_id = b.id`

// BookRepository manages persistence for the library catalogue.
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository constructs a BookRepository.
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

// List returns books with circulation counts, ordered by subject then title.
func (r *BookRepository) List(ctx context.Context, filter models.BookFilter) ([]models.BookAvailability, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		conditions = append(conditions, fmt.Sprintf("b.subject = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(b.title) LIKE $%d OR LOWER(COALESCE(b.author, '')) LIKE $%d OR b.isbn = $%d)", len(args), len(args), len(args)+1))
		args = append(args, filter.Search)
	}
	where := "WHERE " + strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s %s GROUP BY b.id ORDER BY b.subject, b.title LIMIT %d OFFSET %d", availabilitySelect, where, limit, offset)
	var books []models.BookAvailability
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM books b "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	return books, total, nil
}

// ListAvailability returns every book with circulation counts for the catalogue.
func (r *BookRepository) ListAvailability(ctx context.Context) ([]models.BookAvailability, error) {
	var books []models.BookAvailability
	if err := r.db.SelectContext(ctx, &books, availabilitySelect+" GROUP BY b.id ORDER BY b.subject, b.title"); err != nil {
		return nil, fmt.Errorf("list book availability: %w", err)
	}
	return books, nil
}

// FindByID fetches a book.
func (r *BookRepository) FindByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.GetContext(ctx, &book, "SELECT "+bookColumns+" FROM books b WHERE b.id = $1", id); err != nil {
		return nil, err
	}
	return &book, nil
}

// FindAvailability fetches a book with its live borrowed count.
func (r *BookRepository) FindAvailability(ctx context.Context, id string) (*models.BookAvailability, error) {
	var book models.BookAvailability
	if err := r.db.GetContext(ctx, &book, availabilitySelect+" WHERE b.id = $1 GROUP BY b.id", id); err != nil {
		return nil, err
	}
	return &book, nil
}

// Create inserts a book.
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now
	const query = `INSERT INTO books (id, title, author, subject, isbn, total_copies, created_at, updated_at)
        VALUES (:id, :title, :author, :subject, :isbn, :total_copies, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// Update modifies a book.
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now().UTC()
	const query = `UPDATE books SET title = :title, author = :author, subject = :subject, isbn = :isbn, total_copies = :total_copies, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

// Delete removes a book regardless of outstanding loans; borrow records keep
// their title and lose the reference.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return requireAffected(res)
}
