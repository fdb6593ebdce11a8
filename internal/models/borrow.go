package models

import (
	"errors"
	"time"
)

// ErrNoAvailableCopies is returned when every copy of a book is out.
var ErrNoAvailableCopies = errors.New("no available copies")

// BorrowStatus is the lifecycle state of a borrow record.
type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "borrowed"
	BorrowStatusReturned BorrowStatus = "returned"
	// BorrowStatusLate is accepted on stored records; no operation moves a
	// record into it.
	BorrowStatusLate BorrowStatus = "late"
)

// Valid reports whether s is a known status.
func (s BorrowStatus) Valid() bool {
	switch s {
	case BorrowStatusBorrowed, BorrowStatusReturned, BorrowStatusLate:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition leaves s.
func (s BorrowStatus) Terminal() bool {
	switch s {
	case BorrowStatusReturned, BorrowStatusLate:
		return true
	case BorrowStatusBorrowed:
		return false
	default:
		return false
	}
}

// BorrowRecord tracks one loan of a book to a student. BookID is nil for
// legacy loans and for loans whose book was since deleted; BookTitle keeps
// the history readable.
type BorrowRecord struct {
	ID              string       `db:"id" json:"id"`
	AdmissionNumber string       `db:"admission_number" json:"admission_number"`
	BookID          *string      `db:"book_id" json:"book_id,omitempty"`
	BookTitle       string       `db:"book_title" json:"book_title"`
	BorrowDate      time.Time    `db:"borrow_date" json:"borrow_date"`
	ReturnDate      *time.Time   `db:"return_date" json:"return_date,omitempty"`
	Returned        bool         `db:"returned" json:"returned"`
	Status          BorrowStatus `db:"status" json:"status"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
}

// BorrowRecordDetail adds the borrower's name for listings.
type BorrowRecordDetail struct {
	BorrowRecord
	StudentName string `db:"student_name" json:"student_name"`
}

// BorrowFilter narrows the circulation list by substrings.
type BorrowFilter struct {
	AdmissionNumber string
	BookTitle       string
	OpenOnly        bool
	Page            int
	PageSize        int
}
