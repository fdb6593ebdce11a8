package dto

import "github.com/noah-isme/schooldb-api/internal/models"

// SubjectShelf groups catalogue entries under one subject.
type SubjectShelf struct {
	Subject models.Subject            `json:"subject"`
	Books   []models.BookAvailability `json:"books"`
}

// BorrowRequest identifies the book being borrowed or returned. Staff pass
// the admission number explicitly; students act for themselves.
type BorrowRequest struct {
	AdmissionNumber string `json:"admission_number" validate:"omitempty,max=20"`
	BookID          string `json:"book_id" validate:"required,uuid"`
}

// ReturnResult reports whether an open record was closed.
type ReturnResult struct {
	Returned bool                 `json:"returned"`
	Record   *models.BorrowRecord `json:"record,omitempty"`
}
