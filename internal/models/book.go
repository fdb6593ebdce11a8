package models

import "time"

// Subject is the closed set of library shelves.
type Subject string

const (
	SubjectMathematics     Subject = "Mathematics"
	SubjectEnglish         Subject = "English"
	SubjectKiswahili       Subject = "Kiswahili"
	SubjectBiology         Subject = "Biology"
	SubjectChemistry       Subject = "Chemistry"
	SubjectPhysics         Subject = "Physics"
	SubjectGeography       Subject = "Geography"
	SubjectHistory         Subject = "History"
	SubjectCRE             Subject = "CRE"
	SubjectBusinessStudies Subject = "Business Studies"
	SubjectAgriculture     Subject = "Agriculture"
	SubjectComputerStudies Subject = "Computer Studies"
	SubjectOther           Subject = "Other"
)

// Subjects lists every shelf in display order.
var Subjects = []Subject{
	SubjectMathematics, SubjectEnglish, SubjectKiswahili, SubjectBiology,
	SubjectChemistry, SubjectPhysics, SubjectGeography, SubjectHistory,
	SubjectCRE, SubjectBusinessStudies, SubjectAgriculture,
	SubjectComputerStudies, SubjectOther,
}

// Valid reports whether s is a known subject.
func (s Subject) Valid() bool {
	switch s {
	case SubjectMathematics, SubjectEnglish, SubjectKiswahili, SubjectBiology,
		SubjectChemistry, SubjectPhysics, SubjectGeography, SubjectHistory,
		SubjectCRE, SubjectBusinessStudies, SubjectAgriculture,
		SubjectComputerStudies, SubjectOther:
		return true
	default:
		return false
	}
}

// Book is a catalogue title with a fixed number of physical copies.
type Book struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Author      *string   `db:"author" json:"author,omitempty"`
	Subject     Subject   `db:"subject" json:"subject"`
	ISBN        *string   `db:"isbn" json:"isbn,omitempty"`
	TotalCopies int       `db:"total_copies" json:"total_copies"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BookAvailability is a book together with its live circulation counts.
type BookAvailability struct {
	Book
	BorrowedCount   int        `db:"borrowed_count" json:"borrowed"`
	LastBorrowedAt  *time.Time `db:"last_borrowed_at" json:"last_borrowed_at,omitempty"`
	AvailableCopies int        `db:"-" json:"available_copies"`
	IsAvailable     bool       `db:"-" json:"is_available"`
}

// BookFilter narrows the book list.
type BookFilter struct {
	Search   string
	Subject  Subject
	Page     int
	PageSize int
}
