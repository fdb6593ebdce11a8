package models

import "time"

// Gender of a student.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the accepted genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

// Student is a learner keyed by admission number. Every other record
// references a student and is removed with it.
type Student struct {
	AdmissionNumber string    `db:"admission_number" json:"admission_number"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	DateOfBirth     Date      `db:"dob" json:"dob"`
	Gender          Gender    `db:"gender" json:"gender"`
	Class           string    `db:"student_class" json:"student_class"`
	Stream          string    `db:"stream" json:"stream"`
	ContactNumber   string    `db:"contact_number" json:"contact_number"`
	ParentName      string    `db:"parent_name" json:"parent_name"`
	ParentContact   string    `db:"parent_contact" json:"parent_contact"`
	Address         string    `db:"address" json:"address"`
	PhotoPath       *string   `db:"photo_path" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// HasPhoto reports whether a photo has been uploaded.
func (s Student) HasPhoto() bool {
	return s.PhotoPath != nil && *s.PhotoPath != ""
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Class     string
	Stream    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
