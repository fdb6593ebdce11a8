package models

import "time"

// DisciplineRecord logs an offense and the action taken.
type DisciplineRecord struct {
	ID              string    `db:"id" json:"id"`
	AdmissionNumber string    `db:"admission_number" json:"admission_number"`
	Date            Date      `db:"date" json:"date"`
	Offense         string    `db:"offense" json:"offense"`
	ActionTaken     string    `db:"action_taken" json:"action_taken"`
	TeacherInCharge string    `db:"teacher_in_charge" json:"teacher_in_charge"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DisciplineFilter narrows discipline listings.
type DisciplineFilter struct {
	AdmissionNumber string
	Search          string
	Page            int
	PageSize        int
}
