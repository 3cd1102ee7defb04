package models

import "time"

// Grade records a scored assignment for a student in a class.
type Grade struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	AssignmentName string    `db:"assignment_name" json:"assignment_name"`
	Score          float64   `db:"score" json:"score"`
	MaxScore       float64   `db:"max_score" json:"max_score"`
	Date           time.Time `db:"date" json:"date"`
	Category       string    `db:"category" json:"category,omitempty"`
	Notes          string    `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter encapsulates allowed search parameters for listing grades.
type GradeFilter struct {
	StudentID string
	ClassID   string
	Category  string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
