package models

import (
	"time"

	"github.com/lib/pq"
)

// Class represents a scheduled course section taught by a single teacher.
type Class struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Subject     string         `db:"subject" json:"subject"`
	TeacherName string         `db:"teacher_name" json:"teacher_name"`
	Room        string         `db:"room" json:"room,omitempty"`
	Schedule    pq.StringArray `db:"schedule" json:"schedule,omitempty"`
	GradeLevel  string         `db:"grade_level" json:"grade_level"`
	MaxCapacity int            `db:"max_capacity" json:"max_capacity"`
	StudentIDs  pq.StringArray `db:"student_ids" json:"student_ids"`
	Description string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// EnrolledCount returns the number of students currently on the roster.
func (c Class) EnrolledCount() int {
	return len(c.StudentIDs)
}

// HasStudent reports whether id is already enrolled.
func (c Class) HasStudent(id string) bool {
	for _, sid := range c.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// ClassFilter encapsulates allowed search parameters for listing classes.
type ClassFilter struct {
	Search     string
	Subject    string
	GradeLevel string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
