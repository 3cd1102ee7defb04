package models

import (
	"time"

	"github.com/lib/pq"
)

// StudentStatus represents the enrollment state of a student.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "Active"
	StudentStatusInactive StudentStatus = "Inactive"
)

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	return s == StudentStatusActive || s == StudentStatusInactive
}

// StudyMode captures how the student attends classes.
type StudyMode string

const (
	StudyModeOnline  StudyMode = "Online"
	StudyModeOffline StudyMode = "Offline"
)

// Valid reports whether the mode is supported. The empty value is allowed
// because the field is optional.
func (m StudyMode) Valid() bool {
	return m == "" || m == StudyModeOnline || m == StudyModeOffline
}

// StudyType captures the enrollment intensity.
type StudyType string

const (
	StudyTypeFullTime StudyType = "Full-time"
	StudyTypePartTime StudyType = "Part-time"
)

// Valid reports whether the type is supported; empty is allowed.
func (t StudyType) Valid() bool {
	return t == "" || t == StudyTypeFullTime || t == StudyTypePartTime
}

// GradeLevels enumerates the supported grade levels, kindergarten first.
var GradeLevels = []string{"K", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

// ValidGradeLevel reports whether level is one of K,1..12.
func ValidGradeLevel(level string) bool {
	for _, l := range GradeLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Student represents a learner registered in the school.
type Student struct {
	ID             string        `db:"id" json:"id"`
	FirstName      string        `db:"first_name" json:"first_name"`
	LastName       string        `db:"last_name" json:"last_name"`
	Email          string        `db:"email" json:"email"`
	Phone          string        `db:"phone" json:"phone,omitempty"`
	GradeLevel     string        `db:"grade_level" json:"grade_level"`
	Status         StudentStatus `db:"status" json:"status"`
	EnrollmentDate time.Time     `db:"enrollment_date" json:"enrollment_date"`
	Address        string        `db:"address" json:"address,omitempty"`
	ParentContact  string        `db:"parent_contact" json:"parent_contact,omitempty"`

	// Optional profile enrichment fields.
	Newsletter         bool           `db:"newsletter" json:"newsletter"`
	TermsAgreed        bool           `db:"terms_agreed" json:"terms_agreed"`
	TuitionFee         *float64       `db:"tuition_fee" json:"tuition_fee,omitempty"`
	ScholarshipAmount  *float64       `db:"scholarship_amount" json:"scholarship_amount,omitempty"`
	StudyMode          StudyMode      `db:"study_mode" json:"study_mode,omitempty"`
	StudyType          StudyType      `db:"study_type" json:"study_type,omitempty"`
	Website            string         `db:"website" json:"website,omitempty"`
	SocialProfile      string         `db:"social_profile" json:"social_profile,omitempty"`
	SatisfactionRating *int           `db:"satisfaction_rating" json:"satisfaction_rating,omitempty"`
	InstructorRating   *int           `db:"instructor_rating" json:"instructor_rating,omitempty"`
	Interests          pq.StringArray `db:"interests" json:"interests,omitempty"`
	Skills             pq.StringArray `db:"skills" json:"skills,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name used across derived views.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	GradeLevel string
	Status     *StudentStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
