package analytics

import (
	"github.com/classtrack/classtrack-api/internal/models"
)

// StudentProfile is the derived summary shown on a student's detail page.
type StudentProfile struct {
	Student        models.Student `json:"student"`
	GPA            string         `json:"gpa"`
	AverageGrade   int            `json:"average_grade"`
	AttendanceRate *int           `json:"attendance_rate,omitempty"`
	GradeCount     int            `json:"grade_count"`
	DocumentCount  int            `json:"document_count"`
}

// BuildStudentProfile composes a student's summary from their own records.
// AttendanceRate is nil when the student has no attendance history, so the
// view can distinguish "no data" from a genuine zero.
func BuildStudentProfile(student models.Student, grades []models.Grade, attendance []models.Attendance, documents []models.Document) StudentProfile {
	profile := StudentProfile{
		Student:       student,
		GPA:           GPA(grades),
		GradeCount:    len(grades),
		DocumentCount: len(documents),
	}
	profile.AverageGrade = AveragePercentage(grades)
	if len(attendance) > 0 {
		rate := Rate(attendance, Attended)
		profile.AttendanceRate = &rate
	}
	return profile
}
