package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
)

func TestBuildDashboardCounts(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	students := []models.Student{
		{ID: "s1", FirstName: "Ann", LastName: "Lee", Status: models.StudentStatusActive},
		{ID: "s2", FirstName: "Bob", LastName: "Chan", Status: models.StudentStatusInactive},
	}
	classes := []models.Class{{ID: "c1", Name: "Algebra I"}}
	grades := []models.Grade{
		{StudentID: "s1", ClassID: "c1", AssignmentName: "Quiz 1", Score: 45, MaxScore: 50, Date: now.AddDate(0, 0, -2)},
	}
	attendance := []models.Attendance{
		{StudentID: "s1", ClassID: "c1", Status: models.AttendancePresent, Date: now.AddDate(0, 0, -1)},
		{StudentID: "s1", ClassID: "c1", Status: models.AttendanceAbsent, Date: now.AddDate(0, 0, -2)},
	}

	summary := BuildDashboard(students, classes, grades, attendance, now, DashboardOptions{})

	assert.Equal(t, 1, summary.ActiveStudents)
	assert.Equal(t, 1, summary.TotalClasses)
	assert.Equal(t, 50, summary.WeeklyAttendanceRate)
	assert.Equal(t, 90, summary.MonthlyAverageGrade)
	assert.Equal(t, 0, summary.UnresolvedReferences)
}

func TestBuildDashboardWindows(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	grades := []models.Grade{
		// Outside the one-month window, must not affect the average.
		{StudentID: "s1", Score: 10, MaxScore: 100, Date: now.AddDate(0, -2, 0)},
		{StudentID: "s1", Score: 80, MaxScore: 100, Date: now.AddDate(0, 0, -5)},
	}
	attendance := []models.Attendance{
		// Outside the seven-day window.
		{StudentID: "s1", Status: models.AttendanceAbsent, Date: now.AddDate(0, 0, -20)},
		{StudentID: "s1", Status: models.AttendancePresent, Date: now.AddDate(0, 0, -1)},
	}
	students := []models.Student{{ID: "s1", FirstName: "Ann", LastName: "Lee", Status: models.StudentStatusActive}}

	summary := BuildDashboard(students, nil, grades, attendance, now, DashboardOptions{})

	assert.Equal(t, 100, summary.WeeklyAttendanceRate)
	assert.Equal(t, 80, summary.MonthlyAverageGrade)
}

func TestBuildDashboardLateIsNotPresent(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	students := []models.Student{{ID: "s1", FirstName: "Ann", LastName: "Lee", Status: models.StudentStatusActive}}
	attendance := []models.Attendance{
		{StudentID: "s1", ClassID: "c1", Status: models.AttendanceLate, Date: now.AddDate(0, 0, -1)},
	}

	summary := BuildDashboard(students, nil, nil, attendance, now, DashboardOptions{})

	assert.Equal(t, 0, summary.WeeklyAttendanceRate)
}

func TestBuildDashboardAverageGradeRoundsMeanOnce(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	students := []models.Student{{ID: "s1", FirstName: "Ann", LastName: "Lee", Status: models.StudentStatusActive}}
	grades := []models.Grade{
		{StudentID: "s1", Score: 85, MaxScore: 100, Date: now.AddDate(0, 0, -1)},
		{StudentID: "s1", Score: 86, MaxScore: 100, Date: now.AddDate(0, 0, -2)},
	}

	summary := BuildDashboard(students, nil, grades, nil, now, DashboardOptions{})

	// Mean of 85 and 86 is 85.5, which rounds up to 86; per-grade rounding
	// or integer division would truncate to 85.
	assert.Equal(t, 86, summary.MonthlyAverageGrade)
}

func TestBuildDashboardClassOverview(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	classes := []models.Class{
		{ID: "c1", Name: "Algebra I", MaxCapacity: 20, StudentIDs: []string{"s1", "s2"}},
		{ID: "c2", Name: "Biology", MaxCapacity: 10, StudentIDs: []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"}},
		{ID: "c3", Name: "Chemistry", MaxCapacity: 30},
	}

	summary := BuildDashboard(nil, classes, nil, nil, now, DashboardOptions{OverviewLimit: 2})

	require.Len(t, summary.ClassOverview, 2)
	assert.Equal(t, "c1", summary.ClassOverview[0].ClassID)
	assert.Equal(t, 10, summary.ClassOverview[0].CapacityPercentage)
	assert.Equal(t, BadgeSuccess, summary.ClassOverview[0].CapacityTier)
	assert.Equal(t, 90, summary.ClassOverview[1].CapacityPercentage)
	assert.Equal(t, BadgeDanger, summary.ClassOverview[1].CapacityTier)
}

func TestRecentActivityMergeAndCap(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	students := []models.Student{{ID: "s1", FirstName: "Ann", LastName: "Lee", Status: models.StudentStatusActive}}
	classes := []models.Class{{ID: "c1", Name: "Algebra I"}}

	var grades []models.Grade
	for i := 0; i < 5; i++ {
		grades = append(grades, models.Grade{
			StudentID: "s1", ClassID: "c1", AssignmentName: "Quiz",
			Score: 40, MaxScore: 50, Date: now.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	var attendance []models.Attendance
	for i := 0; i < 4; i++ {
		attendance = append(attendance, models.Attendance{
			StudentID: "s1", ClassID: "c1", Status: models.AttendanceAbsent,
			Date: now.Add(-time.Duration(i+1) * time.Minute),
		})
	}

	summary := BuildDashboard(students, classes, grades, attendance, now, DashboardOptions{})

	require.Len(t, summary.RecentActivity, 5)
	// Three grade events plus two absence events, newest first.
	absences, gradeEvents := 0, 0
	for _, ev := range summary.RecentActivity {
		switch ev.Category {
		case "attendance":
			absences++
		case "grade":
			gradeEvents++
		}
	}
	assert.Equal(t, 2, absences)
	assert.Equal(t, 3, gradeEvents)
	for i := 1; i < len(summary.RecentActivity); i++ {
		assert.False(t, summary.RecentActivity[i].Timestamp.After(summary.RecentActivity[i-1].Timestamp))
	}
}

func TestRecentActivitySkipsUnknownStudentButCountsMiss(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	grades := []models.Grade{
		{StudentID: "ghost", AssignmentName: "Quiz", Score: 40, MaxScore: 50, Date: now.Add(-time.Hour)},
	}

	summary := BuildDashboard(nil, nil, grades, nil, now, DashboardOptions{})

	assert.Empty(t, summary.RecentActivity)
	assert.Equal(t, 1, summary.UnresolvedReferences)
}
