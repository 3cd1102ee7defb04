package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
)

type snapshotRepos struct {
	students   []models.Student
	classes    []models.Class
	grades     []models.Grade
	attendance []models.Attendance
}

type snapshotStudents struct{ repos *snapshotRepos }

func (s snapshotStudents) ListAll(ctx context.Context) ([]models.Student, error) {
	return s.repos.students, nil
}

type snapshotClasses struct{ repos *snapshotRepos }

func (s snapshotClasses) ListAll(ctx context.Context) ([]models.Class, error) {
	return s.repos.classes, nil
}

type snapshotGrades struct{ repos *snapshotRepos }

func (s snapshotGrades) ListAll(ctx context.Context) ([]models.Grade, error) {
	return s.repos.grades, nil
}

type snapshotAttendance struct{ repos *snapshotRepos }

func (s snapshotAttendance) ListAll(ctx context.Context) ([]models.Attendance, error) {
	return s.repos.attendance, nil
}

func newDashboardService(repos *snapshotRepos, now time.Time) *DashboardService {
	return NewDashboardService(DashboardServiceParams{
		Students:   snapshotStudents{repos},
		Classes:    snapshotClasses{repos},
		Grades:     snapshotGrades{repos},
		Attendance: snapshotAttendance{repos},
		Now:        func() time.Time { return now },
	})
}

func TestDashboardServiceSummary(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	repos := &snapshotRepos{
		students: []models.Student{
			{ID: "s1", FirstName: "Ana", LastName: "Lopez", Status: models.StudentStatusActive},
			{ID: "s2", FirstName: "Ben", LastName: "Cho", Status: models.StudentStatusInactive},
		},
		classes: []models.Class{{ID: "c1"}, {ID: "c2"}},
		grades: []models.Grade{
			{ID: "g1", StudentID: "s1", ClassID: "c1", AssignmentName: "Quiz 1", Score: 45, MaxScore: 50, Date: now.AddDate(0, 0, -2)},
		},
		attendance: []models.Attendance{
			{ID: "a1", StudentID: "s1", ClassID: "c1", Date: now.AddDate(0, 0, -1), Status: models.AttendancePresent},
			{ID: "a2", StudentID: "s2", ClassID: "c1", Date: now.AddDate(0, 0, -1), Status: models.AttendanceAbsent},
		},
	}
	svc := newDashboardService(repos, now)

	summary, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, summary.ActiveStudents)
	assert.Equal(t, 2, summary.TotalClasses)
	assert.Equal(t, 50, summary.WeeklyAttendanceRate)
	assert.Equal(t, 90, summary.MonthlyAverageGrade)
	require.Len(t, summary.RecentActivity, 2)
	assert.Equal(t, "attendance", summary.RecentActivity[0].Category)
	assert.Equal(t, "grade", summary.RecentActivity[1].Category)
}

func TestDashboardServiceSummaryIgnoresStaleRecords(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	repos := &snapshotRepos{
		students: []models.Student{{ID: "s1", FirstName: "Ana", LastName: "Lopez", Status: models.StudentStatusActive}},
		grades: []models.Grade{
			{ID: "g1", StudentID: "s1", ClassID: "c1", Score: 10, MaxScore: 100, Date: now.AddDate(0, -2, 0)},
		},
		attendance: []models.Attendance{
			{ID: "a1", StudentID: "s1", ClassID: "c1", Date: now.AddDate(0, 0, -10), Status: models.AttendanceAbsent},
		},
	}
	svc := newDashboardService(repos, now)

	summary, _, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.WeeklyAttendanceRate)
	assert.Equal(t, 0, summary.MonthlyAverageGrade)
}

func TestDashboardServiceSummaryCountsUnresolved(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	repos := &snapshotRepos{
		grades: []models.Grade{
			{ID: "g1", StudentID: "ghost", ClassID: "c1", Score: 40, MaxScore: 50, Date: now.AddDate(0, 0, -1)},
		},
	}
	svc := newDashboardService(repos, now)

	summary, _, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.RecentActivity)
	assert.Positive(t, summary.UnresolvedReferences)
}
