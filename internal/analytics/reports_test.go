package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
)

func TestBuildReportCharts(t *testing.T) {
	students := []models.Student{
		{ID: "s1", GradeLevel: "5"},
		{ID: "s2", GradeLevel: "5"},
		{ID: "s3", GradeLevel: "K"},
	}
	attendance := []models.Attendance{
		{Status: models.AttendancePresent},
		{Status: models.AttendancePresent},
		{Status: models.AttendanceLate},
	}
	grades := []models.Grade{
		{Score: 95, MaxScore: 100},
		{Score: 85, MaxScore: 100},
		{Score: 40, MaxScore: 100},
	}

	charts := BuildReportCharts(students, attendance, grades)

	assert.Equal(t, []string{"5", "K"}, charts.EnrollmentByGradeLevel.Labels)
	assert.Equal(t, []int{2, 1}, charts.EnrollmentByGradeLevel.Values)

	assert.Equal(t, []string{"late", "present"}, charts.AttendanceByStatus.Labels)
	assert.Equal(t, []int{1, 2}, charts.AttendanceByStatus.Values)

	assert.Equal(t, []string{"A", "B", "C", "D", "F"}, charts.GradeDistribution.Labels)
	assert.Equal(t, []int{1, 1, 0, 0, 1}, charts.GradeDistribution.Values)
}

func TestBuildClassPerformance(t *testing.T) {
	classes := []models.Class{{
		ID: "c1", Name: "Algebra I", Subject: "Math", TeacherName: "Mr. Diaz",
		MaxCapacity: 20,
		StudentIDs:  make([]string, 19),
	}}
	grades := []models.Grade{
		{ClassID: "c1", Score: 45, MaxScore: 50},
		{ClassID: "c1", Score: 35, MaxScore: 50},
	}
	attendance := []models.Attendance{
		{ClassID: "c1", Status: models.AttendancePresent},
		{ClassID: "c1", Status: models.AttendanceAbsent},
	}

	rows := BuildClassPerformance(classes, grades, attendance, DefaultCapacityThresholds)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, 19, row.EnrolledCount)
	assert.Equal(t, 95, row.CapacityPercentage)
	assert.Equal(t, BadgeDanger, row.CapacityTier)
	assert.Equal(t, 80, row.AverageGrade)
	assert.Equal(t, 50, row.AttendanceRate)
}

func TestGradeDistributionFractionalBoundary(t *testing.T) {
	// 179/200 is 89.5%, which belongs in the B band even though it would
	// round to 90 as a whole percentage.
	grades := []models.Grade{{Score: 179, MaxScore: 200}}

	charts := BuildReportCharts(nil, nil, grades)

	assert.Equal(t, []int{0, 1, 0, 0, 0}, charts.GradeDistribution.Values)
}

func TestBuildClassPerformanceLateIsNotPresent(t *testing.T) {
	classes := []models.Class{{ID: "c1", Name: "Algebra I", MaxCapacity: 20}}
	attendance := []models.Attendance{{ClassID: "c1", Status: models.AttendanceLate}}

	rows := BuildClassPerformance(classes, nil, attendance, DefaultCapacityThresholds)

	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].AttendanceRate)
}

func TestBuildClassPerformanceAverageRoundsMeanOnce(t *testing.T) {
	classes := []models.Class{{ID: "c1", Name: "Algebra I", MaxCapacity: 20}}
	grades := []models.Grade{
		{ClassID: "c1", Score: 85, MaxScore: 100},
		{ClassID: "c1", Score: 86, MaxScore: 100},
	}

	rows := BuildClassPerformance(classes, grades, nil, DefaultCapacityThresholds)

	require.Len(t, rows, 1)
	assert.Equal(t, 86, rows[0].AverageGrade)
}

func TestBuildClassPerformanceNoRecords(t *testing.T) {
	classes := []models.Class{{ID: "c1", Name: "Empty", MaxCapacity: 10}}

	rows := BuildClassPerformance(classes, nil, nil, DefaultCapacityThresholds)

	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].AverageGrade)
	assert.Equal(t, 0, rows[0].AttendanceRate)
	assert.Equal(t, BadgeSuccess, rows[0].CapacityTier)
}
