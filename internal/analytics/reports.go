package analytics

import (
	"github.com/classtrack/classtrack-api/internal/models"
)

// ReportCharts holds the three independent projections rendered on the
// reports screen. Each series is re-derived in full from its snapshot.
type ReportCharts struct {
	EnrollmentByGradeLevel Series `json:"enrollment_by_grade_level"`
	AttendanceByStatus     Series `json:"attendance_by_status"`
	GradeDistribution      Series `json:"grade_distribution"`
}

// BuildReportCharts computes the chart series from entity snapshots.
func BuildReportCharts(students []models.Student, attendance []models.Attendance, grades []models.Grade) ReportCharts {
	return ReportCharts{
		EnrollmentByGradeLevel: CountBy(students, func(s models.Student) string { return s.GradeLevel }),
		AttendanceByStatus:     CountBy(attendance, func(a models.Attendance) string { return string(a.Status) }),
		GradeDistribution:      gradeDistribution(grades),
	}
}

// gradeDistribution buckets grades into the five letter bands in ladder
// order rather than the alphabetical order CountBy would give.
func gradeDistribution(grades []models.Grade) Series {
	letters := []string{"A", "B", "C", "D", "F"}
	counts := make(map[string]int, len(letters))
	for _, g := range grades {
		counts[LetterGrade(RawPercentage(g.Score, g.MaxScore))]++
	}
	values := make([]int, len(letters))
	for i, l := range letters {
		values[i] = counts[l]
	}
	return Series{Labels: letters, Values: values}
}

// ClassPerformance summarizes one class for the reports overview table.
type ClassPerformance struct {
	ClassID            string       `json:"class_id"`
	ClassName          string       `json:"class_name"`
	Subject            string       `json:"subject"`
	TeacherName        string       `json:"teacher_name"`
	EnrolledCount      int          `json:"enrolled_count"`
	CapacityPercentage int          `json:"capacity_percentage"`
	CapacityTier       BadgeVariant `json:"capacity_tier"`
	AverageGrade       int          `json:"average_grade"`
	AttendanceRate     int          `json:"attendance_rate"`
}

// BuildClassPerformance computes the per-class overview rows.
func BuildClassPerformance(classes []models.Class, grades []models.Grade, attendance []models.Attendance, thresholds CapacityThresholds) []ClassPerformance {
	gradesByClass := make(map[string][]models.Grade)
	for _, g := range grades {
		gradesByClass[g.ClassID] = append(gradesByClass[g.ClassID], g)
	}
	attendanceByClass := make(map[string][]models.Attendance)
	for _, a := range attendance {
		attendanceByClass[a.ClassID] = append(attendanceByClass[a.ClassID], a)
	}

	rows := make([]ClassPerformance, 0, len(classes))
	for _, c := range classes {
		capPct := CapacityPercentage(c.EnrolledCount(), c.MaxCapacity)
		rows = append(rows, ClassPerformance{
			ClassID:            c.ID,
			ClassName:          c.Name,
			Subject:            c.Subject,
			TeacherName:        c.TeacherName,
			EnrolledCount:      c.EnrolledCount(),
			CapacityPercentage: capPct,
			CapacityTier:       thresholds.Tier(capPct),
			AverageGrade:       AveragePercentage(gradesByClass[c.ID]),
			AttendanceRate:     Rate(attendanceByClass[c.ID], Attended),
		})
	}
	return rows
}
