package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/classtrack/classtrack-api/internal/models"
)

// ActivityEvent is one entry in the dashboard's recent-activity feed.
type ActivityEvent struct {
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Category    string    `json:"category"`
}

// ClassOverviewEntry is one row of the dashboard's class capacity strip.
type ClassOverviewEntry struct {
	ClassID            string       `json:"class_id"`
	Name               string       `json:"name"`
	EnrolledCount      int          `json:"enrolled_count"`
	MaxCapacity        int          `json:"max_capacity"`
	CapacityPercentage int          `json:"capacity_percentage"`
	CapacityTier       BadgeVariant `json:"capacity_tier"`
}

// DashboardSummary is the composite shown on the landing page.
type DashboardSummary struct {
	ActiveStudents       int                  `json:"active_students"`
	TotalClasses         int                  `json:"total_classes"`
	WeeklyAttendanceRate int                  `json:"weekly_attendance_rate"`
	MonthlyAverageGrade  int                  `json:"monthly_average_grade"`
	RecentActivity       []ActivityEvent      `json:"recent_activity"`
	ClassOverview        []ClassOverviewEntry `json:"class_overview"`
	UnresolvedReferences int                  `json:"-"`
}

// DashboardOptions tunes the windows and feed sizes of the summary. Zero
// values fall back to the defaults used by the source views.
type DashboardOptions struct {
	AttendanceWindow time.Duration
	GradeWindow      time.Duration
	GradeEvents      int
	AbsenceEvents    int
	FeedLimit        int
	OverviewLimit    int
	Thresholds       CapacityThresholds
}

func (o DashboardOptions) withDefaults() DashboardOptions {
	if o.AttendanceWindow == 0 {
		o.AttendanceWindow = 7 * 24 * time.Hour
	}
	if o.GradeWindow == 0 {
		o.GradeWindow = 30 * 24 * time.Hour
	}
	if o.GradeEvents == 0 {
		o.GradeEvents = 3
	}
	if o.AbsenceEvents == 0 {
		o.AbsenceEvents = 2
	}
	if o.FeedLimit == 0 {
		o.FeedLimit = 5
	}
	if o.OverviewLimit == 0 {
		o.OverviewLimit = 5
	}
	if o.Thresholds == (CapacityThresholds{}) {
		o.Thresholds = DefaultCapacityThresholds
	}
	return o
}

// BuildDashboard composes the landing-page summary from entity snapshots.
// The attendance rate covers the trailing attendance window and the average
// grade covers the trailing grade window, both relative to now.
func BuildDashboard(students []models.Student, classes []models.Class, grades []models.Grade, attendance []models.Attendance, now time.Time, opts DashboardOptions) DashboardSummary {
	opts = opts.withDefaults()
	idx := NewIndex(students, classes)

	active := 0
	for _, s := range students {
		if s.Status == models.StudentStatusActive {
			active++
		}
	}

	recentAttendance := WithinWindow(attendance, func(a models.Attendance) time.Time { return a.Date }, now, opts.AttendanceWindow)
	attendanceRate := Rate(recentAttendance, Attended)

	recentGrades := WithinWindow(grades, func(g models.Grade) time.Time { return g.Date }, now, opts.GradeWindow)
	avgGrade := AveragePercentage(recentGrades)

	feed := recentActivity(idx, grades, attendance, opts)

	overview := make([]ClassOverviewEntry, 0, opts.OverviewLimit)
	for _, class := range classes {
		if len(overview) >= opts.OverviewLimit {
			break
		}
		pct := CapacityPercentage(len(class.StudentIDs), class.MaxCapacity)
		overview = append(overview, ClassOverviewEntry{
			ClassID:            class.ID,
			Name:               class.Name,
			EnrolledCount:      len(class.StudentIDs),
			MaxCapacity:        class.MaxCapacity,
			CapacityPercentage: pct,
			CapacityTier:       opts.Thresholds.Tier(pct),
		})
	}

	return DashboardSummary{
		ActiveStudents:       active,
		TotalClasses:         len(classes),
		WeeklyAttendanceRate: attendanceRate,
		MonthlyAverageGrade:  avgGrade,
		RecentActivity:       feed,
		ClassOverview:        overview,
		UnresolvedReferences: idx.Misses(),
	}
}

// recentActivity merges the newest grade events with the newest absence
// events into a single time-descending feed. Events referencing a student
// that cannot be resolved are dropped from the feed; the miss stays counted
// on the index.
func recentActivity(idx *Index, grades []models.Grade, attendance []models.Attendance, opts DashboardOptions) []ActivityEvent {
	sorted := make([]models.Grade, len(grades))
	copy(sorted, grades)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	events := make([]ActivityEvent, 0, opts.FeedLimit)
	taken := 0
	for _, g := range sorted {
		if taken >= opts.GradeEvents {
			break
		}
		student, ok := idx.Student(g.StudentID)
		if !ok {
			continue
		}
		pct := Percentage(g.Score, g.MaxScore)
		events = append(events, ActivityEvent{
			Description: fmt.Sprintf("%s scored %d%% on %s", student.FullName(), pct, g.AssignmentName),
			Timestamp:   g.Date,
			Category:    "grade",
		})
		taken++
	}

	absences := make([]models.Attendance, 0)
	for _, a := range attendance {
		if a.Status == models.AttendanceAbsent {
			absences = append(absences, a)
		}
	}
	sort.Slice(absences, func(i, j int) bool { return absences[i].Date.After(absences[j].Date) })

	taken = 0
	for _, a := range absences {
		if taken >= opts.AbsenceEvents {
			break
		}
		student, ok := idx.Student(a.StudentID)
		if !ok {
			continue
		}
		events = append(events, ActivityEvent{
			Description: fmt.Sprintf("%s was absent from %s", student.FullName(), idx.ClassName(a.ClassID)),
			Timestamp:   a.Date,
			Category:    "attendance",
		})
		taken++
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.After(events[j].Timestamp) })
	if len(events) > opts.FeedLimit {
		events = events[:opts.FeedLimit]
	}
	return events
}
