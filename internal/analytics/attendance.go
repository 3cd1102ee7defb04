package analytics

import (
	"time"

	"github.com/classtrack/classtrack-api/internal/models"
)

// AttendanceRates are the whole-percentage shares per status over a set of
// records. An empty set yields all zeroes.
type AttendanceRates struct {
	PresentRate int `json:"present_rate"`
	AbsentRate  int `json:"absent_rate"`
	LateRate    int `json:"late_rate"`
}

// ComputeRates tallies the status shares of the given records.
func ComputeRates(records []models.Attendance) AttendanceRates {
	return AttendanceRates{
		PresentRate: Rate(records, func(a models.Attendance) bool { return a.Status == models.AttendancePresent }),
		AbsentRate:  Rate(records, func(a models.Attendance) bool { return a.Status == models.AttendanceAbsent }),
		LateRate:    Rate(records, func(a models.Attendance) bool { return a.Status == models.AttendanceLate }),
	}
}

// GridCell is one (student, weekday) entry in the weekly grid. Recorded is
// false when no attendance record exists for that calendar day; the status
// still defaults to present so the grid renders, but clients can show the
// cell as unmarked.
type GridCell struct {
	Date     string                  `json:"date"`
	Status   models.AttendanceStatus `json:"status"`
	Recorded bool                    `json:"recorded"`
}

// GridRow holds one student's cells for the Monday-to-Friday window.
type GridRow struct {
	StudentID   string     `json:"student_id"`
	StudentName string     `json:"student_name"`
	Cells       []GridCell `json:"cells"`
}

// WeekGrid is the derived view backing the weekly attendance screen.
type WeekGrid struct {
	WeekStart string    `json:"week_start"`
	Days      []string  `json:"days"`
	Rows      []GridRow `json:"rows"`
}

// WeekStart returns the Monday of the week containing ref.
func WeekStart(ref time.Time) time.Time {
	offset := (int(ref.Weekday()) + 6) % 7
	day := ref.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}

// BuildWeekGrid computes the Monday-start 5-weekday grid for the week
// containing ref. Records are matched to cells by calendar date.
func BuildWeekGrid(students []models.Student, records []models.Attendance, ref time.Time) WeekGrid {
	start := WeekStart(ref)
	days := make([]string, 5)
	for i := range days {
		days[i] = start.AddDate(0, 0, i).Format("2006-01-02")
	}

	// Last record per (student, date) wins, matching reload order.
	byCell := make(map[string]models.Attendance, len(records))
	for _, r := range records {
		byCell[r.StudentID+"|"+r.Date.Format("2006-01-02")] = r
	}

	rows := make([]GridRow, 0, len(students))
	for _, s := range students {
		row := GridRow{StudentID: s.ID, StudentName: s.FullName(), Cells: make([]GridCell, 5)}
		for i, day := range days {
			cell := GridCell{Date: day, Status: models.AttendancePresent}
			if r, ok := byCell[s.ID+"|"+day]; ok {
				cell.Status = r.Status
				cell.Recorded = true
			}
			row.Cells[i] = cell
		}
		rows = append(rows, row)
	}
	return WeekGrid{WeekStart: days[0], Days: days, Rows: rows}
}
