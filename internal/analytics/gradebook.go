package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/classtrack/classtrack-api/internal/models"
)

// GradebookRow decorates a grade record with its resolved names and the
// computed percentage, letter, and badge for display.
type GradebookRow struct {
	Grade       models.Grade `json:"grade"`
	StudentName string       `json:"student_name"`
	ClassName   string       `json:"class_name"`
	Percentage  int          `json:"percentage"`
	Letter      string       `json:"letter"`
	Badge       BadgeVariant `json:"badge"`
}

// GradebookStats summarizes the decorated rows.
type GradebookStats struct {
	AveragePercentage int `json:"average_percentage"`
	HighestPercentage int `json:"highest_percentage"`
	LowestPercentage  int `json:"lowest_percentage"`
	// GradingProgress is 100 whenever at least one grade exists; every
	// recorded grade is considered graded.
	GradingProgress int `json:"grading_progress"`
}

// Gradebook is the derived view backing the grades screen.
type Gradebook struct {
	Rows  []GradebookRow `json:"rows"`
	Stats GradebookStats `json:"stats"`
}

// BuildGradebook decorates every grade and sorts rows by resolved student
// name, case-insensitive.
func BuildGradebook(idx *Index, grades []models.Grade) Gradebook {
	rows := make([]GradebookRow, 0, len(grades))
	for _, g := range grades {
		pct := Percentage(g.Score, g.MaxScore)
		rows = append(rows, GradebookRow{
			Grade:       g,
			StudentName: idx.StudentName(g.StudentID),
			ClassName:   idx.ClassName(g.ClassID),
			Percentage:  pct,
			Letter:      LetterGrade(pct),
			Badge:       GradeBadge(pct),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].StudentName) < strings.ToLower(rows[j].StudentName)
	})
	return Gradebook{Rows: rows, Stats: gradebookStats(rows)}
}

func gradebookStats(rows []GradebookRow) GradebookStats {
	if len(rows) == 0 {
		return GradebookStats{}
	}
	stats := GradebookStats{
		HighestPercentage: rows[0].Percentage,
		LowestPercentage:  rows[0].Percentage,
		GradingProgress:   100,
	}
	var sum float64
	for _, r := range rows {
		sum += RawPercentage(r.Grade.Score, r.Grade.MaxScore)
		if r.Percentage > stats.HighestPercentage {
			stats.HighestPercentage = r.Percentage
		}
		if r.Percentage < stats.LowestPercentage {
			stats.LowestPercentage = r.Percentage
		}
	}
	stats.AveragePercentage = int(math.Round(sum / float64(len(rows))))
	return stats
}
