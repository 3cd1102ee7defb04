// Package analytics holds the pure aggregation functions and derived view
// builders behind the dashboard, gradebook, attendance, and report screens.
// Everything here is side-effect free and recomputed from entity snapshots;
// nothing raises on empty input, degrading to documented sentinel values so
// the views always render.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/classtrack/classtrack-api/internal/models"
)

// GPAUnavailable is returned when a student has no grades to average.
const GPAUnavailable = "N/A"

// BadgeVariant is the severity tier a percentage maps to for display.
type BadgeVariant string

const (
	BadgeSuccess BadgeVariant = "success"
	BadgePrimary BadgeVariant = "primary"
	BadgeWarning BadgeVariant = "warning"
	BadgeDanger  BadgeVariant = "danger"
)

// Percentage converts a score against its maximum into a whole percentage.
// A zero score or zero maximum yields 0; zero is treated as "no score"
// rather than a valid bottom grade.
func Percentage(score, maxScore float64) int {
	return int(math.Round(RawPercentage(score, maxScore)))
}

// RawPercentage is Percentage before rounding to a whole number. Aggregates
// that average or bucket many grades work from the raw value so per-grade
// rounding cannot skew the result.
func RawPercentage(score, maxScore float64) float64 {
	if score == 0 || maxScore == 0 {
		return 0
	}
	return score / maxScore * 100
}

// AveragePercentage rounds the mean of the raw percentages once. Returns 0
// for an empty slice.
func AveragePercentage(grades []models.Grade) int {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += RawPercentage(g.Score, g.MaxScore)
	}
	return int(math.Round(sum / float64(len(grades))))
}

// Attended reports whether an attendance record counts toward a present
// rate. Late arrivals do not.
func Attended(a models.Attendance) bool {
	return a.Status == models.AttendancePresent
}

// LetterGrade maps a percentage onto the A..F ladder. Boundaries are
// inclusive on the lower bound, so a fractional percentage just under a
// boundary stays in the lower band.
func LetterGrade[N int | float64](pct N) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}

// GradeBadge maps a whole percentage onto a display severity. The thresholds
// match LetterGrade with D and F collapsed into danger.
func GradeBadge(pct int) BadgeVariant {
	switch {
	case pct >= 90:
		return BadgeSuccess
	case pct >= 80:
		return BadgePrimary
	case pct >= 70:
		return BadgeWarning
	default:
		return BadgeDanger
	}
}

// Rate returns the whole-percentage share of items satisfying pred, or 0 for
// an empty collection.
func Rate[T any](items []T, pred func(T) bool) int {
	if len(items) == 0 {
		return 0
	}
	matched := 0
	for _, item := range items {
		if pred(item) {
			matched++
		}
	}
	return int(math.Round(float64(matched) / float64(len(items)) * 100))
}

// GPA averages (score/max)*4 across grades, formatted to two decimals.
// Returns GPAUnavailable when the student has no grades.
func GPA(grades []models.Grade) string {
	if len(grades) == 0 {
		return GPAUnavailable
	}
	var sum float64
	for _, g := range grades {
		if g.MaxScore == 0 {
			continue
		}
		sum += g.Score / g.MaxScore * 4
	}
	return fmt.Sprintf("%.2f", sum/float64(len(grades)))
}

// Series is a labeled mapping converted to parallel arrays for chart
// rendering. Labels and Values stay paired by index.
type Series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// CountBy groups items by the key function and returns label/count pairs
// sorted by label so the series is deterministic.
func CountBy[T any](items []T, key func(T) string) Series {
	counts := make(map[string]int)
	for _, item := range items {
		counts[key(item)]++
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	values := make([]int, len(labels))
	for i, label := range labels {
		values[i] = counts[label]
	}
	return Series{Labels: labels, Values: values}
}

// WithinWindow keeps items whose date falls inside [now-window, now].
func WithinWindow[T any](items []T, date func(T) time.Time, now time.Time, window time.Duration) []T {
	start := now.Add(-window)
	var out []T
	for _, item := range items {
		d := date(item)
		if !d.Before(start) && !d.After(now) {
			out = append(out, item)
		}
	}
	return out
}

// CapacityThresholds holds the class-capacity coloring cutoffs. They are
// deliberately independent of the letter-grade ladder.
type CapacityThresholds struct {
	DangerPct  int
	WarningPct int
}

// DefaultCapacityThresholds matches the card coloring used across class and
// attendance views.
var DefaultCapacityThresholds = CapacityThresholds{DangerPct: 90, WarningPct: 75}

// CapacityPercentage returns enrolled/capacity as a whole percentage, 0 for
// a non-positive capacity.
func CapacityPercentage(enrolled, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(enrolled) / float64(capacity) * 100))
}

// Tier maps a capacity percentage onto a display severity.
func (t CapacityThresholds) Tier(pct int) BadgeVariant {
	switch {
	case pct >= t.DangerPct:
		return BadgeDanger
	case pct >= t.WarningPct:
		return BadgeWarning
	default:
		return BadgeSuccess
	}
}
