package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
)

func TestPercentageZeroInputs(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 100))
	assert.Equal(t, 0, Percentage(50, 0))
	assert.Equal(t, 0, Percentage(0, 0))
}

func TestPercentageMonotonic(t *testing.T) {
	prev := 0
	for score := 1.0; score <= 50; score++ {
		pct := Percentage(score, 50)
		require.GreaterOrEqual(t, pct, prev, "score %v", score)
		prev = pct
	}
	assert.Equal(t, 100, prev)
}

func TestPercentageRounding(t *testing.T) {
	assert.Equal(t, 90, Percentage(45, 50))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 33, Percentage(1, 3))
	// Half rounds up.
	assert.Equal(t, 13, Percentage(1, 8))
}

func TestLetterGradeBoundaries(t *testing.T) {
	assert.Equal(t, "A", LetterGrade(90))
	assert.Equal(t, "B", LetterGrade(89))
	assert.Equal(t, "B", LetterGrade(80))
	assert.Equal(t, "C", LetterGrade(79))
	assert.Equal(t, "C", LetterGrade(70))
	assert.Equal(t, "D", LetterGrade(60))
	assert.Equal(t, "F", LetterGrade(59))
	assert.Equal(t, "A", LetterGrade(100))
	assert.Equal(t, "F", LetterGrade(0))
	// Fractional percentages stay below the boundary they round toward.
	assert.Equal(t, "B", LetterGrade(89.5))
	assert.Equal(t, "D", LetterGrade(69.9))
}

func TestGradeBadgeCollapsesLowTiers(t *testing.T) {
	assert.Equal(t, BadgeSuccess, GradeBadge(95))
	assert.Equal(t, BadgePrimary, GradeBadge(85))
	assert.Equal(t, BadgeWarning, GradeBadge(75))
	assert.Equal(t, BadgeDanger, GradeBadge(65))
	assert.Equal(t, BadgeDanger, GradeBadge(30))
}

func TestRateEmptyAndFull(t *testing.T) {
	assert.Equal(t, 0, Rate(nil, func(int) bool { return true }))
	assert.Equal(t, 100, Rate([]int{1, 2, 3}, func(int) bool { return true }))
	assert.Equal(t, 50, Rate([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 }))
}

func TestAveragePercentage(t *testing.T) {
	assert.Equal(t, 0, AveragePercentage(nil))
	assert.Equal(t, 90, AveragePercentage([]models.Grade{{Score: 45, MaxScore: 50}}))
	// 85.5 rounds up; summing pre-rounded whole percentages would give 85.
	assert.Equal(t, 86, AveragePercentage([]models.Grade{
		{Score: 85, MaxScore: 100},
		{Score: 86, MaxScore: 100},
	}))
}

func TestAttended(t *testing.T) {
	assert.True(t, Attended(models.Attendance{Status: models.AttendancePresent}))
	assert.False(t, Attended(models.Attendance{Status: models.AttendanceLate}))
	assert.False(t, Attended(models.Attendance{Status: models.AttendanceAbsent}))
}

func TestGPA(t *testing.T) {
	assert.Equal(t, "N/A", GPA(nil))
	assert.Equal(t, "4.00", GPA([]models.Grade{{Score: 100, MaxScore: 100}}))
	assert.Equal(t, "3.00", GPA([]models.Grade{
		{Score: 100, MaxScore: 100},
		{Score: 50, MaxScore: 100},
	}))
}

func TestCountBySortedPairs(t *testing.T) {
	series := CountBy([]string{"b", "a", "b", "c", "b"}, func(s string) string { return s })
	assert.Equal(t, []string{"a", "b", "c"}, series.Labels)
	assert.Equal(t, []int{1, 3, 1}, series.Values)
}

func TestWithinWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	dates := []time.Time{
		now.AddDate(0, 0, -10),
		now.AddDate(0, 0, -3),
		now,
		now.AddDate(0, 0, 1),
	}
	kept := WithinWindow(dates, func(d time.Time) time.Time { return d }, now, 7*24*time.Hour)
	require.Len(t, kept, 2)
	assert.Equal(t, dates[1], kept[0])
	assert.Equal(t, dates[2], kept[1])
}

func TestCapacityTiers(t *testing.T) {
	th := DefaultCapacityThresholds
	pct := CapacityPercentage(19, 20)
	assert.Equal(t, 95, pct)
	assert.Equal(t, BadgeDanger, th.Tier(pct))
	assert.Equal(t, BadgeWarning, th.Tier(CapacityPercentage(15, 20)))
	assert.Equal(t, BadgeSuccess, th.Tier(CapacityPercentage(10, 20)))
	assert.Equal(t, 0, CapacityPercentage(5, 0))
}

func TestCapacityThresholdsConfigurable(t *testing.T) {
	th := CapacityThresholds{DangerPct: 95, WarningPct: 50}
	assert.Equal(t, BadgeWarning, th.Tier(90))
	assert.Equal(t, BadgeDanger, th.Tier(95))
}
