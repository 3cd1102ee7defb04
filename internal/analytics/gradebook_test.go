package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
)

func TestBuildGradebookDecoratesAndSorts(t *testing.T) {
	idx := NewIndex(
		[]models.Student{
			{ID: "s1", FirstName: "zoe", LastName: "Young"},
			{ID: "s2", FirstName: "Ann", LastName: "Lee"},
		},
		[]models.Class{{ID: "c1", Name: "Algebra I"}},
	)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	grades := []models.Grade{
		{ID: "g1", StudentID: "s1", ClassID: "c1", Score: 72, MaxScore: 100, Date: date},
		{ID: "g2", StudentID: "s2", ClassID: "c1", Score: 45, MaxScore: 50, Date: date},
	}

	book := BuildGradebook(idx, grades)

	require.Len(t, book.Rows, 2)
	// Case-insensitive name sort puts Ann Lee before zoe Young.
	assert.Equal(t, "Ann Lee", book.Rows[0].StudentName)
	assert.Equal(t, 90, book.Rows[0].Percentage)
	assert.Equal(t, "A", book.Rows[0].Letter)
	assert.Equal(t, BadgeSuccess, book.Rows[0].Badge)
	assert.Equal(t, "zoe Young", book.Rows[1].StudentName)
	assert.Equal(t, "C", book.Rows[1].Letter)
	assert.Equal(t, BadgeWarning, book.Rows[1].Badge)

	assert.Equal(t, 81, book.Stats.AveragePercentage)
	assert.Equal(t, 90, book.Stats.HighestPercentage)
	assert.Equal(t, 72, book.Stats.LowestPercentage)
	assert.Equal(t, 100, book.Stats.GradingProgress)
}

func TestGradebookStatsAverageRoundsMeanOnce(t *testing.T) {
	idx := NewIndex(nil, nil)
	grades := []models.Grade{
		{ID: "g1", StudentID: "s1", Score: 85, MaxScore: 100},
		{ID: "g2", StudentID: "s2", Score: 86, MaxScore: 100},
	}

	book := BuildGradebook(idx, grades)

	assert.Equal(t, 86, book.Stats.AveragePercentage)
}

func TestBuildGradebookUnknownStudentSentinel(t *testing.T) {
	idx := NewIndex(nil, nil)
	book := BuildGradebook(idx, []models.Grade{{ID: "g1", StudentID: "ghost", Score: 10, MaxScore: 20}})

	require.Len(t, book.Rows, 1)
	assert.Equal(t, UnknownStudent, book.Rows[0].StudentName)
	assert.Equal(t, UnknownClass, book.Rows[0].ClassName)
	assert.Equal(t, 2, idx.Misses())
}

func TestBuildGradebookEmpty(t *testing.T) {
	book := BuildGradebook(NewIndex(nil, nil), nil)
	assert.Empty(t, book.Rows)
	assert.Equal(t, GradebookStats{}, book.Stats)
}
