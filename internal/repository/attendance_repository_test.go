package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack-api/internal/models"
)

func attendanceRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "student_id", "class_id", "date", "status", "notes", "created_at", "updated_at"}).
		AddRow("a1", "s1", "c1", now, "present", "", now, now)
}

func TestAttendanceRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "attendance_student_class_date_key"})

	err := repo.Create(context.Background(), &models.Attendance{
		StudentID: "s1", ClassID: "c1", Date: time.Now(), Status: models.AttendancePresent,
	})
	assert.ErrorIs(t, err, ErrDuplicateAttendance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance").
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.Attendance{StudentID: "s1", ClassID: "c1", Date: time.Now(), Status: models.AttendanceLate}
	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListWeek(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM attendance WHERE date >= \$1 AND date < \$2 ORDER BY date ASC`).
		WithArgs(monday, monday.AddDate(0, 0, 5)).
		WillReturnRows(attendanceRows())

	records, err := repo.ListWeek(context.Background(), monday)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	status := models.AttendanceAbsent
	mock.ExpectQuery(`SELECT (.+) FROM attendance WHERE 1=1 AND status = \$1`).
		WithArgs(status).
		WillReturnRows(attendanceRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM attendance`).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
