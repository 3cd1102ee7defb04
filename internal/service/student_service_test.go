package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/classtrack/classtrack-api/pkg/errors"

	"github.com/classtrack/classtrack-api/internal/models"
)

type mockStudentRepo struct {
	students      map[string]models.Student
	existsByEmail map[string]string
	deleted       []string
	listTotal     int
	err           error
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, m.listTotal, nil
}

func (m *mockStudentRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	out, _, err := m.List(ctx, models.StudentFilter{})
	return out, err
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	if id, ok := m.existsByEmail[email]; ok {
		if excludeID == "" || id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStudentGrades struct{ grades []models.Grade }

func (m *mockStudentGrades) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	return m.grades, nil
}

type mockStudentAttendance struct{ records []models.Attendance }

func (m *mockStudentAttendance) ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error) {
	return m.records, nil
}

type mockStudentDocuments struct{ documents []models.Document }

func (m *mockStudentDocuments) ListByStudent(ctx context.Context, studentID string) ([]models.Document, error) {
	return m.documents, nil
}

func newStudentService(repo *mockStudentRepo) *StudentService {
	return NewStudentService(StudentServiceParams{
		Repo:       repo,
		Grades:     &mockStudentGrades{},
		Attendance: &mockStudentAttendance{},
		Documents:  &mockStudentDocuments{},
		Validator:  validator.New(),
		Now:        func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) },
	})
}

func validStudentRequest() StudentRequest {
	return StudentRequest{
		FirstName:  "Ann",
		LastName:   "Lee",
		Email:      "ann@example.com",
		GradeLevel: "5",
	}
}

func TestStudentServiceCreateDefaults(t *testing.T) {
	repo := &mockStudentRepo{existsByEmail: make(map[string]string)}
	svc := newStudentService(repo)

	student, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.Equal(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), student.EnrollmentDate)
	assert.False(t, student.CreatedAt.IsZero())
}

func TestStudentServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockStudentRepo{existsByEmail: map[string]string{"ann@example.com": "other"}}
	svc := newStudentService(repo)

	_, err := svc.Create(context.Background(), validStudentRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestStudentServiceCreateInvalidGradeLevel(t *testing.T) {
	repo := &mockStudentRepo{existsByEmail: make(map[string]string)}
	svc := newStudentService(repo)

	req := validStudentRequest()
	req.GradeLevel = "13"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestStudentServiceCreateInvalidPhone(t *testing.T) {
	repo := &mockStudentRepo{existsByEmail: make(map[string]string)}
	svc := newStudentService(repo)

	req := validStudentRequest()
	req.Phone = "not-a-phone"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestStudentServiceCreateRejectsEmptyTag(t *testing.T) {
	repo := &mockStudentRepo{existsByEmail: make(map[string]string)}
	svc := newStudentService(repo)

	req := validStudentRequest()
	req.Interests = []string{"robotics", "  "}
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestStudentServiceCreateInvalidEmail(t *testing.T) {
	repo := &mockStudentRepo{existsByEmail: make(map[string]string)}
	svc := newStudentService(repo)

	req := validStudentRequest()
	req.Email = "not-an-email"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
}

func TestStudentServiceUpdate(t *testing.T) {
	repo := &mockStudentRepo{
		students:      map[string]models.Student{"id1": {ID: "id1", FirstName: "Old", LastName: "Name", Email: "old@example.com", GradeLevel: "4", Status: models.StudentStatusActive}},
		existsByEmail: make(map[string]string),
	}
	svc := newStudentService(repo)

	updated, err := svc.Update(context.Background(), "id1", validStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.FirstName)
	assert.Equal(t, "5", updated.GradeLevel)
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	repo := &mockStudentRepo{existsByEmail: make(map[string]string)}
	svc := newStudentService(repo)

	_, err := svc.Update(context.Background(), "missing", validStudentRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{"id1": {ID: "id1"}}}
	svc := newStudentService(repo)

	require.NoError(t, svc.Delete(context.Background(), "id1"))
	assert.Contains(t, repo.deleted, "id1")

	err := svc.Delete(context.Background(), "id1")
	require.Error(t, err)
}

func TestStudentServiceProfile(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{"id1": {ID: "id1", FirstName: "Ann", LastName: "Lee"}}}
	svc := NewStudentService(StudentServiceParams{
		Repo:       repo,
		Grades:     &mockStudentGrades{grades: []models.Grade{{Score: 100, MaxScore: 100}}},
		Attendance: &mockStudentAttendance{records: []models.Attendance{{Status: models.AttendancePresent}}},
		Documents:  &mockStudentDocuments{},
	})

	profile, err := svc.Profile(context.Background(), "id1")
	require.NoError(t, err)
	assert.Equal(t, "4.00", profile.GPA)
	require.NotNil(t, profile.AttendanceRate)
	assert.Equal(t, 100, *profile.AttendanceRate)
}

func TestStudentServiceTimeoutSurfaced(t *testing.T) {
	repo := &mockStudentRepo{err: context.DeadlineExceeded}
	svc := newStudentService(repo)

	_, _, err := svc.List(context.Background(), models.StudentFilter{})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrTimeout.Code, appErr.Code)
}
